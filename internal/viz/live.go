package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/porelab/porenet/internal/network"
)

const profileBins = 30

type tickMsg time.Time

// LiveModel replays a solved transient series in the terminal with
// play/pause and scrubbing.
type LiveModel struct {
	net      *network.Network
	quantity string
	times    []float64
	fields   [][]float64

	frame   int
	axis    int
	playing bool
}

// NewLiveModel builds the replay view over a stored series.
func NewLiveModel(net *network.Network, quantity string, times []float64, fields [][]float64) LiveModel {
	return LiveModel{
		net:      net,
		quantity: quantity,
		times:    times,
		fields:   fields,
		playing:  true,
	}
}

func (m LiveModel) Init() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "[":
			m.playing = false
			if m.frame > 0 {
				m.frame--
			}
		case "]":
			m.playing = false
			if m.frame < len(m.fields)-1 {
				m.frame++
			}
		case "r":
			m.frame = 0
			m.playing = true
		case "a":
			m.axis = (m.axis + 1) % 3
		}
	case tickMsg:
		if m.playing && m.frame < len(m.fields)-1 {
			m.frame++
		}
		return m, tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return tickMsg(t) })
	}
	return m, nil
}

func (m LiveModel) View() string {
	if len(m.fields) == 0 {
		return "no snapshots\n"
	}
	field := m.fields[m.frame]
	min, max, mean := FieldStats(field)

	status := statusStyle.Render("▶ playing")
	if !m.playing {
		status = doneStyle.Render("❚❚ paused")
	}
	axisName := [3]string{"x", "y", "z"}[m.axis]

	header := headerStyle.Render(fmt.Sprintf("%s  t=%.4g  %s", m.quantity, m.times[m.frame], status))
	chart := graphStyle.Render(PlotProfile(m.net, field, m.axis, profileBins,
		fmt.Sprintf("mean along %s", axisName)))
	stats := Summary("field", [][2]string{
		{"min", fmt.Sprintf("%.6g", min)},
		{"max", fmt.Sprintf("%.6g", max)},
		{"mean", fmt.Sprintf("%.6g", mean)},
		{"history", Sparkline(meanSeries(m.fields[:m.frame+1]), 40)},
	})
	frac := 1.0
	if len(m.fields) > 1 {
		frac = float64(m.frame) / float64(len(m.fields)-1)
	}
	bar := ProgressBar(frac, 40)
	help := helpStyle.Render("space pause  [ ] scrub  a axis  r restart  q quit")

	return header + "\n" + chart + "\n" + stats + bar + "\n" + help + "\n"
}

func meanSeries(fields [][]float64) []float64 {
	out := make([]float64, len(fields))
	for i, f := range fields {
		_, _, out[i] = FieldStats(f)
	}
	return out
}
