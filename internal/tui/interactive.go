package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ventsim/internal/analysis"
	"github.com/san-kum/ventsim/internal/config"
	"github.com/san-kum/ventsim/internal/experiment"
	"github.com/san-kum/ventsim/internal/metrics"
	"github.com/san-kum/ventsim/internal/physics"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var presetInfo = map[string]string{
	"classroom":     "classroom script, leak on the right",
	"healthy":       "two identical lungs",
	"heterogeneous": "stiff right, compliant left",
	"flow-leak":     "30% of right flow diverted",
	"algebraic":     "closed-form volume leak",
}

// knob is one adjustable scalar with the bounds of its slider.
type knob struct {
	name     string
	label    string
	min, max float64
	step     float64
}

var knobs = []knob{
	{"amplitude", "A [L]", 0.1, 1.0, 0.05},
	{"frequency", "f [Hz]", 0.05, 0.6, 0.01},
	{"peep", "PEEP", 0, 15, 0.5},
	{"e", "E single", 5, 50, 0.5},
	{"r", "R single", 0, 30, 0.5},
	{"right.e", "E right", 5, 50, 0.5},
	{"right.r", "R right", 1, 30, 0.5},
	{"right.frc", "FRC right", 0, 3, 0.1},
	{"right.rf", "Rf right", 5, 200, 5},
	{"right.fraction", "φ right", 0, 1, 0.05},
	{"left.e", "E left", 5, 50, 0.5},
	{"left.r", "R left", 1, 30, 0.5},
	{"left.frc", "FRC left", 0, 3, 0.1},
	{"left.rf", "Rf left", 5, 200, 5},
	{"left.fraction", "φ left", 0, 1, 0.05},
}

type state int

const (
	stateMenu state = iota
	stateTune
)

type plotView int

const (
	viewVolume plotView = iota
	viewPressure
	viewPV
)

type model struct {
	state   state
	cursor  int
	presets []string
	preset  string

	cfg         *config.Config
	paramCursor int
	editing     bool
	editBuf     string

	registry *experiment.Registry
	res      *experiment.Result
	summary  metrics.Summary
	err      error
	view     plotView

	width  int
	height int
}

func NewInteractiveApp() *model {
	return &model{
		state:    stateMenu,
		presets:  config.ListPresets(),
		registry: experiment.NewRegistry(),
		width:    100,
		height:   40,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateTune:
		return m.tuneKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.preset = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.preset)
		m.state = stateTune
		m.paramCursor = 0
		m.recompute()
	}
	return m, nil
}

func (m model) tuneKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if val, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.set(val)
			}
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	k := knobs[m.paramCursor]
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
		m.res = nil
		m.err = nil
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(knobs)-1 {
			m.paramCursor++
		}
	case "left", "h":
		m.set(m.cfg.GetParams()[k.name] - k.step)
	case "right", "l":
		m.set(m.cfg.GetParams()[k.name] + k.step)
	case "enter", " ":
		m.editing = true
		m.editBuf = strconv.FormatFloat(m.cfg.GetParams()[k.name], 'f', -1, 64)
	case "m":
		m.toggleMode()
	case "i":
		if m.cfg.Initial == physics.InitZero.String() {
			m.cfg.Initial = physics.InitFRC.String()
		} else {
			m.cfg.Initial = physics.InitZero.String()
		}
		m.recompute()
	case "f":
		m.cycleFistula(&m.cfg.Right.Fistula)
	case "g":
		m.cycleFistula(&m.cfg.Left.Fistula)
	case "a":
		m.cfg.Right.Fistula.Active = !m.cfg.Right.Fistula.Active
		m.recompute()
	case "v":
		m.view = (m.view + 1) % 3
	}
	return m, nil
}

// set clamps val to the slider bounds of the selected knob and reruns.
func (m *model) set(val float64) {
	k := knobs[m.paramCursor]
	val = math.Max(k.min, math.Min(k.max, val))
	val = snap(val, k.step)
	if err := m.cfg.SetParam(k.name, val); err != nil {
		m.err = err
		return
	}
	m.recompute()
}

func (m *model) toggleMode() {
	if m.cfg.Mode == experiment.Algebraic.String() {
		m.cfg.Mode = experiment.Coupled.String()
	} else {
		m.cfg.Mode = experiment.Algebraic.String()
	}

	mode, _ := experiment.ParseMode(m.cfg.Mode)
	valid := m.registry.FistulasFor(mode)
	for _, f := range []*config.FistulaConfig{&m.cfg.Right.Fistula, &m.cfg.Left.Fistula} {
		if !contains(valid, f.Kind) {
			f.Kind = physics.KindNone
		}
	}
	m.recompute()
}

func (m *model) cycleFistula(f *config.FistulaConfig) {
	mode, err := experiment.ParseMode(m.cfg.Mode)
	if err != nil {
		m.err = err
		return
	}
	kinds := m.registry.FistulasFor(mode)
	next := 0
	for i, k := range kinds {
		if k == f.Kind {
			next = (i + 1) % len(kinds)
		}
	}
	f.Kind = kinds[next]
	if f.Kind == physics.KindConductance && f.Rf == 0 {
		f.Rf, f.Active = 50, true
	}
	m.recompute()
}

// recompute reruns the whole simulation from the current configuration.
func (m *model) recompute() {
	m.res = nil
	p, err := m.cfg.Params()
	if err != nil {
		m.err = err
		return
	}
	res, err := experiment.Simulate(p)
	if err != nil {
		m.err = err
		return
	}
	m.res, m.err = res, nil
	m.summary = metrics.Summarize(res)
}

// snap rounds val to the step grid. Sub-unit steps divide by their integer
// inverse so that e.g. 6 steps of 0.05 print as 0.3.
func snap(val, step float64) float64 {
	if inv := math.Round(1 / step); inv >= 1 {
		return math.Round(val*inv) / inv
	}
	return math.Round(val/step) * step
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateTune:
		return m.viewTune()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("v e n t s i m") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-16s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-16s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter tune   q quit") + "\n")

	return b.String()
}

func (m model) viewTune() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.preset) + "  " +
		dim.Render(fmt.Sprintf("mode=%s  initial=%s  right=%s  left=%s",
			m.cfg.Mode, m.cfg.Initial, m.fistulaLabel(m.cfg.Right.Fistula), m.fistulaLabel(m.cfg.Left.Fistula))) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 60)) + "\n\n")

	params := m.cfg.GetParams()
	for i, k := range knobs {
		val := fmt.Sprintf("%8.3f", params[k.name])
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"▋")
		}
		if i == m.paramCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", k.label)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", k.label)) + dim.Render(val) + "\n")
		}
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString("      " + red.Render(m.err.Error()) + "\n")
	case m.res != nil:
		b.WriteString(m.plot())
		b.WriteString("\n")
		s := m.summary
		b.WriteString(dim.Render(fmt.Sprintf("      Ppeak %.2f  Pmean %.2f  VT %.3f L (R %.3f / L %.3f)  C %.4f L/cmH2O  leaked %.3f L",
			s.PeakPressure, s.MeanPressure, s.TidalVolume, s.TidalRight, s.TidalLeft, s.Compliance, s.Leaked)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select  ←→ adjust  enter edit  m mode  i initial  f/g fistula  a leak on/off  v view  esc back") + "\n")

	return b.String()
}

func (m model) fistulaLabel(f config.FistulaConfig) string {
	switch f.Kind {
	case physics.KindConductance:
		if !f.Active {
			return "conductance(off)"
		}
	case "":
		return physics.KindNone
	}
	return f.Kind
}

func (m model) plot() string {
	w := m.width - 20
	if w < 40 {
		w = 40
	}

	switch m.view {
	case viewPressure:
		return asciigraph.Plot(m.res.Pressure(),
			asciigraph.Height(10),
			asciigraph.Width(w),
			asciigraph.Offset(6),
			asciigraph.Caption("pressure (cmH2O)"),
		)
	case viewPV:
		loops := metrics.PressureVolume(m.res)
		return analysis.ScatterToASCII(analysis.NewScatter(loops.Total.Volumes(), loops.Total.Pressures()), w, 14)
	default:
		return asciigraph.PlotMany([][]float64{m.res.VD, m.res.VE, m.res.VTotal},
			asciigraph.Height(10),
			asciigraph.Width(w),
			asciigraph.Offset(6),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue, asciigraph.Green),
			asciigraph.Caption("volume (L): right, left, total"),
		)
	}
}

func RunInteractive() error {
	p := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
