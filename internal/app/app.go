package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trigator.klederson.com/internal/config"
	"trigator.klederson.com/internal/plane"
	"trigator.klederson.com/internal/sampler"
	"trigator.klederson.com/internal/survey"
	"trigator.klederson.com/internal/ui"
	"trigator.klederson.com/internal/wireless"
)

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	round      *survey.Round
	source     sampler.Source
	logger     *slog.Logger
	send       func(tea.Msg) // set once the program exists
	cancel     context.CancelFunc
	history    [3]*wireless.Ring
	measuredAt [3]time.Time
	progress   sampler.Progress
}

// AppModel is the root Bubble Tea model for TRI-GATOR.
type AppModel struct {
	width  int
	height int

	sourceName string
	exponent   float64
	count      int
	interval   time.Duration

	message string
	isError bool

	shared *shared
}

// New creates a new AppModel sampling from src.
func New(cfg *config.Config, src sampler.Source, sourceName string, logger *slog.Logger) AppModel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &shared{
		round:  survey.NewRound(cfg.AnchorPoints()),
		source: src,
		logger: logger,
	}
	for i := range s.history {
		s.history[i] = wireless.NewRing(config.HistoryCapacity)
	}
	return AppModel{
		sourceName: sourceName,
		exponent:   config.ClampExponent(cfg.PathLossExponent),
		count:      config.ClampCount(cfg.Sampling.Count),
		interval:   config.ClampInterval(cfg.Sampling.Interval),
		message:    "Select an anchor (1-3), stand on it and press enter",
		shared:     s,
	}
}

// Attach connects the model to its program so sampling progress can be
// delivered while a run is in flight. Must be called before p.Run().
func (m *AppModel) Attach(p *tea.Program) {
	m.shared.send = p.Send
}

func (m AppModel) Init() tea.Cmd {
	return tickCmd()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		return m, tickCmd()

	case SampleProgressMsg:
		m.shared.progress = msg.Progress
		if msg.Progress.Err == nil {
			m.shared.history[msg.Anchor].Push(msg.Progress.Reading.RxPowerDBm)
		}
		return m, nil

	case SampleDoneMsg:
		return m.finishSampling(msg), nil
	}

	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := m.shared.round

	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.cancelSampling()
		return m, tea.Quit

	case "1", "2", "3":
		m.setError(r.Select(int(msg.Runes[0] - '1')))

	case "tab":
		m.setError(r.Select((r.Selected() + 1) % 3))

	case "shift+tab":
		m.setError(r.Select((r.Selected() + 3 - 1) % 3))

	case "enter", "m", "M":
		return m.startSampling()

	case "esc":
		if m.cancelSampling() {
			m.setMessage("Cancelling...")
		}

	case "c", "C":
		m.solve()

	case "+", "=":
		m.setExponent(m.exponent + config.ExponentStep)

	case "-", "_":
		m.setExponent(m.exponent - config.ExponentStep)

	case "]":
		m.count = config.ClampCount(m.count + 1)

	case "[":
		m.count = config.ClampCount(m.count - 1)

	case "}":
		m.interval = config.ClampInterval(m.interval + config.IntervalStep)

	case "{":
		m.interval = config.ClampInterval(m.interval - config.IntervalStep)

	case "up":
		m.moveSelected(0, config.AnchorMoveStep)
	case "down":
		m.moveSelected(0, -config.AnchorMoveStep)
	case "left":
		m.moveSelected(-config.AnchorMoveStep, 0)
	case "right":
		m.moveSelected(config.AnchorMoveStep, 0)
	case "shift+up":
		m.moveSelected(0, config.AnchorMoveFast)
	case "shift+down":
		m.moveSelected(0, -config.AnchorMoveFast)
	case "shift+left":
		m.moveSelected(-config.AnchorMoveFast, 0)
	case "shift+right":
		m.moveSelected(config.AnchorMoveFast, 0)

	case "r":
		if m.setError(r.Reset()) {
			m.clearHistory()
			m.setMessage("New round")
		}

	case "R":
		if m.setError(r.RestoreLayout()) {
			m.clearHistory()
			m.setMessage("Anchors back to the initial layout")
		}
	}

	return m, nil
}

// startSampling begins a run on the selected anchor. The run itself executes
// as a command so the update loop keeps drawing.
func (m AppModel) startSampling() (tea.Model, tea.Cmd) {
	r := m.shared.round
	i := r.Selected()
	if i == survey.NoAnchor {
		m.setMessage("Select an anchor first (1-3)")
		return m, nil
	}
	if !m.setError(r.BeginSampling(i)) {
		return m, nil
	}

	a, _ := r.Anchor(i)
	if pos, ok := m.shared.source.(wireless.Positioner); ok {
		pos.MoveTo(a.X, a.Y)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.shared.cancel = cancel
	m.shared.progress = sampler.Progress{Count: m.count}

	logger := m.shared.logger.With("anchor", i+1)
	send := m.shared.send
	s := sampler.New(m.shared.source,
		sampler.WithLogger(logger),
		sampler.WithObserver(func(p sampler.Progress) {
			if send != nil {
				send(SampleProgressMsg{Anchor: i, Progress: p})
			}
		}),
	)
	count, interval := m.count, m.interval
	logger.Info("sampling started", "count", count, "interval", interval)
	m.setMessage(fmt.Sprintf("Sampling anchor %d: %d readings over %s", i+1, count,
		ui.FormatDuration(sampler.Duration(count, interval))))

	return m, func() tea.Msg {
		meas, err := s.Sample(ctx, count, interval)
		return SampleDoneMsg{Anchor: i, Measurement: meas, Err: err}
	}
}

func (m AppModel) finishSampling(msg SampleDoneMsg) AppModel {
	if m.shared.cancel != nil {
		m.shared.cancel()
		m.shared.cancel = nil
	}
	logger := m.shared.logger.With("anchor", msg.Anchor+1)

	if err := m.shared.round.FinishSampling(msg.Anchor, msg.Measurement, msg.Err); err != nil {
		logger.Error("sampling result dropped", "error", err)
		m.setError(err)
		return m
	}

	switch {
	case errors.Is(msg.Err, sampler.ErrCancelled):
		logger.Info("sampling cancelled")
		m.setMessage(fmt.Sprintf("Anchor %d: sampling cancelled, previous value kept", msg.Anchor+1))
	case msg.Err != nil:
		logger.Warn("sampling failed", "error", msg.Err)
		m.setError(fmt.Errorf("anchor %d: %w", msg.Anchor+1, msg.Err))
	default:
		m.shared.measuredAt[msg.Anchor] = time.Now()
		logger.Info("anchor measured", "measurement", msg.Measurement.String())
		m.setMessage(fmt.Sprintf("Anchor %d measured: %s", msg.Anchor+1, msg.Measurement))
	}
	return m
}

// cancelSampling aborts a running sample. It reports whether one was running.
func (m AppModel) cancelSampling() bool {
	if m.shared.cancel == nil {
		return false
	}
	m.shared.cancel()
	return true
}

func (m *AppModel) solve() {
	sol, err := m.shared.round.Solve(m.exponent)
	if err != nil {
		m.shared.logger.Warn("solve failed", "exponent", m.exponent, "error", err)
		m.setError(err)
		return
	}
	m.shared.logger.Info("location estimated", "location", sol.Location.String(), "exponent", m.exponent)
	m.setMessage(fmt.Sprintf("Estimated location %s (n=%.1f)", sol.Location, m.exponent))
}

// setExponent changes the path-loss exponent and refreshes a solved round.
func (m *AppModel) setExponent(n float64) {
	// Round to the step so repeated adjustments do not drift.
	m.exponent = config.ClampExponent(float64(int(n/config.ExponentStep+0.5)) * config.ExponentStep)
	switch m.shared.round.Phase() {
	case survey.PhaseSolved, survey.PhaseSolveFailed:
		m.solve()
	}
}

func (m *AppModel) moveSelected(dx, dy float64) {
	r := m.shared.round
	i := r.Selected()
	if i == survey.NoAnchor {
		return
	}
	a, _ := r.Anchor(i)
	if m.setError(r.MoveAnchor(i, a.X+dx, a.Y+dy)) {
		m.shared.history[i].Clear()
		m.shared.measuredAt[i] = time.Time{}
		m.setMessage(fmt.Sprintf("Anchor %d moved to (%.1f, %.1f), measure it again", i+1, a.X+dx, a.Y+dy))
	}
}

func (m *AppModel) clearHistory() {
	for i := range m.shared.history {
		m.shared.history[i].Clear()
		m.shared.measuredAt[i] = time.Time{}
	}
}

func (m *AppModel) setMessage(s string) {
	m.message = s
	m.isError = false
}

// setError shows err in the status bar and reports whether err was nil.
func (m *AppModel) setError(err error) bool {
	if err == nil {
		return true
	}
	m.message = err.Error()
	m.isError = true
	return false
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing TRI-GATOR..."
	}

	menuH := 1
	statusH := 1
	bodyH := m.height - menuH - statusH
	if bodyH < ui.AnchorListHeight+6 {
		bodyH = ui.AnchorListHeight + 6
	}

	planeW := m.width * 3 / 5
	if planeW < 30 {
		planeW = 30
	}
	sideW := m.width - planeW
	if sideW < 36 {
		sideW = 36
		planeW = m.width - sideW
	}

	r := m.shared.round
	menuBar := ui.RenderMenuBar(m.width, m.sourceName, r.Phase())

	innerW := planeW - 4
	innerH := bodyH - 4
	if innerW < 5 {
		innerW = 5
	}
	if innerH < 3 {
		innerH = 3
	}
	planeContent := plane.Render(innerW, innerH, plane.NewScene(r, m.exponent))
	legend := plane.RenderLegend(innerW)
	planePanel := ui.RenderPlanePanel(planeW, bodyH, planeContent, legend)

	list := ui.RenderAnchorList(r.Anchors(), r.Selected(), r.Sampling(), m.exponent, sideW)
	detail := ui.RenderDetailPanel(m.detail(), sideW, bodyH-ui.AnchorListHeight)
	side := lipgloss.JoinVertical(lipgloss.Left, list, detail)

	statusBar := ui.RenderStatusBar(m.width, ui.Status{
		Phase:    r.Phase(),
		Measured: r.Measured(),
		Exponent: m.exponent,
		Count:    m.count,
		Interval: m.interval,
		Run:      sampler.Duration(m.count, m.interval),
		Message:  m.message,
		IsError:  m.isError,
	})

	return ui.ComposeLayout(menuBar, planePanel, side, statusBar)
}

func (m AppModel) detail() ui.Detail {
	r := m.shared.round
	d := ui.Detail{Index: r.Selected(), Exponent: m.exponent}
	if sol, ok := r.Solution(); ok {
		d.Solution = &sol
	} else if r.Phase() == survey.PhaseSolveFailed {
		d.SolveErr = r.Err()
	}
	if d.Index == survey.NoAnchor {
		return d
	}

	d.Anchor, _ = r.Anchor(d.Index)
	d.History = m.shared.history[d.Index].Values()
	d.MeasuredAt = m.shared.measuredAt[d.Index]
	if r.Sampling() == d.Index {
		d.Sampling = true
		d.Iteration = m.shared.progress.Iteration
		d.Count = m.shared.progress.Count
	}
	return d
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
