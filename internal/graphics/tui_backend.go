//go:build tui

package graphics

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tuiBackend renders frames as a grid of colored terminal cells through
// Bubble Tea, for debugging sessions on a machine with no display. Each
// cell downsamples an 8x8 block of the 256x240 frame to its average
// color; terminal key events carry no release, so a button registers as
// pressed for exactly one PollButtons call after its keypress.
type tuiBackend struct {
	mu      sync.Mutex
	frame   []byte
	pressed [8]bool
	quit    bool

	program *tea.Program
	done    chan struct{}
}

func newTUIBackend() Backend { return &tuiBackend{done: make(chan struct{})} }

func (b *tuiBackend) Name() string { return "tui" }

func (b *tuiBackend) Open(cfg Config) error {
	m := tuiModel{backend: b}
	b.program = tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		defer close(b.done)
		_, _ = b.program.Run()
	}()
	return nil
}

func (b *tuiBackend) Close() error {
	if b.program != nil {
		b.program.Quit()
		<-b.done
	}
	return nil
}

func (b *tuiBackend) PresentFrame(frame []byte) error {
	b.mu.Lock()
	if b.frame == nil {
		b.frame = make([]byte, len(frame))
	}
	copy(b.frame, frame)
	b.mu.Unlock()
	if b.program != nil {
		b.program.Send(frameMsg{})
	}
	return nil
}

func (b *tuiBackend) QueueSamples(samples []float32) error { return nil }

var tuiPlayer1Keys = map[string]int{
	"x": 0, "z": 1, "shift": 2, "enter": 3,
	"up": 4, "down": 5, "left": 6, "right": 7,
}

func (b *tuiBackend) PollButtons(controllerIndex int) [8]bool {
	if controllerIndex != 0 {
		return [8]bool{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.pressed
	b.pressed = [8]bool{}
	return state
}

func (b *tuiBackend) ShouldQuit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quit
}

type frameMsg struct{}

type tuiModel struct {
	backend *tuiBackend
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := strings.ToLower(msg.String())
		if key == "q" || key == "esc" {
			m.backend.mu.Lock()
			m.backend.quit = true
			m.backend.mu.Unlock()
			return m, tea.Quit
		}
		if button, ok := tuiPlayer1Keys[key]; ok {
			m.backend.mu.Lock()
			m.backend.pressed[button] = true
			m.backend.mu.Unlock()
		}
	}
	return m, nil
}

const cellSize = 8

func (m tuiModel) View() string {
	m.backend.mu.Lock()
	frame := m.backend.frame
	m.backend.mu.Unlock()
	if frame == nil {
		return "waiting for frame...\n"
	}

	var b strings.Builder
	for y := 0; y < 240; y += cellSize {
		for x := 0; x < 256; x += cellSize {
			r, g, bl := averageCell(frame, x, y)
			style := lipgloss.NewStyle().Background(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, bl)))
			b.WriteString(style.Render(" "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nq/esc to quit | x=A z=B enter=Start shift=Select arrows=D-pad\n")
	return b.String()
}

func averageCell(frame []byte, x0, y0 int) (r, g, b uint8) {
	var rs, gs, bs, n int
	for y := y0; y < y0+cellSize && y < 240; y++ {
		for x := x0; x < x0+cellSize && x < 256; x++ {
			i := (y*256 + x) * 4
			rs += int(frame[i])
			gs += int(frame[i+1])
			bs += int(frame[i+2])
			n++
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	return uint8(rs / n), uint8(gs / n), uint8(bs / n)
}
