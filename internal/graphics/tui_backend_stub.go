//go:build !tui

package graphics

// newTUIBackend falls back to the headless sink unless built with the
// "tui" tag, which pulls in github.com/charmbracelet/bubbletea and
// github.com/charmbracelet/lipgloss.
func newTUIBackend() Backend { return NewHeadlessBackend() }
