//go:build headless

package graphics

// newGUIBackend falls back to the headless sink in builds tagged
// "headless", which exclude the ebiten/v2 dependency entirely.
func newGUIBackend() Backend { return NewHeadlessBackend() }
