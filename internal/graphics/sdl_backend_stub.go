//go:build !sdl

package graphics

// newSDLBackend falls back to the headless sink unless built with the
// "sdl" tag, which pulls in the cgo-backed github.com/veandco/go-sdl2
// dependency.
func newSDLBackend() Backend { return NewHeadlessBackend() }
