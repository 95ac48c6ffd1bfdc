// Package graphics defines the collaborator interfaces the emulator core
// pushes frames, audio, and button state through, and ships a handful of
// independently buildable adapters onto real UI/audio stacks. The core
// never imports any of them directly; cmd/nesgo wires one in by name.
package graphics

// FrameSink receives completed video frames. Frame is a 256x240x4 RGBA
// buffer that the emulator allocates afresh for each frame.
type FrameSink interface {
	PresentFrame(frame []byte) error
}

// AudioSink receives batches of 32-bit float PCM samples pulled from the
// APU's sample buffer.
type AudioSink interface {
	QueueSamples(samples []float32) error
}

// InputSource reports host input translated into NES button state for
// one controller port. PollButtons returns the live pressed/released
// state of all eight buttons in the order A, B, Select, Start, Up, Down,
// Left, Right.
type InputSource interface {
	PollButtons(controllerIndex int) [8]bool
	ShouldQuit() bool
}

// Backend bundles a FrameSink, AudioSink, and InputSource behind a single
// lifecycle: Open before the first frame, Close once the host loop exits.
type Backend interface {
	FrameSink
	AudioSink
	InputSource

	Open(config Config) error
	Close() error
	Name() string
}

// Config carries the subset of internal/config.Config a backend needs to
// open its window/audio device, so backends never import the config
// package directly.
type Config struct {
	Title      string
	Scale      int
	Fullscreen bool
	VSync      bool
	SampleRate int
	Volume     float32
}

// BackendKind names one of the backends CreateBackend can construct.
type BackendKind string

const (
	BackendHeadless BackendKind = "headless"
	BackendGUI      BackendKind = "ebitengine"
	BackendSDL      BackendKind = "sdl"
	BackendTUI      BackendKind = "tui"
)

// CreateBackend constructs the named backend. Kinds compiled out by build
// tags (sdl, tui) or compiled out of the default GUI build (headless
// builds) fall back to the headless backend rather than failing, so a
// binary built without a given tag still runs.
func CreateBackend(kind BackendKind) Backend {
	switch kind {
	case BackendGUI:
		return newGUIBackend()
	case BackendSDL:
		return newSDLBackend()
	case BackendTUI:
		return newTUIBackend()
	default:
		return NewHeadlessBackend()
	}
}
