package graphics

// HeadlessBackend discards frames and audio and reports no input; it
// backs -nogui runs and anything the sdl/tui build tags weren't compiled
// in for.
type HeadlessBackend struct {
	frameCount int
}

// NewHeadlessBackend returns a Backend that does nothing observable,
// useful for automated runs and as the fallback when a tagged backend
// wasn't compiled in.
func NewHeadlessBackend() Backend { return &HeadlessBackend{} }

func (b *HeadlessBackend) Open(Config) error { return nil }
func (b *HeadlessBackend) Close() error      { return nil }
func (b *HeadlessBackend) Name() string      { return "headless" }

func (b *HeadlessBackend) PresentFrame(frame []byte) error {
	b.frameCount++
	return nil
}

func (b *HeadlessBackend) QueueSamples(samples []float32) error { return nil }

func (b *HeadlessBackend) PollButtons(controllerIndex int) [8]bool { return [8]bool{} }

func (b *HeadlessBackend) ShouldQuit() bool { return false }

// FrameCount reports how many frames PresentFrame has been called with,
// for tests that want to confirm the host loop is actually driving frames.
func (b *HeadlessBackend) FrameCount() int { return b.frameCount }
