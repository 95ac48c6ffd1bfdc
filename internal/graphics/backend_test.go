package graphics

import "testing"

func TestHeadlessBackendAcceptsFramesAndReportsNoInput(t *testing.T) {
	b := NewHeadlessBackend().(*HeadlessBackend)
	if err := b.Open(Config{}); err != nil {
		t.Fatalf("unexpected error opening headless backend: %v", err)
	}
	defer b.Close()

	frame := make([]byte, 256*240*4)
	if err := b.PresentFrame(frame); err != nil {
		t.Fatalf("unexpected error presenting frame: %v", err)
	}
	if b.FrameCount() != 1 {
		t.Fatalf("expected FrameCount 1, got %d", b.FrameCount())
	}

	state := b.PollButtons(0)
	if state != [8]bool{} {
		t.Fatalf("expected headless backend to report no input, got %v", state)
	}
	if b.ShouldQuit() {
		t.Fatal("headless backend should never request quit on its own")
	}
}

func TestCreateBackendUnknownKindFallsBackToHeadless(t *testing.T) {
	b := CreateBackend(BackendKind("nonsense"))
	if _, ok := b.(*HeadlessBackend); !ok {
		t.Fatalf("expected unknown backend kind to fall back to headless, got %T", b)
	}
}
