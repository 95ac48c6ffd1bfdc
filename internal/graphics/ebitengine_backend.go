//go:build !headless

package graphics

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var errWindowClosed = errors.New("graphics: window closed")

// ebitengineBackend opens a window via github.com/hajimehoshi/ebiten/v2 and
// plays audio through its audio/v2 player. Frames pushed by PresentFrame
// are buffered and redrawn by ebiten's own Draw callback, since ebiten
// owns the render loop rather than being driven frame-by-frame like the
// emulator core is.
type ebitengineBackend struct {
	cfg Config

	mu       sync.Mutex
	frame    []byte
	closed   bool
	keyState map[int]bool

	audioCtx    *audio.Context
	audioPlayer *audio.Player

	errCh chan error
}

func newGUIBackend() Backend { return &ebitengineBackend{keyState: make(map[int]bool)} }

func (b *ebitengineBackend) Name() string { return "ebitengine" }

func (b *ebitengineBackend) Open(cfg Config) error {
	b.cfg = cfg
	width, height := 256*cfg.Scale, 240*cfg.Scale
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Fullscreen)
	ebiten.SetVsyncEnabled(cfg.VSync)

	b.audioCtx = audio.NewContext(cfg.SampleRate)

	b.errCh = make(chan error, 1)
	go func() {
		b.errCh <- ebiten.RunGame(&ebitengineGame{backend: b})
	}()
	return nil
}

func (b *ebitengineBackend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	if b.errCh == nil {
		return nil
	}
	if err := <-b.errCh; err != nil && !errors.Is(err, errWindowClosed) {
		return fmt.Errorf("graphics: ebitengine run loop: %w", err)
	}
	return nil
}

func (b *ebitengineBackend) PresentFrame(frame []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frame == nil {
		b.frame = make([]byte, len(frame))
	}
	copy(b.frame, frame)
	return nil
}

func (b *ebitengineBackend) QueueSamples(samples []float32) error {
	if b.audioCtx == nil || len(samples) == 0 {
		return nil
	}
	pcm := make([]byte, len(samples)*4)
	for i, s := range samples {
		bits := int32(s * (1<<31 - 1))
		pcm[i*4+0] = byte(bits)
		pcm[i*4+1] = byte(bits >> 8)
		pcm[i*4+2] = byte(bits >> 16)
		pcm[i*4+3] = byte(bits >> 24)
	}
	player, err := b.audioCtx.NewPlayer(bytes.NewReader(pcm))
	if err != nil {
		return fmt.Errorf("graphics: create audio player: %w", err)
	}
	player.SetVolume(float64(b.cfg.Volume))
	player.Play()
	return nil
}

var player1Keys = []ebiten.Key{
	ebiten.KeyJ, ebiten.KeyK, ebiten.KeySpace, ebiten.KeyEnter,
	ebiten.KeyW, ebiten.KeyS, ebiten.KeyA, ebiten.KeyD,
}

func (b *ebitengineBackend) PollButtons(controllerIndex int) [8]bool {
	var state [8]bool
	if controllerIndex != 0 {
		return state
	}
	for i, key := range player1Keys {
		state[i] = ebiten.IsKeyPressed(key)
	}
	return state
}

func (b *ebitengineBackend) ShouldQuit() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}

// ebitengineGame adapts the backend's push-based frame buffer to ebiten's
// own pull-based Update/Draw loop.
type ebitengineGame struct {
	backend *ebitengineBackend
	image   *ebiten.Image
}

func (g *ebitengineGame) Update() error {
	g.backend.mu.Lock()
	closed := g.backend.closed
	g.backend.mu.Unlock()
	if closed {
		return errWindowClosed
	}
	return nil
}

func (g *ebitengineGame) Draw(screen *ebiten.Image) {
	g.backend.mu.Lock()
	frame := g.backend.frame
	g.backend.mu.Unlock()
	if frame == nil {
		return
	}
	if g.image == nil {
		g.image = ebiten.NewImage(256, 240)
	}
	g.image.WritePixels(frame)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.backend.cfg.Scale), float64(g.backend.cfg.Scale))
	screen.DrawImage(g.image, op)
}

func (g *ebitengineGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := g.backend.cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	return 256 * scale, 240 * scale
}
