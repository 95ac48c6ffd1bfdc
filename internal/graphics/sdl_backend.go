//go:build sdl

package graphics

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// sdlBackend renders through a streaming texture, the pattern SDL2-based
// NES front ends use for a fixed 256x240 source image scaled up to the
// window.
type sdlBackend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	rgb      []byte
	buttons  [8]bool
	quit     bool
}

func newSDLBackend() Backend { return &sdlBackend{} }

func (b *sdlBackend) Name() string { return "sdl" }

func (b *sdlBackend) Open(cfg Config) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("graphics: sdl init: %w", err)
	}

	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	flags := uint32(sdl.WINDOW_SHOWN)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(256*scale), int32(240*scale), flags)
	if err != nil {
		return fmt.Errorf("graphics: sdl create window: %w", err)
	}
	b.window = window

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if cfg.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, rendererFlags)
	if err != nil {
		return fmt.Errorf("graphics: sdl create renderer: %w", err)
	}
	b.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB24, sdl.TEXTUREACCESS_STREAMING, 256, 240)
	if err != nil {
		return fmt.Errorf("graphics: sdl create texture: %w", err)
	}
	b.texture = texture
	b.rgb = make([]byte, 256*240*3)
	return nil
}

func (b *sdlBackend) Close() error {
	if b.texture != nil {
		b.texture.Destroy()
	}
	if b.renderer != nil {
		b.renderer.Destroy()
	}
	if b.window != nil {
		b.window.Destroy()
	}
	sdl.Quit()
	return nil
}

// PresentFrame drops the RGBA buffer's alpha channel into the texture's
// RGB24 layout, uploads it, and presents.
func (b *sdlBackend) PresentFrame(frame []byte) error {
	for i, j := 0, 0; i < len(frame); i, j = i+4, j+3 {
		b.rgb[j] = frame[i]
		b.rgb[j+1] = frame[i+1]
		b.rgb[j+2] = frame[i+2]
	}
	if err := b.texture.Update(nil, b.rgb, 256*3); err != nil {
		return fmt.Errorf("graphics: sdl texture update: %w", err)
	}
	b.renderer.Clear()
	b.renderer.Copy(b.texture, nil, nil)
	b.renderer.Present()
	b.pollEvents()
	return nil
}

func (b *sdlBackend) QueueSamples(samples []float32) error { return nil }

var sdlPlayer1Keys = map[sdl.Keycode]int{
	sdl.K_x: 0, sdl.K_z: 1, sdl.K_RSHIFT: 2, sdl.K_RETURN: 3,
	sdl.K_UP: 4, sdl.K_DOWN: 5, sdl.K_LEFT: 6, sdl.K_RIGHT: 7,
}

func (b *sdlBackend) pollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			b.quit = true
		case *sdl.KeyboardEvent:
			pressed := e.Type == sdl.KEYDOWN
			if e.Keysym.Sym == sdl.K_ESCAPE && pressed {
				b.quit = true
				continue
			}
			if button, ok := sdlPlayer1Keys[e.Keysym.Sym]; ok {
				b.buttons[button] = pressed
			}
		}
	}
}

func (b *sdlBackend) PollButtons(controllerIndex int) [8]bool {
	if controllerIndex != 0 {
		return [8]bool{}
	}
	return b.buttons
}

func (b *sdlBackend) ShouldQuit() bool { return b.quit }
