package ppu

import (
	"testing"

	"nesgo/internal/cartridge"
)

// mockMapper is a minimal cartridge.Mapper standing in for a loaded
// cartridge: a flat 8KB CHR array and nothing else, since PPU tests never
// touch PRG space.
type mockMapper struct {
	chr [0x2000]uint8
}

func (m *mockMapper) ReadPRG(addr uint16) uint8         { return 0 }
func (m *mockMapper) WritePRG(addr uint16, value uint8) {}
func (m *mockMapper) ReadCHR(addr uint16) uint8         { return m.chr[addr&0x1FFF] }
func (m *mockMapper) WriteCHR(addr uint16, value uint8) { m.chr[addr&0x1FFF] = value }
func (m *mockMapper) Mirror() cartridge.Mirror          { return cartridge.MirrorHorizontal }
func (m *mockMapper) Scanline()                         {}
func (m *mockMapper) Tick()                             {}
func (m *mockMapper) IRQ() bool                          { return false }

func newTestPPU() (*PPU, *mockMapper) {
	p := New()
	mock := &mockMapper{}
	p.SetCartridge(mock, MirrorHorizontal)
	return p, mock
}

func TestNewPPUStartsAtScanlineZero(t *testing.T) {
	p := New()
	if p.scanline != 0 || p.cycle != 0 {
		t.Fatalf("new PPU should start at scanline 0 cycle 0, got scanline=%d cycle=%d", p.scanline, p.cycle)
	}
}

func TestResetClearsRenderState(t *testing.T) {
	p, _ := newTestPPU()
	p.scanline = 100
	p.cycle = 50
	p.status.SetVBlank(true)
	p.Reset()
	if p.scanline != 0 || p.cycle != 0 {
		t.Fatalf("Reset did not clear scanline/cycle: scanline=%d cycle=%d", p.scanline, p.cycle)
	}
}

func TestVBlankSetAtScanline241Cycle1(t *testing.T) {
	p, _ := newTestPPU()
	p.control.Set(0x80) // enable NMI

	p.scanline = 241
	p.cycle = 1
	p.Clock()

	if !p.status.VBlank() {
		t.Fatal("expected VBlank flag set at scanline 241 cycle 1")
	}
	if !p.NMI() {
		t.Fatal("expected NMI line latched when NMI enabled at VBlank")
	}
}

func TestPPUSTATUSReadClearsVBlankAndWriteLatch(t *testing.T) {
	p, _ := newTestPPU()
	p.status.SetVBlank(true)
	p.writeLatch = true

	value := p.ReadRegister(0x2002)
	if value&0x80 == 0 {
		t.Fatal("PPUSTATUS read should report VBlank was set")
	}
	if p.status.VBlank() {
		t.Fatal("reading PPUSTATUS should clear VBlank")
	}
	if p.writeLatch {
		t.Fatal("reading PPUSTATUS should clear the address write latch")
	}
}

func TestPPUADDRandPPUDATAWriteThroughToCHR(t *testing.T) {
	p, mock := newTestPPU()

	p.WriteRegister(0x2006, 0x00) // high byte
	p.WriteRegister(0x2006, 0x10) // low byte -> address 0x0010
	p.WriteRegister(0x2007, 0xAB)

	if mock.chr[0x0010] != 0xAB {
		t.Fatalf("expected CHR write at 0x0010, got chr[0x10]=%#x", mock.chr[0x0010])
	}
}

func TestPPUDATAReadOfCHRIsBuffered(t *testing.T) {
	p, mock := newTestPPU()
	mock.chr[0x0020] = 0x42

	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2006, 0x20)
	first := p.ReadRegister(0x2007)
	if first != 0 {
		t.Fatalf("first PPUDATA read should return the stale buffer (0), got %#x", first)
	}
	second := p.ReadRegister(0x2007)
	if second != 0x42 {
		t.Fatalf("second PPUDATA read should return the buffered CHR byte, got %#x", second)
	}
}

func TestPaletteMirroring(t *testing.T) {
	p, _ := newTestPPU()
	p.Write(0x3F00, 0x11)
	if got := p.Read(0x3F10); got != 0x11 {
		t.Fatalf("expected $3F10 to alias $3F00, got %#x", got)
	}
}

func TestHorizontalMirroringMapsTopNametablesTogether(t *testing.T) {
	p, _ := newTestPPU()
	p.SetMirror(MirrorHorizontal)
	p.Write(0x2000, 0x55)
	if got := p.Read(0x2400); got != 0x55 {
		t.Fatalf("horizontal mirroring should alias $2000 and $2400, got %#x", got)
	}
}

func TestFrameCompleteAfterFullScanlineSweep(t *testing.T) {
	p, _ := newTestPPU()
	for frame := 0; frame < ScanlinesPerFrame*CyclesPerScanline+10; frame++ {
		p.Clock()
	}
	if !p.FrameComplete() {
		t.Fatal("expected frame complete after a full scanline/cycle sweep")
	}
}

func TestOAMWriteBackDoorUsedByDMA(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteOAM(0x10, 0x99)
	if p.oam[0x10] != 0x99 {
		t.Fatal("WriteOAM should write directly into OAM")
	}
}

// TestSpriteZeroHitAtOverlappingOpaquePixel reproduces the end-to-end
// sprite-zero scenario: sprite 0 at (X=20, Y=29 in OAM, so it renders on
// screen row 30) over an always-opaque background tile, both layers and
// both left columns enabled. Passing dot (28, 30) should set the
// sprite-zero-hit status bit.
func TestSpriteZeroHitAtOverlappingOpaquePixel(t *testing.T) {
	p, mock := newTestPPU()
	for row := uint16(0); row < 8; row++ {
		mock.chr[row] = 0xFF // lo bitplane, tile 0: every pixel opaque
	}

	p.WriteOAM(0, 29) // Y
	p.WriteOAM(1, 0)  // tile
	p.WriteOAM(2, 0)  // attributes
	p.WriteOAM(3, 20) // X

	p.WriteRegister(0x2001, 0x1E) // background+sprites, both left columns enabled

	for p.scanline != 30 || p.cycle <= 28 {
		p.Clock()
		if p.scanline == 261 {
			break
		}
	}

	if p.ReadRegister(0x2002)&0x40 == 0 {
		t.Fatal("expected sprite-zero-hit status bit set after passing dot (28, 30)")
	}
}

// TestBackgroundLeftColumnClipHidesFirstEightPixels reproduces the PPUMASK
// bit-1 left-column clip: with background rendering on but
// show-background-in-leftmost-8-pixels off, dots 0-7 of a scanline must
// render the universal backdrop even though the background tile underneath
// is opaque, while dot 8 onward shows the tile normally.
func TestBackgroundLeftColumnClipHidesFirstEightPixels(t *testing.T) {
	p, mock := newTestPPU()
	for row := uint16(0); row < 8; row++ {
		mock.chr[row] = 0xFF // tile 0, lo bitplane: every pixel opaque
	}
	p.Write(0x3F00, 0x01) // backdrop color
	p.Write(0x3F01, 0x20) // background palette 0, color 1

	p.WriteRegister(0x2001, 0x08) // background on, left-column clip engaged

	for p.scanline != 30 || p.cycle <= 13 {
		p.Clock()
		if p.scanline == 261 {
			break
		}
	}

	fb := p.FrameBuffer()
	if got := fb[30*ScreenWidth+4]; got != 0x01 {
		t.Fatalf("expected clipped dot 4 to show the backdrop color 0x01, got %#x", got)
	}
	if got := fb[30*ScreenWidth+12]; got != 0x20 {
		t.Fatalf("expected unclipped dot 12 to show the background tile color 0x20, got %#x", got)
	}
}
