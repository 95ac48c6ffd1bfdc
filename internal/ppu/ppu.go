// Package ppu implements the picture processing unit: the loopy-register
// scroll/address machine, the per-dot background shift-register pipeline,
// sprite evaluation and rendering, and the 262x341 NTSC timing grid.
//
// Unlike a per-pixel recomputation, this PPU loads shifters once every 8
// dots and shifts them every dot, which is what makes mid-scanline register
// writes (the classic split-scroll trick) produce the right picture.
package ppu

import "nesgo/internal/cartridge"

// Mirror selects how the 2KB internal nametable RAM is mapped across the
// logical 4KB nametable address space.
type Mirror uint8

const (
	MirrorHorizontal Mirror = iota
	MirrorVertical
	MirrorSingleLower
	MirrorSingleUpper
	MirrorFourScreen
)

const (
	ScreenWidth  = 256
	ScreenHeight = 240

	CyclesPerScanline = 341
	ScanlinesPerFrame = 262
)

// PPU is the 2C02-class picture processing unit.
type PPU struct {
	nametable  [2048]uint8
	paletteRAM [32]uint8
	oam        [256]uint8
	oamAddress uint8

	control control
	mask    mask
	status  status

	vramAddress     loopyRegister
	tempVRAMAddress loopyRegister
	fineX           uint8
	writeLatch      bool
	readBuffer      uint8

	scanline      int16
	cycle         uint16
	frame         uint64
	frameComplete bool

	bgNextTileID     uint8
	bgNextTileAttrib uint8
	bgNextTileLSB    uint8
	bgNextTileMSB    uint8

	bgShifterPatternLo uint16
	bgShifterPatternHi uint16
	bgShifterAttribLo  uint16
	bgShifterAttribHi  uint16

	secondaryOAM   [32]uint8
	spriteCount    uint8
	sprite0Present bool

	spriteShifterPatternLo [8]uint8
	spriteShifterPatternHi [8]uint8
	spriteAttributes       [8]uint8
	spritePositions        [8]uint8

	mapper  cartridge.Mapper
	mirror  Mirror
	nmiLine bool

	frameBuffer [ScreenWidth * ScreenHeight]uint8
}

// New creates a PPU with no cartridge attached; call SetCartridge before
// the first Clock.
func New() *PPU {
	return &PPU{}
}

// SetCartridge connects the mapper used for CHR-ROM/RAM access and adopts
// its nametable mirroring mode.
func (p *PPU) SetCartridge(m cartridge.Mapper, mirror Mirror) {
	p.mapper = m
	p.mirror = mirror
}

// SetMirror updates the mirroring mode; the bus calls this after every dot
// with the mapper's current mode, so runtime mirroring switches take effect.
func (p *PPU) SetMirror(mirror Mirror) { p.mirror = mirror }

// Reset returns the PPU to its power-up state.
func (p *PPU) Reset() {
	p.control.Set(0)
	p.mask.Set(0)
	p.status.Set(0)
	p.oamAddress = 0
	p.writeLatch = false
	p.vramAddress.Set(0)
	p.tempVRAMAddress.Set(0)
	p.fineX = 0
	p.readBuffer = 0
	p.scanline = 0
	p.cycle = 0
	p.nmiLine = false
}

// Clock advances the PPU by one dot. The bus calls this three times per
// CPU cycle.
func (p *PPU) Clock() {
	if p.scanline >= 0 && p.scanline < 240 && p.cycle >= 1 && p.cycle <= 256 {
		p.renderPixel()
	}

	if p.scanline >= -1 && p.scanline < 240 {
		if p.scanline == -1 && p.cycle == 1 {
			p.status.SetVBlank(false)
			p.status.SetSprite0Hit(false)
			p.status.SetSpriteOverflow(false)
		}

		if (p.cycle >= 2 && p.cycle < 258) || (p.cycle >= 321 && p.cycle < 338) {
			p.updateShifters()

			switch (p.cycle - 1) % 8 {
			case 0:
				p.loadBackgroundShifters()
				p.bgNextTileID = p.Read(0x2000 | (p.vramAddress.Get() & 0x0FFF))
			case 2:
				address := uint16(0x23C0) |
					(p.vramAddress.NametableY() << 11) |
					(p.vramAddress.NametableX() << 10) |
					((p.vramAddress.CoarseY() >> 2) << 3) |
					(p.vramAddress.CoarseX() >> 2)
				p.bgNextTileAttrib = p.Read(address)
				if p.vramAddress.CoarseY()&0x02 != 0 {
					p.bgNextTileAttrib >>= 4
				}
				if p.vramAddress.CoarseX()&0x02 != 0 {
					p.bgNextTileAttrib >>= 2
				}
				p.bgNextTileAttrib &= 0x03
			case 4:
				table := p.control.BackgroundPatternTable()
				address := table | (uint16(p.bgNextTileID) << 4) | p.vramAddress.FineY()
				p.bgNextTileLSB = p.Read(address)
			case 6:
				table := p.control.BackgroundPatternTable()
				address := table | (uint16(p.bgNextTileID) << 4) | p.vramAddress.FineY()
				p.bgNextTileMSB = p.Read(address + 8)
			case 7:
				if p.mask.IsRenderingEnabled() {
					p.vramAddress.IncrementX()
				}
			}
		}

		if p.cycle == 256 && p.mask.IsRenderingEnabled() {
			p.vramAddress.IncrementY()
		}

		if p.cycle == 257 {
			p.loadBackgroundShifters()
			if p.mask.IsRenderingEnabled() {
				p.vramAddress.TransferX(&p.tempVRAMAddress)
			}
			p.spriteEvaluation()
		}

		if p.cycle == 320 {
			p.spriteFetching()
		}

		if p.cycle == 338 || p.cycle == 340 {
			p.bgNextTileID = p.Read(0x2000 | (p.vramAddress.Get() & 0x0FFF))
		}

		if p.scanline == -1 && p.cycle >= 280 && p.cycle < 305 && p.mask.IsRenderingEnabled() {
			p.vramAddress.TransferY(&p.tempVRAMAddress)
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.status.SetVBlank(true)
		if p.control.EnableNMI() {
			p.nmiLine = true
		}
	}

	p.cycle++
	if p.cycle >= CyclesPerScanline {
		p.cycle = 0
		p.scanline++

		if p.scanline == 0 && (p.frame&1) == 1 && p.mask.IsRenderingEnabled() {
			p.cycle = 1
		}

		if p.scanline >= ScanlinesPerFrame-1 {
			p.scanline = -1
			p.frameComplete = true
			p.frame++
		}
	}
}

// NMI reports and clears the latched NMI output line.
func (p *PPU) NMI() bool {
	v := p.nmiLine
	p.nmiLine = false
	return v
}

// FrameComplete reports whether a full frame finished since the last call
// that cleared it, then clears it.
func (p *PPU) FrameComplete() bool {
	v := p.frameComplete
	p.frameComplete = false
	return v
}

// FrameBuffer returns the current frame as 256x240 palette indices
// (0x00-0x3F); the caller maps these through the hardware palette.
func (p *PPU) FrameBuffer() *[ScreenWidth * ScreenHeight]uint8 { return &p.frameBuffer }

// Scanline and Cycle expose the dot cursor for mapper IRQ counters (MMC3)
// that need to observe PPU A12 toggling.
func (p *PPU) Scanline() int16 { return p.scanline }
func (p *PPU) Cycle() uint16   { return p.cycle }

// RenderingEnabled reports whether background or sprite rendering is on,
// the condition a mapper's scanline counter (MMC3's A12 filter) gates on.
func (p *PPU) RenderingEnabled() bool { return p.mask.IsRenderingEnabled() }

// SaveState is the complete register and memory snapshot a save-state
// export/import round-trips; it excludes CHR/PRG, which belong to the
// cartridge, and the render pipeline's mid-scanline shifters, which a
// scanline boundary always re-derives.
type SaveState struct {
	Control    uint8
	Mask       uint8
	Status     uint8
	OAMAddress uint8
	V          uint16
	T          uint16
	FineX      uint8
	WriteLatch bool
	ReadBuffer uint8
	Nametable  [2048]uint8
	Palette    [32]uint8
	OAM        [256]uint8
}

// ExportState snapshots every register and memory a save-state needs to
// resume rendering exactly.
func (p *PPU) ExportState() SaveState {
	return SaveState{
		Control:    p.control.Get(),
		Mask:       p.mask.Get(),
		Status:     p.status.Get(),
		OAMAddress: p.oamAddress,
		V:          p.vramAddress.Get(),
		T:          p.tempVRAMAddress.Get(),
		FineX:      p.fineX,
		WriteLatch: p.writeLatch,
		ReadBuffer: p.readBuffer,
		Nametable:  p.nametable,
		Palette:    p.paletteRAM,
		OAM:        p.oam,
	}
}

// ImportState restores a snapshot produced by ExportState, resuming at the
// start of scanline 0.
func (p *PPU) ImportState(s SaveState) {
	p.control.Set(s.Control)
	p.mask.Set(s.Mask)
	p.status.Set(s.Status)
	p.oamAddress = s.OAMAddress
	p.vramAddress.Set(s.V)
	p.tempVRAMAddress.Set(s.T)
	p.fineX = s.FineX
	p.writeLatch = s.WriteLatch
	p.readBuffer = s.ReadBuffer
	p.nametable = s.Nametable
	p.paletteRAM = s.Palette
	p.oam = s.OAM
	p.scanline = 0
	p.cycle = 0
}

// WriteRegister handles a CPU write to one of $2000-$2007.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr & 0x7 {
	case 0:
		p.control.Set(value)
		p.tempVRAMAddress.SetNametableX(uint16(p.control.NametableX()))
		p.tempVRAMAddress.SetNametableY(uint16(p.control.NametableY()))
	case 1:
		p.mask.Set(value)
	case 3:
		p.oamAddress = value
	case 4:
		p.oam[p.oamAddress] = value
		p.oamAddress++
	case 5:
		if !p.writeLatch {
			p.tempVRAMAddress.SetCoarseX(uint16(value >> 3))
			p.fineX = value & 0x07
			p.writeLatch = true
		} else {
			p.tempVRAMAddress.SetFineY(uint16(value & 0x07))
			p.tempVRAMAddress.SetCoarseY(uint16(value >> 3))
			p.writeLatch = false
		}
	case 6:
		if !p.writeLatch {
			p.tempVRAMAddress.Set((p.tempVRAMAddress.Get() & 0x00FF) | ((uint16(value) & 0x3F) << 8))
			p.writeLatch = true
		} else {
			p.tempVRAMAddress.Set((p.tempVRAMAddress.Get() & 0xFF00) | uint16(value))
			p.vramAddress.Set(p.tempVRAMAddress.Get())
			p.writeLatch = false
		}
	case 7:
		p.Write(p.vramAddress.Get(), value)
		p.vramAddress.Set(p.vramAddress.Get() + p.control.IncrementMode())
	}
}

// ReadRegister handles a CPU read from one of $2000-$2007.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr & 0x7 {
	case 2:
		value := p.status.Get()
		p.status.SetVBlank(false)
		p.writeLatch = false
		return value
	case 4:
		return p.oam[p.oamAddress]
	case 7:
		value := p.readBuffer
		p.readBuffer = p.Read(p.vramAddress.Get())
		if p.vramAddress.Get() >= 0x3F00 {
			value = p.readBuffer
		}
		p.vramAddress.Set(p.vramAddress.Get() + p.control.IncrementMode())
		return value
	}
	return 0
}

// WriteOAM is the back door used by the bus's OAM-DMA state machine.
func (p *PPU) WriteOAM(index uint8, value uint8) { p.oam[index] = value }

// OAMAddress exposes the current $2003 address, which DMA starts writing at.
func (p *PPU) OAMAddress() uint8 { return p.oamAddress }

// Read performs an internal PPU-bus read over $0000-$3FFF.
func (p *PPU) Read(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.mapper != nil {
			return p.mapper.ReadCHR(addr)
		}
		return 0
	case addr < 0x3F00:
		return p.nametable[p.mirrorNametable(addr)]
	default:
		return p.paletteRAM[mirrorPalette(addr)]
	}
}

// Write performs an internal PPU-bus write over $0000-$3FFF.
func (p *PPU) Write(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.mapper != nil {
			p.mapper.WriteCHR(addr, value)
		}
	case addr < 0x3F00:
		p.nametable[p.mirrorNametable(addr)] = value
	default:
		p.paletteRAM[mirrorPalette(addr)] = value
	}
}

func (p *PPU) mirrorNametable(addr uint16) uint16 {
	addr = (addr - 0x2000) % 0x1000
	table := addr / 0x0400
	offset := addr % 0x0400
	switch p.mirror {
	case MirrorVertical:
		return addr % 0x0800
	case MirrorHorizontal:
		return (table/2)*0x0400 + offset
	case MirrorSingleLower:
		return offset
	case MirrorSingleUpper:
		return 0x0400 + offset
	default: // four-screen: cartridge supplies the extra 2KB, modeled as flat here
		return addr % 0x0800
	}
}

// mirrorPalette folds the $3F00-$3F1F palette RAM mirrors, including the
// four sprite-backdrop addresses ($3F10/14/18/1C) aliasing their background
// counterparts.
func mirrorPalette(addr uint16) uint16 {
	addr = (addr - 0x3F00) % 32
	if addr >= 16 && addr%4 == 0 {
		addr -= 16
	}
	return addr
}
