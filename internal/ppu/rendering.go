package ppu

// loadBackgroundShifters loads the next tile's pattern/attribute bits into
// the low byte of each 16-bit shifter; the high byte holds pixels already
// in flight and keeps shifting out independently.
func (p *PPU) loadBackgroundShifters() {
	p.bgShifterPatternLo = (p.bgShifterPatternLo & 0xFF00) | uint16(p.bgNextTileLSB)
	p.bgShifterPatternHi = (p.bgShifterPatternHi & 0xFF00) | uint16(p.bgNextTileMSB)

	if p.bgNextTileAttrib&0x01 != 0 {
		p.bgShifterAttribLo = (p.bgShifterAttribLo & 0xFF00) | 0x00FF
	} else {
		p.bgShifterAttribLo = p.bgShifterAttribLo & 0xFF00
	}
	if p.bgNextTileAttrib&0x02 != 0 {
		p.bgShifterAttribHi = (p.bgShifterAttribHi & 0xFF00) | 0x00FF
	} else {
		p.bgShifterAttribHi = p.bgShifterAttribHi & 0xFF00
	}
}

func (p *PPU) updateShifters() {
	if p.mask.RenderBackground() {
		p.bgShifterPatternLo <<= 1
		p.bgShifterPatternHi <<= 1
		p.bgShifterAttribLo <<= 1
		p.bgShifterAttribHi <<= 1
	}
}

// renderPixel composes the background and sprite pixel at the current dot
// and writes a palette index into the frame buffer.
func (p *PPU) renderPixel() {
	x := p.cycle - 1
	y := uint16(p.scanline)
	if x >= ScreenWidth || y >= ScreenHeight {
		return
	}

	if !p.mask.IsRenderingEnabled() {
		p.frameBuffer[y*ScreenWidth+x] = p.Read(0x3F00) & 0x3F
		return
	}

	bgPixel, bgPalette := uint8(0), uint8(0)
	if p.mask.RenderBackground() {
		bitMux := uint16(0x8000 >> p.fineX)
		p0, p1 := uint8(0), uint8(0)
		if p.bgShifterPatternLo&bitMux != 0 {
			p0 = 1
		}
		if p.bgShifterPatternHi&bitMux != 0 {
			p1 = 1
		}
		bgPixel = (p1 << 1) | p0

		pal0, pal1 := uint8(0), uint8(0)
		if p.bgShifterAttribLo&bitMux != 0 {
			pal0 = 1
		}
		if p.bgShifterAttribHi&bitMux != 0 {
			pal1 = 1
		}
		bgPalette = (pal1 << 1) | pal0
	}
	if x < 8 && !p.mask.RenderBackgroundLeft() {
		bgPixel, bgPalette = 0, 0
	}

	spritePixel, spritePalette, spritePriority, isSprite0 := p.renderSprites(x)

	finalPixel, finalPalette := uint8(0), uint8(0)
	switch {
	case bgPixel == 0 && spritePixel == 0:
		// both transparent: universal backdrop
	case bgPixel == 0 && spritePixel > 0:
		finalPixel, finalPalette = spritePixel, spritePalette+4
	case bgPixel > 0 && spritePixel == 0:
		finalPixel, finalPalette = bgPixel, bgPalette
	default:
		if spritePriority {
			finalPixel, finalPalette = spritePixel, spritePalette+4
		} else {
			finalPixel, finalPalette = bgPixel, bgPalette
		}
		if isSprite0 && x >= 1 && x < 255 && p.mask.RenderBackground() && p.mask.RenderSprites() {
			if p.mask.RenderBackgroundLeft() || x >= 8 {
				p.status.SetSprite0Hit(true)
			}
		}
	}

	address := uint16((finalPalette << 2) | (finalPixel & 0x03))
	p.frameBuffer[y*ScreenWidth+x] = p.Read(0x3F00+address) & 0x3F
}
