package ppu

// spriteEvaluation scans primary OAM for sprites visible on the next
// scanline (cycles 65-256 on real hardware; performed atomically here at
// cycle 257 since nothing observes the in-progress state). Sets the
// sprite-overflow flag once more than 8 sprites match.
func (p *PPU) spriteEvaluation() {
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = 0xFF
	}
	p.spriteCount = 0
	p.sprite0Present = false

	if !p.mask.IsRenderingEnabled() {
		return
	}

	spriteHeight := uint16(8)
	if p.control.SpriteSize() != 0 {
		spriteHeight = 16
	}

	for i := uint8(0); i < 64; i++ {
		oamIndex := uint16(i) * 4
		spriteY := uint16(p.oam[oamIndex])
		diff := uint16(p.scanline) - spriteY

		if diff < spriteHeight {
			if p.spriteCount >= 8 {
				p.status.SetSpriteOverflow(true)
				break
			}
			secondaryIndex := uint16(p.spriteCount) * 4
			copy(p.secondaryOAM[secondaryIndex:secondaryIndex+4], p.oam[oamIndex:oamIndex+4])
			if i == 0 {
				p.sprite0Present = true
			}
			p.spriteCount++
		}
	}
}

// spriteFetching loads pattern bytes for every sprite selected by
// evaluation, honoring 8x8/8x16 addressing and the flip attribute bits.
func (p *PPU) spriteFetching() {
	spriteHeight := uint16(8)
	spritePatternTable := p.control.SpritePatternTable()
	if p.control.SpriteSize() != 0 {
		spriteHeight = 16
	}

	for i := uint8(0); i < p.spriteCount; i++ {
		secondaryIndex := uint16(i) * 4
		spriteY := p.secondaryOAM[secondaryIndex+0]
		tileIndex := p.secondaryOAM[secondaryIndex+1]
		attributes := p.secondaryOAM[secondaryIndex+2]
		spriteX := p.secondaryOAM[secondaryIndex+3]

		p.spriteAttributes[i] = attributes
		p.spritePositions[i] = spriteX

		spriteRow := uint16(p.scanline) - uint16(spriteY)
		if attributes&0x80 != 0 {
			spriteRow = spriteHeight - 1 - spriteRow
		}

		var patternAddress uint16
		if spriteHeight == 16 {
			if spriteRow < 8 {
				patternAddress = (uint16(tileIndex&0x01) << 12) | (uint16(tileIndex&0xFE) << 4) | (spriteRow & 0x07)
			} else {
				patternAddress = (uint16(tileIndex&0x01) << 12) | ((uint16(tileIndex&0xFE) + 1) << 4) | ((spriteRow - 8) & 0x07)
			}
		} else {
			patternAddress = spritePatternTable | (uint16(tileIndex) << 4) | (spriteRow & 0x07)
		}

		lo := p.Read(patternAddress)
		hi := p.Read(patternAddress + 8)
		if attributes&0x40 != 0 {
			lo = reverseByte(lo)
			hi = reverseByte(hi)
		}
		p.spriteShifterPatternLo[i] = lo
		p.spriteShifterPatternHi[i] = hi
	}
}

func reverseByte(b uint8) uint8 {
	b = (b&0xF0)>>4 | (b&0x0F)<<4
	b = (b&0xCC)>>2 | (b&0x33)<<2
	b = (b&0xAA)>>1 | (b&0x55)<<1
	return b
}

// renderSprites returns the opaque sprite pixel (if any) active at column x,
// scanning secondary OAM in priority order (lowest index wins ties).
func (p *PPU) renderSprites(x uint16) (pixel uint8, palette uint8, priority bool, isSprite0 bool) {
	if !p.mask.RenderSprites() {
		return 0, 0, false, false
	}
	if x < 8 && !p.mask.RenderSpritesLeft() {
		return 0, 0, false, false
	}

	for i := uint8(0); i < p.spriteCount; i++ {
		offset := int16(x) - int16(p.spritePositions[i])
		if offset < 0 || offset >= 8 {
			continue
		}
		shift := uint8(7 - offset)
		lo := (p.spriteShifterPatternLo[i] >> shift) & 0x01
		hi := (p.spriteShifterPatternHi[i] >> shift) & 0x01
		value := (hi << 1) | lo
		if value == 0 {
			continue
		}
		spritePalette := p.spriteAttributes[i] & 0x03
		spritePriority := (p.spriteAttributes[i] & 0x20) == 0
		sprite0 := i == 0 && p.sprite0Present
		return value, spritePalette, spritePriority, sprite0
	}
	return 0, 0, false, false
}
