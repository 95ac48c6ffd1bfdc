package ppu

// control models PPUCTRL ($2000, write-only).
//
// Bit layout (VPHB SINN):
//
//	7: V nmi enable   6: P master/slave (unused)   5: H sprite height
//	4: B bg pattern table   3: S sprite pattern table   2: I addr increment
//	1-0: NN base nametable
type control struct{ register uint8 }

func (c *control) Set(v uint8) { c.register = v }
func (c *control) Get() uint8  { return c.register }

func (c *control) NametableX() uint8 { return c.register & 0x01 }
func (c *control) NametableY() uint8 { return (c.register >> 1) & 0x01 }

func (c *control) IncrementMode() uint16 {
	if (c.register>>2)&0x01 != 0 {
		return 32
	}
	return 1
}

func (c *control) SpritePatternTable() uint16 {
	if (c.register>>3)&0x01 != 0 {
		return 0x1000
	}
	return 0x0000
}

func (c *control) BackgroundPatternTable() uint16 {
	if (c.register>>4)&0x01 != 0 {
		return 0x1000
	}
	return 0x0000
}

func (c *control) SpriteSize() uint8  { return (c.register >> 5) & 0x01 }
func (c *control) EnableNMI() bool    { return (c.register>>7)&0x01 != 0 }

// mask models PPUMASK ($2001, write-only).
type mask struct{ register uint8 }

func (m *mask) Set(v uint8) { m.register = v }
func (m *mask) Get() uint8  { return m.register }

func (m *mask) RenderBackgroundLeft() bool { return (m.register>>1)&0x01 != 0 }
func (m *mask) RenderSpritesLeft() bool    { return (m.register>>2)&0x01 != 0 }
func (m *mask) RenderBackground() bool     { return (m.register>>3)&0x01 != 0 }
func (m *mask) RenderSprites() bool        { return (m.register>>4)&0x01 != 0 }
func (m *mask) IsRenderingEnabled() bool   { return m.RenderBackground() || m.RenderSprites() }

// status models PPUSTATUS ($2002, read-only).
type status struct{ register uint8 }

func (s *status) Set(v uint8) { s.register = v }
func (s *status) Get() uint8  { return s.register }

func (s *status) setBit(bit uint8, v bool) {
	if v {
		s.register |= bit
	} else {
		s.register &= ^bit
	}
}

func (s *status) VBlank() bool             { return s.register&0x80 != 0 }
func (s *status) SetVBlank(v bool)         { s.setBit(0x80, v) }
func (s *status) SetSprite0Hit(v bool)     { s.setBit(0x40, v) }
func (s *status) SetSpriteOverflow(v bool) { s.setBit(0x20, v) }

// loopyRegister is one of the two 15-bit "v"/"t" scroll/address registers
// described in Loopy's scrolling documentation.
//
// Bit layout (yyy NN YYYYY XXXXX): fine Y / nametable select / coarse Y / coarse X.
type loopyRegister struct{ register uint16 }

func (l *loopyRegister) Set(v uint16) { l.register = v & 0x7FFF }
func (l *loopyRegister) Get() uint16  { return l.register }

func (l *loopyRegister) CoarseX() uint16 { return l.register & 0x001F }
func (l *loopyRegister) SetCoarseX(v uint16) {
	l.register = (l.register & 0x7FE0) | (v & 0x001F)
}

func (l *loopyRegister) CoarseY() uint16 { return (l.register & 0x03E0) >> 5 }
func (l *loopyRegister) SetCoarseY(v uint16) {
	l.register = (l.register & 0x7C1F) | ((v & 0x001F) << 5)
}

func (l *loopyRegister) NametableX() uint16 { return (l.register & 0x0400) >> 10 }
func (l *loopyRegister) SetNametableX(v uint16) {
	if v != 0 {
		l.register |= 0x0400
	} else {
		l.register &= ^uint16(0x0400)
	}
}

func (l *loopyRegister) NametableY() uint16 { return (l.register & 0x0800) >> 11 }
func (l *loopyRegister) SetNametableY(v uint16) {
	if v != 0 {
		l.register |= 0x0800
	} else {
		l.register &= ^uint16(0x0800)
	}
}

func (l *loopyRegister) FineY() uint16 { return (l.register & 0x7000) >> 12 }
func (l *loopyRegister) SetFineY(v uint16) {
	l.register = (l.register & 0x0FFF) | ((v & 0x0007) << 12)
}

// IncrementX moves the coarse X cursor one tile right, flipping the
// horizontal nametable bit on wraparound.
func (l *loopyRegister) IncrementX() {
	if l.CoarseX() == 31 {
		l.SetCoarseX(0)
		l.SetNametableX(l.NametableX() ^ 1)
	} else {
		l.SetCoarseX(l.CoarseX() + 1)
	}
}

// IncrementY advances fine Y, carrying into coarse Y and the vertical
// nametable bit. Coarse Y 31 wraps to 0 without flipping the nametable —
// the well-known attribute-table-aliasing quirk of real hardware.
func (l *loopyRegister) IncrementY() {
	if l.FineY() < 7 {
		l.SetFineY(l.FineY() + 1)
		return
	}
	l.SetFineY(0)
	y := l.CoarseY()
	switch y {
	case 29:
		y = 0
		l.SetNametableY(l.NametableY() ^ 1)
	case 31:
		y = 0
	default:
		y++
	}
	l.SetCoarseY(y)
}

// TransferX copies coarse X and nametable X from source ("t" -> "v" at dot 257).
func (l *loopyRegister) TransferX(source *loopyRegister) {
	l.register = (l.register & 0x7BE0) | (source.register & 0x041F)
}

// TransferY copies fine Y, coarse Y and nametable Y from source (pre-render dots 280-304).
func (l *loopyRegister) TransferY(source *loopyRegister) {
	l.register = (l.register & 0x041F) | (source.register & 0x7BE0)
}
