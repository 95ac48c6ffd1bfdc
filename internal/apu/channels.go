package apu

// pulseChannel is one of the two square-wave channels. Channel 1's sweep
// unit uses one's-complement negation (period - change - 1); channel 2 uses
// two's-complement (period - change); onesComplement records which.
type pulseChannel struct {
	dutyCycle       uint8
	envelopeLoop    bool
	envelopeDisable bool
	volume          uint8

	sweepEnable  bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepReload  bool
	sweepCounter uint8
	onesComplement bool

	timer        uint16
	timerCounter uint16

	lengthCounter uint8
	lengthHalt    bool

	envelopeStart   bool
	envelopeCounter uint8
	envelopeDivider uint8

	dutyIndex    uint8
	sequencerPos uint8
}

func (p *pulseChannel) writeControl(value uint8) {
	p.dutyCycle = (value >> 6) & 0x03
	p.envelopeLoop = value&0x20 != 0
	p.lengthHalt = p.envelopeLoop
	p.envelopeDisable = value&0x10 != 0
	p.volume = value & 0x0F
	p.envelopeStart = true
}

func (p *pulseChannel) writeSweep(value uint8) {
	p.sweepEnable = value&0x80 != 0
	p.sweepPeriod = (value >> 4) & 0x07
	p.sweepNegate = value&0x08 != 0
	p.sweepShift = value & 0x07
	p.sweepReload = true
}

func (p *pulseChannel) writeTimerLow(value uint8) {
	p.timer = (p.timer & 0xFF00) | uint16(value)
}

func (p *pulseChannel) writeTimerHigh(value uint8, enabled bool) {
	p.timer = (p.timer & 0x00FF) | (uint16(value&0x07) << 8)
	if enabled {
		p.lengthCounter = lengthTable[(value>>3)&0x1F]
	}
	p.envelopeStart = true
	p.sequencerPos = 0
}

func (p *pulseChannel) stepTimer() {
	if p.timerCounter == 0 {
		p.timerCounter = p.timer
		p.sequencerPos = (p.sequencerPos + 1) & 0x07
	} else {
		p.timerCounter--
	}
}

func (p *pulseChannel) clockEnvelope() {
	clockEnvelope(&p.envelopeStart, &p.envelopeCounter, &p.envelopeDivider, p.volume, p.envelopeLoop)
}

func (p *pulseChannel) clockLength() {
	if !p.lengthHalt && p.lengthCounter > 0 {
		p.lengthCounter--
	}
}

func (p *pulseChannel) clockSweep() {
	target := p.sweepTarget()
	if p.sweepCounter == 0 && p.sweepEnable && p.sweepShift > 0 && p.timer >= 8 && target <= 0x7FF {
		p.timer = uint16(target)
	}
	if p.sweepCounter == 0 || p.sweepReload {
		p.sweepCounter = p.sweepPeriod
		p.sweepReload = false
	} else {
		p.sweepCounter--
	}
}

func (p *pulseChannel) sweepTarget() int {
	change := int(p.timer >> p.sweepShift)
	if !p.sweepNegate {
		return int(p.timer) + change
	}
	if p.onesComplement {
		return int(p.timer) - change - 1
	}
	return int(p.timer) - change
}

func (p *pulseChannel) output() uint8 {
	if p.lengthCounter == 0 || p.timer < 8 || p.timer > 0x7FF {
		return 0
	}
	if dutyTable[p.dutyCycle][p.sequencerPos] == 0 {
		return 0
	}
	if p.envelopeDisable {
		return p.volume
	}
	return p.envelopeCounter
}

// triangleChannel is the single triangle-wave channel; its timer ticks
// every CPU cycle (twice the rate of the pulse/noise/DMC timers).
type triangleChannel struct {
	lengthCounterHalt bool
	linearCounterLoad uint8

	timer        uint16
	timerCounter uint16

	lengthCounter uint8

	linearCounter       uint8
	linearCounterReload bool

	sequencerPos uint8
}

func (t *triangleChannel) writeControl(value uint8) {
	t.lengthCounterHalt = value&0x80 != 0
	t.linearCounterLoad = value & 0x7F
}

func (t *triangleChannel) writeTimerLow(value uint8) {
	t.timer = (t.timer & 0xFF00) | uint16(value)
}

func (t *triangleChannel) writeTimerHigh(value uint8, enabled bool) {
	t.timer = (t.timer & 0x00FF) | (uint16(value&0x07) << 8)
	if enabled {
		t.lengthCounter = lengthTable[(value>>3)&0x1F]
	}
	t.linearCounterReload = true
}

func (t *triangleChannel) stepTimer() {
	if t.timerCounter == 0 {
		t.timerCounter = t.timer
		if t.lengthCounter > 0 && t.linearCounter > 0 {
			t.sequencerPos = (t.sequencerPos + 1) & 0x1F
		}
	} else {
		t.timerCounter--
	}
}

func (t *triangleChannel) clockLinear() {
	if t.linearCounterReload {
		t.linearCounter = t.linearCounterLoad
	} else if t.linearCounter > 0 {
		t.linearCounter--
	}
	if !t.lengthCounterHalt {
		t.linearCounterReload = false
	}
}

func (t *triangleChannel) clockLength() {
	if !t.lengthCounterHalt && t.lengthCounter > 0 {
		t.lengthCounter--
	}
}

func (t *triangleChannel) output() uint8 {
	if t.lengthCounter == 0 || t.linearCounter == 0 {
		return 0
	}
	return triangleTable[t.sequencerPos]
}

// noiseChannel feeds a 15-bit LFSR whose tap bit (6 or 1, by mode) selects
// the pseudo-random period.
type noiseChannel struct {
	envelopeLoop    bool
	envelopeDisable bool
	volume          uint8

	mode         bool
	periodIndex  uint8
	timerCounter uint16

	lengthCounter uint8
	lengthHalt    bool

	envelopeStart   bool
	envelopeCounter uint8
	envelopeDivider uint8

	shiftRegister uint16
}

func (n *noiseChannel) writeControl(value uint8) {
	n.envelopeLoop = value&0x20 != 0
	n.lengthHalt = n.envelopeLoop
	n.envelopeDisable = value&0x10 != 0
	n.volume = value & 0x0F
	n.envelopeStart = true
}

func (n *noiseChannel) writePeriod(value uint8) {
	n.mode = value&0x80 != 0
	n.periodIndex = value & 0x0F
}

func (n *noiseChannel) writeLength(value uint8, enabled bool) {
	if enabled {
		n.lengthCounter = lengthTable[(value>>3)&0x1F]
	}
	n.envelopeStart = true
}

func (n *noiseChannel) stepTimer() {
	if n.timerCounter == 0 {
		n.timerCounter = noisePeriodTable[n.periodIndex]
		feedback := n.shiftRegister & 0x01
		if n.mode {
			feedback ^= (n.shiftRegister >> 6) & 0x01
		} else {
			feedback ^= (n.shiftRegister >> 1) & 0x01
		}
		n.shiftRegister = (n.shiftRegister >> 1) | (feedback << 14)
	} else {
		n.timerCounter--
	}
}

func (n *noiseChannel) clockEnvelope() {
	clockEnvelope(&n.envelopeStart, &n.envelopeCounter, &n.envelopeDivider, n.volume, n.envelopeLoop)
}

func (n *noiseChannel) clockLength() {
	if !n.lengthHalt && n.lengthCounter > 0 {
		n.lengthCounter--
	}
}

func (n *noiseChannel) output() uint8 {
	if n.lengthCounter == 0 || n.shiftRegister&0x01 != 0 {
		return 0
	}
	if n.envelopeDisable {
		return n.volume
	}
	return n.envelopeCounter
}

// clockEnvelope implements the shared envelope unit used by the pulse and
// noise channels: on start, reset to full volume; otherwise decrement the
// decay level each time the divider empties, looping at zero if configured.
func clockEnvelope(start *bool, counter, divider *uint8, period uint8, loop bool) {
	if *start {
		*start = false
		*counter = 15
		*divider = period
		return
	}
	if *divider == 0 {
		*divider = period
		if *counter > 0 {
			*counter--
		} else if loop {
			*counter = 15
		}
		return
	}
	*divider--
}

// dmcChannel plays 1-bit delta-encoded samples fetched from PRG space via
// the bus's DMCReadRequest/DMCProvideSample protocol.
type dmcChannel struct {
	irqEnable bool
	loop      bool
	rateIndex uint8

	outputLevel uint8

	sampleAddress uint16
	sampleLength  uint16

	timerCounter      uint16
	shiftRegister     uint8
	bitsRemaining     uint8
	silent            bool
	bytesRemaining    uint16
	currentAddress    uint16

	pendingFetch bool
	fetchAddress uint16

	irqFlag bool
}

func (d *dmcChannel) writeControl(value uint8) {
	d.irqEnable = value&0x80 != 0
	d.loop = value&0x40 != 0
	d.rateIndex = value & 0x0F
	if !d.irqEnable {
		d.irqFlag = false
	}
}

func (d *dmcChannel) writeDirectLoad(value uint8) {
	d.outputLevel = value & 0x7F
}

func (d *dmcChannel) writeSampleAddress(value uint8) {
	d.sampleAddress = 0xC000 + uint16(value)<<6
}

func (d *dmcChannel) writeSampleLength(value uint8) {
	d.sampleLength = uint16(value)<<4 + 1
}

// restart begins (or re-begins) playback from the configured sample
// address and length, used both by $4015 writes and by loop wraparound.
func (d *dmcChannel) restart() {
	d.currentAddress = d.sampleAddress
	d.bytesRemaining = d.sampleLength
}

// stepTimer advances the DMC timer; when it fires it clocks the output
// unit (adjust outputLevel toward the current bit) and, once the shift
// register empties, requests the next sample byte via pendingFetch.
func (d *dmcChannel) stepTimer() {
	if d.timerCounter != 0 {
		d.timerCounter--
		return
	}
	d.timerCounter = dmcRateTable[d.rateIndex]

	if !d.silent {
		if d.shiftRegister&0x01 != 0 {
			if d.outputLevel <= 125 {
				d.outputLevel += 2
			}
		} else if d.outputLevel >= 2 {
			d.outputLevel -= 2
		}
	}
	d.shiftRegister >>= 1
	if d.bitsRemaining > 0 {
		d.bitsRemaining--
	}

	if d.bitsRemaining == 0 {
		d.bitsRemaining = 8
		if d.bytesRemaining == 0 {
			d.silent = true
		} else if !d.pendingFetch {
			d.pendingFetch = true
			d.fetchAddress = d.currentAddress
		}
	}
}

// provideSample delivers the byte requested via pendingFetch, advancing
// the read cursor and handling loop/IRQ at end of sample.
func (d *dmcChannel) provideSample(value uint8) {
	d.shiftRegister = value
	d.silent = false
	d.pendingFetch = false

	if d.currentAddress == 0xFFFF {
		d.currentAddress = 0x8000
	} else {
		d.currentAddress++
	}
	d.bytesRemaining--
	if d.bytesRemaining == 0 {
		if d.loop {
			d.restart()
		} else if d.irqEnable {
			d.irqFlag = true
		}
	}
}

func (d *dmcChannel) output() uint8 { return d.outputLevel }

var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 8, 48, 6, 96, 4,
	192, 2, 72, 16, 28, 32, 52, 2,
}

var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

var triangleTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

var noisePeriodTable = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160,
	202, 254, 380, 508, 762, 1016, 2034, 4068,
}

var dmcRateTable = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214,
	190, 160, 142, 128, 106, 84, 72, 54,
}
