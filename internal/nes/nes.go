// Package nes assembles the bus, cartridge loader, and save-state codec
// into the single driver a host application embeds: load a ROM, run
// frames, push button state in, and pull video/audio out.
package nes

import (
	"bytes"
	"encoding/binary"
	"errors"

	"nesgo/internal/bus"
	"nesgo/internal/cartridge"
	"nesgo/internal/controller"
	"nesgo/internal/ppu"
)

// Emulator is the top-level driver: construct one, load a ROM into it,
// and call RunFrame once per host video tick.
type Emulator struct {
	bus *bus.Bus
}

// New creates an Emulator with no cartridge loaded.
func New() *Emulator {
	return &Emulator{bus: bus.New()}
}

// LoadROM parses an iNES image and, on success, resets the system to run
// it from power-up. A malformed header or truncated PRG payload leaves any
// previously loaded cartridge untouched and reports false.
func (e *Emulator) LoadROM(data []byte) bool {
	cart, err := cartridge.LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return false
	}
	e.bus.LoadCartridge(cart)
	return true
}

// Reset returns every component to its power-up state.
func (e *Emulator) Reset() {
	e.bus.Reset()
}

// RunFrame steps the system until the PPU's frame-complete edge fires.
func (e *Emulator) RunFrame() {
	e.bus.RunFrame()
}

// SetButton updates one button on one controller port. Indices outside
// 0-1 (port) or 0-7 (button, A/B/Select/Start/Up/Down/Left/Right) are
// ignored.
func (e *Emulator) SetButton(controllerIndex, buttonIndex int, pressed bool) {
	pad := e.bus.Controller(controllerIndex)
	if pad == nil || buttonIndex < 0 || buttonIndex > 7 {
		return
	}
	pad.SetButton(controller.Button(buttonIndex), pressed)
}

// SetAudioSampleRate changes the APU's output sample rate.
func (e *Emulator) SetAudioSampleRate(hz int) {
	e.bus.APU.SetSampleRate(hz)
}

// FrameBuffer returns the current frame as 256x240x4 non-premultiplied
// RGBA bytes, alpha always opaque.
func (e *Emulator) FrameBuffer() []byte {
	return e.bus.PPU.RGBA()
}

// AudioSamples returns the buffered 32-bit float audio samples accumulated
// since the last call and resets the write cursor, matching the
// consume-audio-samples contract: the caller owns everything returned.
func (e *Emulator) AudioSamples() []float32 {
	return e.bus.APU.Samples()
}

const (
	saveStateMagic   = "NESW"
	saveStateVersion = 1
)

// ErrBadSaveState names the malformed-save-state failure (magic mismatch,
// version mismatch, or truncated payload); ImportSaveState reports that
// case by returning false and does not return this value.
var ErrBadSaveState = errors.New("nes: malformed save state")

// ExportSaveState serializes the CPU, work RAM, PPU, and cartridge PRG-RAM
// into the fixed binary layout: magic, version, CPU registers, 2KB work
// RAM, PPU registers, 2KB nametable, 32B palette, 256B OAM, 8KB PRG-RAM.
func (e *Emulator) ExportSaveState() []byte {
	var buf bytes.Buffer
	buf.WriteString(saveStateMagic)
	binary.Write(&buf, binary.LittleEndian, uint32(saveStateVersion))

	cpu := e.bus.CPU
	buf.WriteByte(cpu.A)
	buf.WriteByte(cpu.X)
	buf.WriteByte(cpu.Y)
	buf.WriteByte(cpu.SP)
	buf.WriteByte(cpu.GetStatusByte())
	binary.Write(&buf, binary.LittleEndian, cpu.PC)

	ram := e.bus.RAM()
	buf.Write(ram[:])

	ps := e.bus.PPU.ExportState()
	buf.WriteByte(ps.Control)
	buf.WriteByte(ps.Mask)
	buf.WriteByte(ps.Status)
	buf.WriteByte(ps.OAMAddress)
	binary.Write(&buf, binary.LittleEndian, ps.V)
	binary.Write(&buf, binary.LittleEndian, ps.T)
	buf.WriteByte(ps.FineX)
	buf.WriteByte(boolByte(ps.WriteLatch))
	buf.WriteByte(ps.ReadBuffer)
	buf.Write(ps.Nametable[:])
	buf.Write(ps.Palette[:])
	buf.Write(ps.OAM[:])

	if cart := e.bus.Cartridge(); cart != nil {
		buf.Write(cart.PRGRAM[:])
	} else {
		buf.Write(make([]byte, 0x2000))
	}

	return buf.Bytes()
}

// ImportSaveState parses a buffer produced by ExportSaveState and, if it
// passes the magic/version/size checks, replaces the running CPU, work
// RAM, PPU, and PRG-RAM state in place. Any failure returns false without
// mutating the emulator.
func (e *Emulator) ImportSaveState(data []byte) bool {
	const headerLen = 4 + 4
	const cpuLen = 1 + 1 + 1 + 1 + 1 + 2
	const ramLen = 0x0800
	const ppuRegLen = 1 + 1 + 1 + 1 + 2 + 2 + 1 + 1 + 1
	const nametableLen = 2048
	const paletteLen = 32
	const oamLen = 256
	const prgRAMLen = 0x2000
	const total = headerLen + cpuLen + ramLen + ppuRegLen + nametableLen + paletteLen + oamLen + prgRAMLen

	if len(data) < total {
		return false
	}
	if string(data[:4]) != saveStateMagic {
		return false
	}
	if binary.LittleEndian.Uint32(data[4:8]) != saveStateVersion {
		return false
	}

	r := bytes.NewReader(data[headerLen:])

	var a, x, y, sp, status uint8
	var pc uint16
	readByte(r, &a)
	readByte(r, &x)
	readByte(r, &y)
	readByte(r, &sp)
	readByte(r, &status)
	binary.Read(r, binary.LittleEndian, &pc)

	var ram [ramLen]uint8
	r.Read(ram[:])

	var ps ppu.SaveState
	readByte(r, &ps.Control)
	readByte(r, &ps.Mask)
	readByte(r, &ps.Status)
	readByte(r, &ps.OAMAddress)
	binary.Read(r, binary.LittleEndian, &ps.V)
	binary.Read(r, binary.LittleEndian, &ps.T)
	readByte(r, &ps.FineX)
	var writeLatch uint8
	readByte(r, &writeLatch)
	ps.WriteLatch = writeLatch != 0
	readByte(r, &ps.ReadBuffer)
	r.Read(ps.Nametable[:])
	r.Read(ps.Palette[:])
	r.Read(ps.OAM[:])

	var prgRAM [prgRAMLen]uint8
	r.Read(prgRAM[:])

	e.bus.CPU.A = a
	e.bus.CPU.X = x
	e.bus.CPU.Y = y
	e.bus.CPU.SP = sp
	e.bus.CPU.SetStatusByte(status)
	e.bus.CPU.PC = pc

	*e.bus.RAM() = ram
	e.bus.PPU.ImportState(ps)

	if cart := e.bus.Cartridge(); cart != nil {
		cart.PRGRAM = prgRAM
	}

	return true
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func readByte(r *bytes.Reader, dst *uint8) {
	v, err := r.ReadByte()
	if err == nil {
		*dst = v
	}
}
