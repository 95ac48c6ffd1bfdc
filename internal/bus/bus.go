// Package bus wires the CPU, PPU, APU, cartridge mapper, and controllers
// into one address space and drives them in lockstep off a shared master
// clock.
package bus

import (
	"nesgo/internal/apu"
	"nesgo/internal/cartridge"
	"nesgo/internal/controller"
	"nesgo/internal/cpu"
	"nesgo/internal/ppu"
)

const ramSize = 0x0800

// Bus is the NES system bus: it owns work RAM, the controller ports, the
// OAM-DMA state machine, and every component's wiring, and implements
// cpu.Bus so the CPU can read and write through it directly.
type Bus struct {
	CPU *cpu.CPU
	PPU *ppu.PPU
	APU *apu.APU

	ram  [ramSize]uint8
	cart *cartridge.Cartridge

	pad1 *controller.Controller
	pad2 *controller.Controller

	masterTick uint64

	dma dmaState
}

// dmaState is the OAM-DMA shift machine triggered by a $4014 write: a true
// cycle-stepped alternating read/write, not an instantaneous bulk copy.
type dmaState struct {
	active    bool
	dummy     bool
	page      uint8
	low       uint8
	latch     uint8
	haveLatch bool
}

// New creates a bus with no cartridge loaded; LoadCartridge must be called
// before Step produces useful output.
func New() *Bus {
	b := &Bus{
		PPU:  ppu.New(),
		APU:  apu.New(),
		pad1: controller.New(),
		pad2: controller.New(),
	}
	b.CPU = cpu.New(b)
	b.Reset()
	return b
}

// LoadCartridge installs a parsed cartridge and resets the system to run
// it from power-up.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	b.cart = cart
	b.PPU.SetCartridge(cart.Mapper, convertMirror(cart.Mirror))
	b.Reset()
}

// Reset returns every component to its power-up state.
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.pad1.Reset()
	b.pad2.Reset()
	b.masterTick = 0
	b.dma = dmaState{}
}

// RAM exposes the 2KB work-RAM array directly, for the save-state codec.
func (b *Bus) RAM() *[ramSize]uint8 { return &b.ram }

// Cartridge returns the loaded cartridge, or nil if none has been loaded.
func (b *Bus) Cartridge() *cartridge.Cartridge { return b.cart }

// Controller returns the controller at port 1 (index 0) or port 2 (index
// 1); any other index returns nil.
func (b *Bus) Controller(index int) *controller.Controller {
	switch index {
	case 0:
		return b.pad1
	case 1:
		return b.pad2
	default:
		return nil
	}
}

// Read implements cpu.Bus, decoding the full $0000-$FFFF CPU address
// space: mirrored work RAM, mirrored PPU registers, APU/controller I/O,
// and cartridge space.
func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return b.ram[address&0x07FF]
	case address < 0x4000:
		return b.PPU.ReadRegister(0x2000 | (address & 0x0007))
	case address == 0x4015:
		return b.APU.ReadStatus()
	case address == 0x4016:
		return b.pad1.Read()
	case address == 0x4017:
		return b.pad2.Read() | 0x40
	case address < 0x4020:
		return 0
	default:
		if b.cart == nil {
			return 0
		}
		return b.cart.Mapper.ReadPRG(address)
	}
}

// Write implements cpu.Bus.
func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		b.ram[address&0x07FF] = value
	case address < 0x4000:
		b.PPU.WriteRegister(0x2000|(address&0x0007), value)
	case address == 0x4014:
		b.startOAMDMA(value)
	case address == 0x4016:
		b.pad1.Write(value)
		b.pad2.Write(value)
	case address <= 0x4017:
		b.APU.WriteRegister(address, value)
	case address < 0x4020:
		// open bus: $4018-$401F is unused test-mode register space.
	default:
		if b.cart != nil {
			b.cart.Mapper.WritePRG(address, value)
		}
	}
}

func (b *Bus) startOAMDMA(page uint8) {
	b.dma = dmaState{active: true, dummy: true, page: page, low: 0}
}

// Step runs the system forward by one CPU instruction (or, while an OAM
// transfer is in flight, one DMA byte-cycle), keeping the PPU and APU in
// lockstep for however many CPU cycles that consumed, and returns the
// cycle count.
//
// The CPU executes each instruction atomically against the bus state at
// its start rather than interleaving a true per-cycle core; OAM DMA,
// which can span hundreds of cycles and is the one place software
// observes sub-instruction timing, is cycle-stepped for real.
func (b *Bus) Step() uint64 {
	var consumed uint64
	if b.dma.active {
		b.stepOAMDMACycle()
		consumed = 1
	} else {
		consumed = b.CPU.Step()
	}

	for i := uint64(0); i < consumed; i++ {
		for dot := 0; dot < 3; dot++ {
			b.tickPPU()
		}
		b.masterTick++

		b.APU.Step()
		if b.cart != nil {
			b.cart.Mapper.Tick()
		}
		if addr, pending := b.APU.DMCReadRequest(); pending {
			b.APU.DMCProvideSample(b.Read(addr))
		}

		irq := b.APU.IRQ()
		if b.cart != nil {
			irq = irq || b.cart.Mapper.IRQ()
		}
		b.CPU.SetIRQ(irq)
	}
	return consumed
}

// tickPPU advances one PPU dot, drives the CPU's NMI line from the PPU's
// vblank-and-enable pulse (the CPU's own edge detector needs a true/false
// pair to latch: true holds the line idle, false asserts it for one
// tick), pulses the mapper's scanline IRQ counter at the dot real boards
// gate A12 toggling on, and resyncs the PPU's mirroring from a mapper
// that can switch it at runtime.
func (b *Bus) tickPPU() {
	b.PPU.Clock()
	if b.PPU.NMI() {
		b.CPU.SetNMI(true)
		b.CPU.SetNMI(false)
	} else {
		b.CPU.SetNMI(true)
	}
	if b.cart == nil {
		return
	}
	if b.PPU.Cycle() == 260 && b.PPU.Scanline() >= 0 && b.PPU.Scanline() < 240 && b.PPU.RenderingEnabled() {
		b.cart.Mapper.Scanline()
	}
	b.PPU.SetMirror(convertMirror(b.cart.Mapper.Mirror()))
}

// stepOAMDMACycle advances the DMA state machine by one CPU cycle: the
// initial dummy cycle waits for odd-cycle alignment, then 256 read/write
// pairs copy one page into OAM starting at the current OAM address.
func (b *Bus) stepOAMDMACycle() {
	if b.dma.dummy {
		if b.masterTick%2 == 1 {
			b.dma.dummy = false
		}
		return
	}
	if !b.dma.haveLatch {
		addr := uint16(b.dma.page)<<8 | uint16(b.dma.low)
		b.dma.latch = b.Read(addr)
		b.dma.haveLatch = true
		return
	}
	b.PPU.WriteOAM(b.PPU.OAMAddress()+b.dma.low, b.dma.latch)
	b.dma.haveLatch = false
	b.dma.low++
	if b.dma.low == 0 {
		b.dma.active = false
	}
}

// RunFrame steps the system until the PPU reports a completed frame.
func (b *Bus) RunFrame() {
	for !b.PPU.FrameComplete() {
		b.Step()
	}
}

func convertMirror(m cartridge.Mirror) ppu.Mirror {
	switch m {
	case cartridge.MirrorVertical:
		return ppu.MirrorVertical
	case cartridge.MirrorSingleLower:
		return ppu.MirrorSingleLower
	case cartridge.MirrorSingleUpper:
		return ppu.MirrorSingleUpper
	default:
		return ppu.MirrorHorizontal
	}
}
