package cartridge

import (
	"bytes"
	"testing"
)

func buildHeader(prgBanks, chrBanks, flags6, flags7 uint8) []byte {
	h := make([]byte, 16)
	copy(h, "NES\x1A")
	h[4] = prgBanks
	h[5] = chrBanks
	h[6] = flags6
	h[7] = flags7
	return h
}

func TestLoadFromReaderRejectsBadMagic(t *testing.T) {
	data := append([]byte("XXXX"), make([]byte, 12)...)
	if _, err := LoadFromReader(bytes.NewReader(data)); err == nil {
		t.Fatal("expected an error for a bad iNES magic")
	}
}

func TestLoadFromReaderRejectsZeroPRGBanks(t *testing.T) {
	header := buildHeader(0, 1, 0, 0)
	if _, err := LoadFromReader(bytes.NewReader(header)); err == nil {
		t.Fatal("expected an error when PRG-ROM size is zero")
	}
}

func TestLoadFromReaderRejectsTruncatedPRG(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(2, 1, 0, 0))
	buf.Write(make([]byte, 100)) // far short of 32KB
	if _, err := LoadFromReader(&buf); err == nil {
		t.Fatal("expected an error for a truncated PRG payload")
	}
}

func TestLoadFromReaderZeroPadsTruncatedCHR(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(1, 1, 0, 0))
	buf.Write(make([]byte, 16384))
	buf.Write(make([]byte, 100)) // short CHR payload

	cart, err := LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.CHR) != 8192 {
		t.Fatalf("expected a full 8KB CHR array, got %d bytes", len(cart.CHR))
	}
	for i := 100; i < len(cart.CHR); i++ {
		if cart.CHR[i] != 0 {
			t.Fatalf("expected truncated CHR bytes to be zero-padded, byte %d was %#x", i, cart.CHR[i])
		}
	}
}

func TestLoadFromReaderAllocatesCHRRAMWhenDeclaredZero(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(1, 0, 0, 0))
	buf.Write(make([]byte, 16384))

	cart, err := LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.HasCHRRAM {
		t.Fatal("expected HasCHRRAM when the header declares zero CHR banks")
	}
	if len(cart.CHR) != 8192 {
		t.Fatalf("expected 8KB of CHR-RAM, got %d bytes", len(cart.CHR))
	}
}

func TestLoadFromReaderFallsBackToNROMForUnknownMapper(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(1, 1, 0xF0, 0xF0)) // mapperID = 255, unsupported
	buf.Write(make([]byte, 16384))
	buf.Write(make([]byte, 8192))

	cart, err := LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cart.Mapper.(*mapper000); !ok {
		t.Fatalf("expected an unrecognized mapper id to fall back to NROM, got %T", cart.Mapper)
	}
}

func TestLoadFromReaderSelectsMirroringFromFlags6(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(1, 1, 0x01, 0)) // vertical mirroring bit set
	buf.Write(make([]byte, 16384))
	buf.Write(make([]byte, 8192))

	cart, err := LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Mirror != MirrorVertical {
		t.Fatalf("expected vertical mirroring, got %v", cart.Mirror)
	}
}

func TestLoadFromReaderSkipsTrainer(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(1, 1, 0x04, 0)) // trainer present
	buf.Write(make([]byte, 512))          // trainer payload
	prg := make([]byte, 16384)
	prg[0] = 0x42
	buf.Write(prg)
	buf.Write(make([]byte, 8192))

	cart, err := LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.PRGROM[0] != 0x42 {
		t.Fatalf("expected PRG-ROM to start right after the trainer, got %#x", cart.PRGROM[0])
	}
}

func TestMapper000MirrorsA16KBBankAcrossTheFullWindow(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(1, 1, 0, 0))
	prg := make([]byte, 16384)
	prg[0] = 0x11
	buf.Write(prg)
	buf.Write(make([]byte, 8192))

	cart, err := LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cart.Mapper.ReadPRG(0x8000); got != 0x11 {
		t.Fatalf("expected $8000 to read the bank's first byte, got %#x", got)
	}
	if got := cart.Mapper.ReadPRG(0xC000); got != 0x11 {
		t.Fatalf("expected $C000 to mirror $8000 for a single 16KB bank, got %#x", got)
	}
}

func TestMapper002SwitchesLowBankAndFixesHighBank(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(4, 0, 0x20, 0)) // mapper 2, 4x16KB PRG, CHR-RAM
	prg := make([]byte, 4*16384)
	prg[0*16384] = 0xAA
	prg[1*16384] = 0xBB
	prg[3*16384] = 0xDD
	buf.Write(prg)

	cart, err := LoadFromReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart.Mapper.WritePRG(0x8000, 0x01)
	if got := cart.Mapper.ReadPRG(0x8000); got != 0xBB {
		t.Fatalf("expected switching to bank 1 to read its marker at $8000, got %#x", got)
	}
	if got := cart.Mapper.ReadPRG(0xC000); got != 0xDD {
		t.Fatalf("expected $C000 fixed to the last bank regardless of selection, got %#x", got)
	}
}
