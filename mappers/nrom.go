package mappers

import "github.com/bdwalton/gintendo-core/nesrom"

func init() {
	register(0, newNROM)
}

const chrRAMSize = 8192

// nrom implements mapper 0 (NROM): a fixed, unswitched PRG/CHR window
// with no bank switching. $8000-$BFFF maps to the first 16 KiB PRG
// bank; $C000-$FFFF maps to the second bank, or mirrors the first when
// the cartridge has only one.
type nrom struct {
	prg       []byte
	chr       []byte
	chrIsRAM  bool
	mirroring uint8
	extRAM    bool
}

func newNROM(rom *nesrom.ROM) Mapper {
	m := &nrom{
		prg:       rom.PRG(),
		mirroring: rom.Mirroring(),
		extRAM:    rom.HasExtendedRAM(),
	}

	if chr := rom.CHR(); len(chr) > 0 {
		m.chr = chr
	} else {
		m.chr = make([]byte, chrRAMSize)
		m.chrIsRAM = true
	}

	return m
}

func (m *nrom) ReadPRG(addr uint16) uint8 {
	off := addr - 0x8000
	if len(m.prg) == prgBankSize {
		off %= prgBankSize
	}
	return m.prg[off]
}

// WritePRG is a no-op: NROM PRG space is read-only ROM.
func (m *nrom) WritePRG(addr uint16, val uint8) {}

func (m *nrom) ReadCHR(addr uint16) uint8 {
	return m.chr[addr]
}

func (m *nrom) WriteCHR(addr uint16, val uint8) {
	if m.chrIsRAM {
		m.chr[addr] = val
	}
}

func (m *nrom) Mirroring() uint8 { return m.mirroring }

func (m *nrom) HasExtendedRAM() bool { return m.extRAM }

const prgBankSize = 16384
