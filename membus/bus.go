// Package membus implements the CPU-visible 16-bit NES address space: 2 KiB
// internal RAM, an I/O register callback switchboard, optional cartridge
// RAM, and the cartridge mapper.
// https://www.nesdev.org/wiki/CPU_memory_map
package membus

import (
	"fmt"
	"log/slog"

	"github.com/bdwalton/gintendo-core/mappers"
)

const (
	ramSize    = 0x0800 // 2 KiB internal RAM
	ramMirror  = 0x2000 // $0000-$1FFF mirrors the 2 KiB RAM four times
	ioStart    = 0x2000
	ioEnd      = 0x4020 // exclusive
	sramStart  = 0x6000
	sramEnd    = 0x8000 // exclusive
	sramSize   = 0x2000
	prgStart   = 0x8000
)

// Recognized I/O register addresses (see spec §6). Names are for
// reference only; the bus itself is a pure switchboard and has no idea
// what a PPUCTRL is.
const (
	PPUCTRL   = 0x2000
	PPUMASK   = 0x2001
	PPUSTATUS = 0x2002
	OAMADDR   = 0x2003
	OAMDATA   = 0x2004
	PPUSCROLL = 0x2005
	PPUADDR   = 0x2006
	PPUDATA   = 0x2007
	OAMDMA    = 0x4014
	JOY1      = 0x4016
	JOY2      = 0x4017
)

// ReadFunc and WriteFunc are the collaborator-supplied hooks invoked for
// a registered I/O register address.
type ReadFunc func() uint8
type WriteFunc func(uint8)

// Bus is the 16-bit address space the CPU fetches and stores through.
type Bus struct {
	ram    [ramSize]byte
	sram   []byte // present only when the mapper declares extended RAM
	mapper mappers.Mapper

	reads  map[uint16]ReadFunc
	writes map[uint16]WriteFunc

	logger *slog.Logger
	warned map[uint16]bool // one diagnostic per unbound register, not one per read
}

// New wires a Bus to m. Extended RAM at $6000-$7FFF is allocated iff m
// declares it present.
func New(m mappers.Mapper, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bus{
		mapper: m,
		reads:  make(map[uint16]ReadFunc),
		writes: make(map[uint16]WriteFunc),
		logger: logger,
		warned: make(map[uint16]bool),
	}
	if m.HasExtendedRAM() {
		b.sram = make([]byte, sramSize)
	}
	return b
}

// RegisterReadCallback binds fn as the handler for reads of the I/O
// register at addr. Re-registering an already-bound address fails.
func (b *Bus) RegisterReadCallback(addr uint16, fn ReadFunc) error {
	if _, ok := b.reads[addr]; ok {
		return fmt.Errorf("membus: read callback for $%04X already registered", addr)
	}
	b.reads[addr] = fn
	return nil
}

// RegisterWriteCallback binds fn as the handler for writes to the I/O
// register at addr. Re-registering an already-bound address fails.
func (b *Bus) RegisterWriteCallback(addr uint16, fn WriteFunc) error {
	if _, ok := b.writes[addr]; ok {
		return fmt.Errorf("membus: write callback for $%04X already registered", addr)
	}
	b.writes[addr] = fn
	return nil
}

// Read dispatches addr to RAM, a registered I/O callback, cartridge RAM,
// or the mapper's PRG window.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < ramMirror:
		return b.ram[addr&0x07FF]
	case addr < ioEnd:
		if fn, ok := b.reads[addr]; ok {
			return fn()
		}
		b.logUnbound(addr)
		return 0
	case addr < sramStart:
		return 0 // expansion area, unused by the core
	case addr < sramEnd:
		if b.sram != nil {
			return b.sram[addr-sramStart]
		}
		return 0
	default:
		return b.mapper.ReadPRG(addr)
	}
}

// Write is Read's symmetric counterpart.
func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr < ramMirror:
		b.ram[addr&0x07FF] = val
	case addr < ioEnd:
		if fn, ok := b.writes[addr]; ok {
			fn(val)
			return
		}
		b.logUnbound(addr)
	case addr < sramStart:
		// expansion area, unused by the core
	case addr < sramEnd:
		if b.sram != nil {
			b.sram[addr-sramStart] = val
		}
	default:
		b.mapper.WritePRG(addr, val)
	}
}

func (b *Bus) logUnbound(addr uint16) {
	if b.warned[addr] {
		return
	}
	b.warned[addr] = true
	b.logger.Debug("read/write to unbound I/O register", "addr", fmt.Sprintf("$%04X", addr))
}

// GetPagePtr returns a non-owning view of the 256-byte RAM page for DMA
// copying by a PPU collaborator. It fails for any page outside the RAM
// mirror range ($00-$1F).
func (b *Bus) GetPagePtr(page uint8) ([]byte, error) {
	if int(page) >= ramMirror/256 {
		return nil, fmt.Errorf("membus: page $%02X is outside the RAM mirror range", page)
	}
	start := (int(page) * 256) & (ramSize - 1)
	return b.ram[start : start+256], nil
}
