// Package gintendo owns the CPU, bus, mapper, and cartridge for one
// loaded game and drives the CPU at its documented cadence.
package gintendo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bdwalton/gintendo-core/mappers"
	"github.com/bdwalton/gintendo-core/membus"
	"github.com/bdwalton/gintendo-core/mos6502"
	"github.com/bdwalton/gintendo-core/nesrom"
)

// cpuPeriod is the NTSC NES CPU's cycle period.
// https://www.nesdev.org/wiki/CPU#Frequencies
const cpuPeriod = time.Nanosecond * 559

// Console owns one loaded game end to end: the cartridge, its mapper,
// the CPU-visible bus, and the CPU itself. Ownership is non-cyclic
// (Console -> CPU -> Bus -> Mapper); the CPU holds only a non-owning
// back-reference to the bus.
type Console struct {
	ROM    *nesrom.ROM
	Mapper mappers.Mapper
	Bus    *membus.Bus
	CPU    *mos6502.CPU

	logger *slog.Logger
}

// New loads rom at romPath, wires a mapper, bus, and CPU for it, and
// resets the CPU from the cartridge's reset vector. It fails when the
// file cannot be opened, on bad magic, short reads, zero PRG banks, a
// trainer or PAL header, or an unsupported mapper id. An NES 2.0 header
// is not rejected.
func New(romPath string, logger *slog.Logger) (*Console, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rom, err := nesrom.LoadFile(romPath)
	if err != nil {
		return nil, fmt.Errorf("gintendo: loading %s: %w", romPath, err)
	}

	m, err := mappers.New(rom)
	if err != nil {
		return nil, fmt.Errorf("gintendo: %s: %w", romPath, err)
	}

	bus := membus.New(m, logger)
	cpu := mos6502.New(bus, logger)
	cpu.Reset()

	return &Console{ROM: rom, Mapper: m, Bus: bus, CPU: cpu, logger: logger}, nil
}

// StrictDecode promotes an illegal-opcode DecodeError from a logged,
// discarded event to a fatal panic, per spec.md §7's documented escape
// hatch.
func (c *Console) StrictDecode(v bool) { c.CPU.StrictDecode = v }

// Step advances the CPU by exactly one cycle, for interactive or
// single-step use (the TUI debugger, or a host co-stepping a PPU).
func (c *Console) Step() { c.CPU.Step() }

// Run paces Step calls at the NES's native CPU frequency until ctx is
// canceled, grounded on the source's Ticker-driven CPU loop.
func (c *Console) Run(ctx context.Context) {
	t := time.NewTicker(cpuPeriod)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			c.CPU.Step()
		case <-ctx.Done():
			return
		}
	}
}

// Dump renders full CPU register/flag state for diagnostics.
func (c *Console) Dump() string { return c.CPU.Dump() }
