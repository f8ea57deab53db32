// Package mos6502 implements the NES variant of the MOS Technology 6502
// processor: registers, flags, the fetch/decode/execute loop, addressing
// modes, stack discipline, and cycle accounting.
// https://www.nesdev.org/obelisk-6502-guide/
package mos6502

import (
	"fmt"
	"log/slog"

	"github.com/davecgh/go-spew/spew"
)

// 6502 interrupt and reset vectors.
// https://en.wikipedia.org/wiki/Interrupts_in_65xx_processors
const (
	NMIVector   = 0xFFFA
	ResetVector = 0xFFFC
	IRQVector   = 0xFFFE
	BRKVector   = IRQVector
)

const stackPage = 0x0100

// Bus is the address space a CPU fetches instructions from and performs
// loads and stores through. membus.Bus satisfies this interface.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// CPU holds all interpreter state for one 6502: the four registers, the
// six flags the NES variant observes (decimal exists as a flag bit but is
// never consulted by ADC/SBC), and the cycle bookkeeping that lets a host
// co-step a PPU in lockstep.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16

	C, Z, I, D, V, N bool

	cycles     uint64
	skipCycles int

	bus    Bus
	logger *slog.Logger

	// StrictDecode promotes a DecodeError (illegal opcode, or an
	// addressing-mode/group combination no handler claims) from a
	// logged-and-discarded event to a panic. Off by default, matching
	// the source's behavior of continuing past bad opcodes.
	StrictDecode bool

	pendingNMI bool
	pendingIRQ bool
}

// New constructs a CPU wired to bus. The CPU is left in its zero state;
// call Reset or ResetTo before stepping it.
func New(bus Bus, logger *slog.Logger) *CPU {
	if logger == nil {
		logger = slog.Default()
	}
	return &CPU{bus: bus, logger: logger}
}

// Reset reinitializes the CPU to its documented power-on state and loads
// PC from the reset vector read through the bus.
func (c *CPU) Reset() {
	c.ResetTo(c.read16(ResetVector))
}

// ResetTo is Reset with an explicit entry point, useful for tests that
// place a program directly in memory without wiring a full cartridge.
func (c *CPU) ResetTo(addr uint16) {
	c.cycles, c.skipCycles = 0, 0
	c.A, c.X, c.Y = 0, 0, 0
	c.C, c.Z, c.D, c.V, c.N = false, false, false, false, false
	c.I = true
	c.PC = addr
	c.SP = 0xFD
	c.pendingNMI, c.pendingIRQ = false, false
}

// TriggerNMI schedules a non-maskable interrupt to be serviced on the
// next opportunity Step gets to dispatch (i.e. once any in-flight
// instruction has finished burning its cycles). NMI cannot be masked by
// the I flag.
func (c *CPU) TriggerNMI() { c.pendingNMI = true }

// TriggerIRQ schedules a maskable interrupt. It is ignored entirely
// while the I flag is set, matching real 6502 behavior: a masked IRQ
// that never gets serviced does not queue up.
func (c *CPU) TriggerIRQ() {
	if !c.I {
		c.pendingIRQ = true
	}
}

// Cycles returns the total number of cycles issued since constructions
// or the last Reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Step accounts exactly one cycle. If an instruction issued on a
// previous call is still "in flight" (skipCycles > 1), Step merely
// decrements the remaining count and returns. Otherwise it services a
// pending interrupt or fetches and dispatches the next opcode, then
// raises skipCycles by that opcode's base cycle cost.
func (c *CPU) Step() {
	c.cycles++

	if c.skipCycles > 1 {
		c.skipCycles--
		return
	}
	c.skipCycles = 0

	if c.pendingNMI {
		c.pendingNMI = false
		c.enterInterrupt(NMIVector, false)
		c.skipCycles = 7
		return
	}
	if c.pendingIRQ {
		c.pendingIRQ = false
		c.enterInterrupt(IRQVector, false)
		c.skipCycles = 7
		return
	}

	opcode := c.bus.Read(c.PC)
	c.PC++

	base := cycleTable[opcode]
	if base == 0 {
		c.decodeError(opcode, "no cycle-table entry (illegal opcode)")
		return
	}

	if !(c.executeImplied(opcode) || c.executeBranch(opcode) ||
		c.executeGroup0(opcode) || c.executeGroup1(opcode) || c.executeGroup2(opcode)) {
		c.decodeError(opcode, "no addressing/group handler claimed it")
		return
	}

	c.skipCycles += int(base)
}

func (c *CPU) decodeError(opcode uint8, reason string) {
	err := fmt.Errorf("mos6502: decode error at PC=$%04X, opcode=$%02X: %s", c.PC-1, opcode, reason)
	if c.StrictDecode {
		panic(err)
	}
	c.logger.Error("instruction discarded", "err", err)
}

// read16 loads a little-endian word through the bus without applying the
// JMP-indirect page-wrap bug; that bug is inlined at the JMP-indirect
// site only.
func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.bus.Read(addr))
	hi := uint16(c.bus.Read(addr + 1))
	return lo | hi<<8
}

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&0x80 != 0
}

// pageCrossed reports whether a and b fall in different 256-byte pages.
func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

func (c *CPU) push(v uint8) {
	c.bus.Write(stackPage|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pull() uint8 {
	c.SP++
	return c.bus.Read(stackPage | uint16(c.SP))
}

func (c *CPU) pushAddr(addr uint16) {
	c.push(uint8(addr >> 8))
	c.push(uint8(addr))
}

func (c *CPU) pullAddr() uint16 {
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	return lo | hi<<8
}

// enterInterrupt pushes PC and the packed status register, sets I, and
// loads PC from vector. brk is true only for a software BRK (opcode
// $00), which sets the break bit in the pushed status byte; hardware
// interrupts (NMI, IRQ) push with the break bit clear.
func (c *CPU) enterInterrupt(vector uint16, brk bool) {
	c.pushAddr(c.PC)
	c.push(packFlags(c.C, c.Z, c.I, c.D, c.V, c.N, brk))
	c.I = true
	c.PC = c.read16(vector)
}

// Dump renders the full register and flag state for diagnostics (the
// CLI's -dump-state-on-exit flag), grounded in the same spew.Sdump
// idiom the teacher's interactive debugger uses over register state.
func (c *CPU) Dump() string {
	return spew.Sdump(struct {
		A, X, Y, SP    uint8
		PC             uint16
		C, Z, I, D, V, N bool
		Cycles         uint64
	}{c.A, c.X, c.Y, c.SP, c.PC, c.C, c.Z, c.I, c.D, c.V, c.N, c.cycles})
}
