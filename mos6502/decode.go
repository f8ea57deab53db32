package mos6502

// Step's five decode handlers are tried in order, matching the
// reference decoder's priority: single-byte/implied opcodes and the
// handful of irregular full-instruction opcodes (JSR, JMP, RTI, RTS)
// first, then conditional branches, then the three "cc" groups that
// cover every remaining regular, addressing-mode-driven opcode. Each
// handler returns false to let the next one try the same byte.

// executeImplied claims every opcode with no regular aaa/bbb/cc
// structure: the zero-operand register/flag instructions, the stack
// instructions, and JSR/RTS/RTI/JMP/BRK.
func (c *CPU) executeImplied(opcode uint8) bool {
	switch opcode {
	case 0x00: // BRK
		c.PC++ // the byte after BRK is a padding/signature byte
		c.enterInterrupt(BRKVector, true)
	case 0x08: // PHP
		c.push(packFlags(c.C, c.Z, c.I, c.D, c.V, c.N, true))
	case 0x18: // CLC
		c.C = false
	case 0x20: // JSR
		target := c.read16(c.PC)
		c.pushAddr(c.PC + 1)
		c.PC = target
	case 0x28: // PLP
		c.pullFlags()
	case 0x38: // SEC
		c.C = true
	case 0x40: // RTI
		c.pullFlags()
		c.PC = c.pullAddr()
	case 0x48: // PHA
		c.push(c.A)
	case 0x4C: // JMP absolute
		c.PC = c.read16(c.PC)
	case 0x58: // CLI
		c.I = false
	case 0x60: // RTS
		c.PC = c.pullAddr() + 1
	case 0x68: // PLA
		c.A = c.pull()
		c.setZN(c.A)
	case 0x6C: // JMP (indirect)
		c.jmpIndirect()
	case 0x78: // SEI
		c.I = true
	case 0x88: // DEY
		c.Y--
		c.setZN(c.Y)
	case 0x8A: // TXA
		c.A = c.X
		c.setZN(c.A)
	case 0x98: // TYA
		c.A = c.Y
		c.setZN(c.A)
	case 0x9A: // TXS
		c.SP = c.X
	case 0xA8: // TAY
		c.Y = c.A
		c.setZN(c.Y)
	case 0xAA: // TAX
		c.X = c.A
		c.setZN(c.X)
	case 0xB8: // CLV
		c.V = false
	case 0xBA: // TSX
		c.X = c.SP
		c.setZN(c.X)
	case 0xC8: // INY
		c.Y++
		c.setZN(c.Y)
	case 0xCA: // DEX
		c.X--
		c.setZN(c.X)
	case 0xD8: // CLD
		c.D = false
	case 0xE8: // INX
		c.X++
		c.setZN(c.X)
	case 0xEA: // NOP
	case 0xF8: // SED
		c.D = true
	default:
		return false
	}
	return true
}

// jmpIndirect reproduces the famous 6502 hardware bug: when the
// pointer's low byte is $FF, the high byte of the target is fetched
// from the start of the same page rather than the next page.
func (c *CPU) jmpIndirect() {
	ptr := c.read16(c.PC)
	page := ptr & 0xFF00
	lo := c.bus.Read(ptr)
	hi := c.bus.Read(page | ((ptr + 1) & 0x00FF))
	c.PC = uint16(lo) | uint16(hi)<<8
}

// executeBranch claims the eight conditional branches, all of which
// share the xxy10000 bit pattern: xx selects the flag, y selects
// whether the branch fires on it being set or clear.
func (c *CPU) executeBranch(opcode uint8) bool {
	if opcode&0x1F != 0x10 {
		return false
	}

	offset := int8(c.bus.Read(c.PC))
	c.PC++

	var flag bool
	switch (opcode >> 6) & 0x03 {
	case 0:
		flag = c.N
	case 1:
		flag = c.V
	case 2:
		flag = c.C
	case 3:
		flag = c.Z
	}
	want := (opcode>>5)&0x01 != 0

	if flag == want {
		target := uint16(int32(c.PC) + int32(offset))
		if pageCrossed(c.PC, target) {
			c.skipCycles += 2
		} else {
			c.skipCycles++
		}
		c.PC = target
	}
	return true
}

// executeGroup0 claims cc=00: BIT, STY, LDY, CPY, CPX.
func (c *CPU) executeGroup0(opcode uint8) bool {
	if opcode&0x03 != 0x00 {
		return false
	}
	aaa := (opcode >> 5) & 0x07
	bbb := (opcode >> 2) & 0x07

	var addr uint16
	switch bbb {
	case 0: // immediate
		addr = c.PC
		c.PC++
	case 1: // zero page
		addr = uint16(c.bus.Read(c.PC))
		c.PC++
	case 3: // absolute
		addr = c.read16(c.PC)
		c.PC += 2
	case 5: // zero page,X
		addr = uint16(c.bus.Read(c.PC) + c.X)
		c.PC++
	case 7: // absolute,X
		base := c.read16(c.PC)
		c.PC += 2
		addr = base + uint16(c.X)
		if pageCrossed(base, addr) {
			c.skipCycles++
		}
	default:
		return false
	}

	switch aaa {
	case 1:
		c.opBIT(addr)
	case 4:
		c.opSTY(addr)
	case 5:
		c.opLDY(addr)
	case 6:
		c.opCPY(addr)
	case 7:
		c.opCPX(addr)
	default:
		return false
	}
	return true
}

// group1Address decodes the cc=01 addressing field. crossed reports
// whether an indexed mode crossed a page boundary; callers charge the
// extra cycle except for STA, which the cycle table already prices at
// the worst case unconditionally.
func (c *CPU) group1Address(bbb uint8) (addr uint16, crossed bool) {
	switch bbb {
	case 0: // (indirect,X)
		zp := c.bus.Read(c.PC) + c.X
		c.PC++
		return c.readZPWord(zp), false
	case 1: // zero page
		a := uint16(c.bus.Read(c.PC))
		c.PC++
		return a, false
	case 2: // immediate
		a := c.PC
		c.PC++
		return a, false
	case 3: // absolute
		a := c.read16(c.PC)
		c.PC += 2
		return a, false
	case 4: // (indirect),Y
		zp := c.bus.Read(c.PC)
		c.PC++
		base := c.readZPWord(zp)
		addr = base + uint16(c.Y)
		return addr, pageCrossed(base, addr)
	case 5: // zero page,X
		a := uint16(c.bus.Read(c.PC) + c.X)
		c.PC++
		return a, false
	case 6: // absolute,Y
		base := c.read16(c.PC)
		c.PC += 2
		addr = base + uint16(c.Y)
		return addr, pageCrossed(base, addr)
	case 7: // absolute,X
		base := c.read16(c.PC)
		c.PC += 2
		addr = base + uint16(c.X)
		return addr, pageCrossed(base, addr)
	}
	return 0, false
}

func (c *CPU) readZPWord(zp uint8) uint16 {
	lo := uint16(c.bus.Read(uint16(zp)))
	hi := uint16(c.bus.Read(uint16(zp + 1)))
	return lo | hi<<8
}

// executeGroup1 claims cc=01: ORA, AND, EOR, ADC, STA, LDA, CMP, SBC,
// across all eight addressing modes.
func (c *CPU) executeGroup1(opcode uint8) bool {
	if opcode&0x03 != 0x01 {
		return false
	}
	aaa := (opcode >> 5) & 0x07
	bbb := (opcode >> 2) & 0x07

	addr, crossed := c.group1Address(bbb)
	if crossed && aaa != 4 {
		c.skipCycles++
	}

	switch aaa {
	case 0:
		c.opORA(addr)
	case 1:
		c.opAND(addr)
	case 2:
		c.opEOR(addr)
	case 3:
		c.opADC(addr)
	case 4:
		c.opSTA(addr)
	case 5:
		c.opLDA(addr)
	case 6:
		c.opCMPA(addr)
	case 7:
		c.opSBC(addr)
	}
	return true
}

// executeGroup2 claims cc=10: ASL, ROL, LSR, ROR, STX, LDX, DEC, INC.
// bbb=010 selects accumulator mode for the four shift/rotate ops; for
// the rest those bytes are TXA, TAX, DEX and NOP, which executeImplied
// claims before this handler is tried.
func (c *CPU) executeGroup2(opcode uint8) bool {
	if opcode&0x03 != 0x02 {
		return false
	}
	aaa := (opcode >> 5) & 0x07
	bbb := (opcode >> 2) & 0x07

	if bbb == 2 {
		switch aaa {
		case 0:
			c.A = c.asl(c.A)
		case 1:
			c.A = c.rol(c.A)
		case 2:
			c.A = c.lsr(c.A)
		case 3:
			c.A = c.ror(c.A)
		default:
			return false
		}
		return true
	}

	useY := aaa == 4 || aaa == 5 // STX/LDX index with Y, not X

	var addr uint16
	switch bbb {
	case 0: // immediate (LDX only)
		addr = c.PC
		c.PC++
	case 1: // zero page
		addr = uint16(c.bus.Read(c.PC))
		c.PC++
	case 3: // absolute
		addr = c.read16(c.PC)
		c.PC += 2
	case 5: // zero page,X or zero page,Y
		idx := c.X
		if useY {
			idx = c.Y
		}
		addr = uint16(c.bus.Read(c.PC) + idx)
		c.PC++
	case 7: // absolute,X or absolute,Y
		idx := uint16(c.X)
		if useY {
			idx = uint16(c.Y)
		}
		base := c.read16(c.PC)
		c.PC += 2
		addr = base + idx
		if aaa == 5 && pageCrossed(base, addr) { // LDX absolute,Y only
			c.skipCycles++
		}
	default:
		return false
	}

	switch aaa {
	case 0:
		c.bus.Write(addr, c.asl(c.bus.Read(addr)))
	case 1:
		c.bus.Write(addr, c.rol(c.bus.Read(addr)))
	case 2:
		c.bus.Write(addr, c.lsr(c.bus.Read(addr)))
	case 3:
		c.bus.Write(addr, c.ror(c.bus.Read(addr)))
	case 4:
		c.opSTX(addr)
	case 5:
		c.opLDX(addr)
	case 6:
		c.bus.Write(addr, c.dec(c.bus.Read(addr)))
	case 7:
		c.bus.Write(addr, c.inc(c.bus.Read(addr)))
	}
	return true
}
