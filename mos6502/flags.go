package mos6502

// Status register bit positions. Bit 5 is always read back as 1 and has
// no corresponding CPU field; bit 4 (break) only exists in the byte
// pushed to the stack, never in the live register set.
const (
	flagC uint8 = 1 << 0
	flagZ uint8 = 1 << 1
	flagI uint8 = 1 << 2
	flagD uint8 = 1 << 3
	flagB uint8 = 1 << 4
	flagU uint8 = 1 << 5
	flagV uint8 = 1 << 6
	flagN uint8 = 1 << 7
)

// packFlags assembles the 8-bit status register as pushed to the stack
// by PHP or an interrupt entry. brk selects the break bit: callers pass
// brk=true from both BRK and PHP, and only hardware interrupts (NMI,
// IRQ) pass false.
func packFlags(c, z, i, d, v, n, brk bool) uint8 {
	var f uint8 = flagU
	if c {
		f |= flagC
	}
	if z {
		f |= flagZ
	}
	if i {
		f |= flagI
	}
	if d {
		f |= flagD
	}
	if v {
		f |= flagV
	}
	if n {
		f |= flagN
	}
	if brk {
		f |= flagB
	}
	return f
}

// unpackFlags is packFlags's inverse, used by PLP and RTI. The break and
// unused bits are accepted in the byte but discarded; they never become
// live CPU state.
func unpackFlags(f uint8) (c, z, i, d, v, n bool) {
	c = f&flagC != 0
	z = f&flagZ != 0
	i = f&flagI != 0
	d = f&flagD != 0
	v = f&flagV != 0
	n = f&flagN != 0
	return
}

func (c *CPU) pullFlags() {
	c.C, c.Z, c.I, c.D, c.V, c.N = unpackFlags(c.pull())
}
