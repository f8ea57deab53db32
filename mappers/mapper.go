// Package mappers implements the cartridge-side address translators
// referenced numerically by iNES ROM files.
// https://www.nesdev.org/wiki/Mapper
package mappers

import (
	"fmt"

	"github.com/bdwalton/gintendo-core/nesrom"
)

// Mapper translates CPU and PPU addresses into cartridge PRG/CHR space.
// Concrete variants are looked up by the iNES mapper id via New.
type Mapper interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, val uint8)
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, val uint8)
	Mirroring() uint8
	HasExtendedRAM() bool
}

type factory func(*nesrom.ROM) Mapper

// registry maps iNES mapper ids to constructors. Populated by each
// variant's init() (see nrom.go), mirroring the teacher's
// RegisterMapper/Get split.
var registry = map[uint8]factory{}

func register(id uint8, f factory) {
	if _, ok := registry[id]; ok {
		panic(fmt.Sprintf("mappers: id %d already registered", id))
	}
	registry[id] = f
}

// New constructs the Mapper implementation for rom's declared mapper id.
// It returns an error for any id the core does not implement; the
// decoding and bus code compiles against the Mapper interface
// regardless of how many ids are actually registered.
func New(rom *nesrom.ROM) (Mapper, error) {
	f, ok := registry[rom.MapperID()]
	if !ok {
		return nil, fmt.Errorf("mappers: unsupported mapper id %d", rom.MapperID())
	}
	return f(rom), nil
}
