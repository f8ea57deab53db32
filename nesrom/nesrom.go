// Package nesrom parses the iNES cartridge container format.
// https://www.nesdev.org/wiki/INES
package nesrom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	headerSize  = 16
	prgBankSize = 16384
	chrBankSize = 8192
)

var magic = []byte{0x4E, 0x45, 0x53, 0x1A}

// Mirroring modes, as recorded in header byte 6.
const (
	MirrorHorizontal = 0
	MirrorVertical   = 1
)

// ErrUnsupportedROM is wrapped by Load when the image uses a variant this
// core declines to run: a trainer, PAL timing, or a bad magic number.
var ErrUnsupportedROM = errors.New("unsupported ROM image")

// ROM holds the parsed contents of an iNES file: PRG and CHR byte images
// plus the handful of header fields the mapper and bus care about. Once
// returned from Load, a ROM is immutable.
type ROM struct {
	prg []byte
	chr []byte

	mapperID    uint8
	mirroring   uint8
	extendedRAM bool
}

// Load reads and parses an iNES image from r. Short reads, a bad magic
// number, a trainer, PAL timing, or a missing PRG bank all fail with an
// error wrapping ErrUnsupportedROM or the underlying io error.
func Load(r io.Reader) (*ROM, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("nesrom: reading header: %w", err)
	}

	if !bytes.Equal(header[0:4], magic) {
		return nil, fmt.Errorf("nesrom: bad magic number %v: %w", header[0:4], ErrUnsupportedROM)
	}

	prgBanks := header[4]
	if prgBanks == 0 {
		return nil, fmt.Errorf("nesrom: zero PRG-ROM banks: %w", ErrUnsupportedROM)
	}
	chrBanks := header[5]

	flags6 := header[6]
	flags7 := header[7]
	flags10 := header[10]

	if flags6&0x04 != 0 {
		return nil, fmt.Errorf("nesrom: trainer present: %w", ErrUnsupportedROM)
	}
	if flags10&0x03 != 0 {
		return nil, fmt.Errorf("nesrom: PAL timing not supported: %w", ErrUnsupportedROM)
	}

	rom := &ROM{
		mapperID:    (flags6 >> 4) | (flags7 & 0xF0),
		mirroring:   flags6 & 0b1011,
		extendedRAM: flags6&0x02 != 0,
	}

	rom.prg = make([]byte, int(prgBanks)*prgBankSize)
	if _, err := io.ReadFull(r, rom.prg); err != nil {
		return nil, fmt.Errorf("nesrom: reading PRG-ROM (%d banks): %w", prgBanks, err)
	}

	if chrBanks > 0 {
		rom.chr = make([]byte, int(chrBanks)*chrBankSize)
		if _, err := io.ReadFull(r, rom.chr); err != nil {
			return nil, fmt.Errorf("nesrom: reading CHR-ROM (%d banks): %w", chrBanks, err)
		}
	}

	return rom, nil
}

// LoadFile opens path and parses it as an iNES image.
func LoadFile(path string) (*ROM, error) {
	// kept as a thin convenience wrapper; Load takes an io.Reader so
	// tests can build ROMs from in-memory buffers.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nesrom: opening %q: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// PRG returns the program ROM image. Length is always a multiple of 16 KiB.
func (r *ROM) PRG() []byte { return r.prg }

// CHR returns the character ROM image. It is empty when the cartridge uses
// CHR-RAM instead (the mapper is then responsible for supplying it).
func (r *ROM) CHR() []byte { return r.chr }

// MapperID returns the iNES mapper number assembled from header bytes 6-7.
func (r *ROM) MapperID() uint8 { return r.mapperID }

// Mirroring returns header byte 6 masked with 0b1011: bit 0 selects
// horizontal/vertical, bit 1 is the extended-RAM bit, and bit 3
// indicates four-screen VRAM.
func (r *ROM) Mirroring() uint8 { return r.mirroring }

// HasExtendedRAM reports whether the cartridge declares battery-backed or
// other persistent PRG RAM at $6000-$7FFF.
func (r *ROM) HasExtendedRAM() bool { return r.extendedRAM }
