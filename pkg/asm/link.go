package asm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"
)

var (
	// ErrUnknownLabel reports a relocation against a label id that was
	// never created.
	ErrUnknownLabel = errors.New("relocation references unknown label")

	// ErrDisplacementRange reports a rel32 displacement that does not
	// fit a signed 32-bit patch.
	ErrDisplacementRange = errors.New("rel32 displacement out of range")

	// ErrShortDestination reports a link destination smaller than the
	// emitted code.
	ErrShortDestination = errors.New("destination buffer too small")
)

// resolve patches every relocation into code, whose labels live at the
// given offsets. base is the virtual address code will run at; it only
// affects absolute relocations, since a rel32 displacement depends on
// label and patch offsets alone. All relocations are checked before
// any byte is written, so a failed resolve leaves code untouched.
func resolve(code []byte, labels []int, relocs []Reloc, base uint64) error {
	for _, r := range relocs {
		if int(r.Label) < 0 || int(r.Label) >= len(labels) {
			return fmt.Errorf("%w: label %d of %d at offset %d", ErrUnknownLabel, r.Label, len(labels), r.Offset)
		}
		if r.Relative {
			disp := int64(labels[r.Label]) - int64(r.Offset+4)
			if disp < math.MinInt32 || disp > math.MaxInt32 {
				return fmt.Errorf("%w: %d at offset %d", ErrDisplacementRange, disp, r.Offset)
			}
		}
	}
	for _, r := range relocs {
		if r.Relative {
			disp := int64(labels[r.Label]) - int64(r.Offset+4)
			binary.LittleEndian.PutUint32(code[r.Offset:], uint32(int32(disp)))
		} else {
			binary.LittleEndian.PutUint64(code[r.Offset:], base+uint64(labels[r.Label]))
		}
	}
	return nil
}

// ApplyRelocations patches the assembler's own buffer in place,
// resolving absolute relocations against base. After this the buffer
// is position-correct for execution at base.
func (a *Assembler) ApplyRelocations(base uint64) error {
	return resolve(a.code, a.labels, a.relocs, base)
}

// LinkTo copies the emitted code into dst and resolves relocations
// against dst's own address, leaving the assembler's internal buffer
// untouched. The assembler stays reusable: linking the same state into
// several destinations yields identical relocated output in each.
func (a *Assembler) LinkTo(dst []byte) error {
	if len(dst) < len(a.code) {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrShortDestination, len(a.code), len(dst))
	}
	copy(dst, a.code)
	var base uint64
	if len(dst) > 0 {
		base = uint64(uintptr(unsafe.Pointer(&dst[0])))
	}
	return resolve(dst, a.labels, a.relocs, base)
}
