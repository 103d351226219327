// Package asm is an in-memory x86-64 instruction encoder. An Assembler
// appends instruction bytes to a growable buffer, tracks labels at
// buffer offsets, and records relocations for branches whose targets
// are patched in at link time. The buffer is append-only: emitters
// never rewrite earlier bytes, only the link step patches placeholders.
package asm

import "encoding/binary"

// Label identifies a position in the output. Ids are dense, assigned
// from 0 in creation order.
type Label int

// Reloc records a placeholder that linking must overwrite: four bytes
// at Offset with a rel32 displacement when Relative, otherwise eight
// bytes with base+label as an absolute address.
type Reloc struct {
	Offset   int
	Label    Label
	Relative bool
}

// Assembler accumulates encoded instructions. The zero value is ready
// to use.
type Assembler struct {
	code   []byte
	labels []int
	relocs []Reloc
}

// New returns an empty Assembler.
func New() *Assembler {
	return &Assembler{}
}

// Len returns the number of bytes emitted so far.
func (a *Assembler) Len() int { return len(a.code) }

// Bytes returns a copy of the emitted code.
func (a *Assembler) Bytes() []byte {
	out := make([]byte, len(a.code))
	copy(out, a.code)
	return out
}

// Labels returns a copy of the label offset table, indexed by Label.
func (a *Assembler) Labels() []int {
	out := make([]int, len(a.labels))
	copy(out, a.labels)
	return out
}

// Relocs returns a copy of the relocation table in emission order.
func (a *Assembler) Relocs() []Reloc {
	out := make([]Reloc, len(a.relocs))
	copy(out, a.relocs)
	return out
}

// AddLabel creates a new label at the current write position.
func (a *Assembler) AddLabel() Label {
	a.labels = append(a.labels, len(a.code))
	return Label(len(a.labels) - 1)
}

// MoveLabel repositions l to the current write position. Used when a
// label must be handed out before its final location is known.
func (a *Assembler) MoveLabel(l Label) {
	a.labels[l] = len(a.code)
}

// LabelOffset returns the current offset of l.
func (a *Assembler) LabelOffset(l Label) int {
	return a.labels[l]
}

func (a *Assembler) byte(bs ...byte) {
	a.code = append(a.code, bs...)
}

func (a *Assembler) imm16(v uint16) {
	a.code = binary.LittleEndian.AppendUint16(a.code, v)
}

func (a *Assembler) imm32(v uint32) {
	a.code = binary.LittleEndian.AppendUint32(a.code, v)
}

func (a *Assembler) imm64(v uint64) {
	a.code = binary.LittleEndian.AppendUint64(a.code, v)
}

// reloc appends a placeholder of the relocation's width (4 bytes
// relative, 8 absolute) at the current position and records it.
func (a *Assembler) reloc(l Label, relative bool) {
	a.relocs = append(a.relocs, Reloc{Offset: len(a.code), Label: l, Relative: relative})
	if relative {
		a.byte(0, 0, 0, 0)
	} else {
		a.byte(0, 0, 0, 0, 0, 0, 0, 0)
	}
}
