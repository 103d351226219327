package asm

import (
	"encoding/gob"
	"os"
)

// Image is an unlinked snapshot of an assembler: code with unresolved
// placeholders plus the label and relocation tables needed to finish
// linking later, possibly in another process.
type Image struct {
	Code   []byte
	Labels []int
	Relocs []Reloc
}

// Image snapshots the assembler's current state. The snapshot is
// independent: further emits or linking on either side do not affect
// the other.
func (a *Assembler) Image() *Image {
	img := &Image{
		Code:   make([]byte, len(a.code)),
		Labels: make([]int, len(a.labels)),
		Relocs: make([]Reloc, len(a.relocs)),
	}
	copy(img.Code, a.code)
	copy(img.Labels, a.labels)
	copy(img.Relocs, a.relocs)
	return img
}

// Link patches the image's code in place for execution at base.
func (img *Image) Link(base uint64) error {
	return resolve(img.Code, img.Labels, img.Relocs, base)
}

// LinkTo copies the image into dst and resolves relocations against
// dst's address, like Assembler.LinkTo.
func (img *Image) LinkTo(dst []byte) error {
	a := Assembler{code: img.Code, labels: img.Labels, relocs: img.Relocs}
	return a.LinkTo(dst)
}

// SaveImage writes an image to a file.
func SaveImage(path string, img *Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(img)
}

// LoadImage reads an image written by SaveImage.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var img Image
	if err := gob.NewDecoder(f).Decode(&img); err != nil {
		return nil, err
	}
	return &img, nil
}
