package main

import (
	"bytes"
	"testing"

	"golang.org/x/arch/x86/x86asm"

	"github.com/MasterTaffer/x86-64-encoder/pkg/asm"
)

func TestFactorialBytes(t *testing.T) {
	a := asm.New()
	buildFactorial(a, false)
	img := a.Image()
	if err := img.Link(0); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x48, 0x31, 0xC0, // xor rax, rax
		0x40, 0xB0, 0x01, // mov al, 1
		0x49, 0x89, 0xC0, // mov r8, rax
		0x48, 0x31, 0xD2, // start: xor rdx, rdx
		0x48, 0x39, 0xD7, // cmp rdi, rdx
		0x0F, 0x8E, 0x0B, 0x00, 0x00, 0x00, // jle end (+11)
		0x48, 0xF7, 0xEF, // imul rdi
		0x4C, 0x29, 0xC7, // sub rdi, r8
		0xE9, 0xE9, 0xFF, 0xFF, 0xFF, // jmp start (-23)
		0xC3, // end: ret
	}
	if !bytes.Equal(img.Code, want) {
		t.Errorf("factorial code mismatch:\ngot  % 02X\nwant % 02X", img.Code, want)
	}
}

func TestFactorialDecodes(t *testing.T) {
	a := asm.New()
	buildFactorial(a, false)
	img := a.Image()
	if err := img.Link(0); err != nil {
		t.Fatal(err)
	}

	want := []x86asm.Op{
		x86asm.XOR, x86asm.MOV, x86asm.MOV,
		x86asm.XOR, x86asm.CMP, x86asm.JLE,
		x86asm.IMUL, x86asm.SUB, x86asm.JMP, x86asm.RET,
	}
	code := img.Code
	for i, op := range want {
		inst, err := x86asm.Decode(code, 64)
		if err != nil {
			t.Fatalf("instruction %d: decode failed on % 02X: %v", i, code, err)
		}
		if inst.Op != op {
			t.Fatalf("instruction %d: decoded %v, want %v", i, inst.Op, op)
		}
		code = code[inst.Len:]
	}
	if len(code) != 0 {
		t.Errorf("%d trailing bytes after decoding", len(code))
	}
}
