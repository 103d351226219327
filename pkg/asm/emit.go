package asm

// ALUOp selects a register-register instruction family sharing the
// `opcode /r` encoding shape. The constant value is the 32/64-bit
// opcode byte; the 8-bit variant is that byte minus one.
type ALUOp uint8

const (
	OpAdd ALUOp = 0x01
	OpOr  ALUOp = 0x09
	OpAdc ALUOp = 0x11
	OpSbb ALUOp = 0x19
	OpAnd ALUOp = 0x21
	OpSub ALUOp = 0x29
	OpXor ALUOp = 0x31
	OpCmp ALUOp = 0x39
	OpMov ALUOp = 0x89
)

// ALU emits a register-register instruction `op dst, src` at the given
// operand width. Encoding: optional 66 prefix, REX, opcode, ModR/M with
// mod=11. The src register lands in the reg field (REX.R), dst in rm
// (REX.B).
func (a *Assembler) ALU(op ALUOp, w Width, dst, src Reg) {
	opc := uint8(op)
	switch w {
	case W16:
		a.byte(0x66)
	case W8:
		opc--
	}
	a.byte(rex(w == W64, src.high(), dst.high()), opc, modRM(src.low(), dst.low()))
}

// MovImm emits a move of an immediate into a register using the short
// B8+r form (B0+r for 8-bit), with the immediate appended
// little-endian at the operand width. Values wider than the operand
// are truncated.
func (a *Assembler) MovImm(w Width, dst Reg, imm uint64) {
	switch w {
	case W64:
		a.byte(rex(true, 0, dst.high()), 0xB8+dst.low())
		a.imm64(imm)
	case W32:
		a.byte(rex(false, 0, dst.high()), 0xB8+dst.low())
		a.imm32(uint32(imm))
	case W16:
		a.byte(0x66, rex(false, 0, dst.high()), 0xB8+dst.low())
		a.imm16(uint16(imm))
	case W8:
		a.byte(rex(false, 0, dst.high()), 0xB0+dst.low())
		a.byte(uint8(imm))
	}
}

// Push emits `push r` (50+r).
func (a *Assembler) Push(r Reg) {
	a.byte(rex(false, 0, r.high()), 0x50+r.low())
}

// Pop emits `pop r` (58+r).
func (a *Assembler) Pop(r Reg) {
	a.byte(rex(false, 0, r.high()), 0x58+r.low())
}

// Ret emits `ret`.
func (a *Assembler) Ret() {
	a.byte(0xC3)
}

// Nop emits a one-byte `nop`.
func (a *Assembler) Nop() {
	a.byte(0x90)
}

// Jmp emits `jmp rel32` to l, leaving a four-byte placeholder that a
// relative relocation resolves at link time. The short rel8 form is
// never used, so every branch site has a fixed-width patch.
func (a *Assembler) Jmp(l Label) {
	a.byte(0xE9)
	a.reloc(l, true)
}

// Call emits `call rel32` to l with a relative relocation.
func (a *Assembler) Call(l Label) {
	a.byte(0xE8)
	a.reloc(l, true)
}

// Jcc emits `jcc rel32` (0F 80+cond) to l with a relative relocation.
func (a *Assembler) Jcc(c Cond, l Label) {
	a.byte(0x0F, 0x80+uint8(c))
	a.reloc(l, true)
}

// JmpReg emits an indirect `jmp r` (FF /4).
func (a *Assembler) JmpReg(r Reg) {
	a.byte(rex(true, 0, r.high()), 0xFF, modRM(4, r.low()))
}

// CallReg emits an indirect `call r` (FF /2).
func (a *Assembler) CallReg(r Reg) {
	a.byte(rex(true, 0, r.high()), 0xFF, modRM(2, r.low()))
}

// F7 /digit single-operand arithmetic: rdx:rax op= r.
const (
	digitMul  = 4
	digitIMul = 5
	digitDiv  = 6
	digitIDiv = 7
)

func (a *Assembler) unary(digit uint8, r Reg) {
	a.byte(rex(true, 0, r.high()), 0xF7, modRM(digit, r.low()))
}

// Mul emits `mul r` (unsigned rdx:rax = rax * r).
func (a *Assembler) Mul(r Reg) { a.unary(digitMul, r) }

// IMul emits `imul r` (signed rdx:rax = rax * r).
func (a *Assembler) IMul(r Reg) { a.unary(digitIMul, r) }

// Div emits `div r` (unsigned divide of rdx:rax by r).
func (a *Assembler) Div(r Reg) { a.unary(digitDiv, r) }

// IDiv emits `idiv r` (signed divide of rdx:rax by r).
func (a *Assembler) IDiv(r Reg) { a.unary(digitIDiv, r) }
