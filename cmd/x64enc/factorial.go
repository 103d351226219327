package main

import "github.com/MasterTaffer/x86-64-encoder/pkg/asm"

// buildFactorial emits a factorial routine: argument in rdi, result in
// rax, computing max(1, n!).
//
//	        xor rax, rax
//	        mov al, 1
//	        mov r8, rax
//	start:  xor rdx, rdx
//	        cmp rdi, rdx
//	        jle end
//	        imul rdi
//	        sub rdi, r8
//	        jmp start
//	end:    ret
//
// With goBridge, a leading `mov rdi, rax` adapts the entry to Go's
// internal calling convention (first argument in rax) so the routine
// can be invoked through jit.Region.Func1.
func buildFactorial(a *asm.Assembler, goBridge bool) {
	if goBridge {
		a.ALU(asm.OpMov, asm.W64, asm.RDI, asm.RAX)
	}
	start := a.AddLabel()
	end := a.AddLabel()

	a.ALU(asm.OpXor, asm.W64, asm.RAX, asm.RAX)
	a.MovImm(asm.W8, asm.RAX, 1)
	a.ALU(asm.OpMov, asm.W64, asm.R8, asm.RAX)

	a.MoveLabel(start)
	a.ALU(asm.OpXor, asm.W64, asm.RDX, asm.RDX)
	a.ALU(asm.OpCmp, asm.W64, asm.RDI, asm.RDX)
	a.Jcc(asm.CondLE, end)
	a.IMul(asm.RDI)
	a.ALU(asm.OpSub, asm.W64, asm.RDI, asm.R8)
	a.Jmp(start)

	a.MoveLabel(end)
	a.Ret()
}
