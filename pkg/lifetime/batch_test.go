package lifetime

import (
	"testing"

	"github.com/MasterTaffer/x86-64-encoder/pkg/ir"
)

func TestAnalyseAllPreservesOrder(t *testing.T) {
	// Each function returns a distinct variable count so results can
	// be matched back to inputs.
	var fns []ir.Function
	for n := 1; n <= 16; n++ {
		fn := ir.Function{ID: n}
		for v := 0; v < n; v++ {
			fn.Ops = append(fn.Ops, ir.Opcode{Type: ir.OpCopy, Operands: [3]ir.Operand{ir.Var(v), ir.Imm(0)}})
			fn.Vars = append(fn.Vars, ir.Variable{})
		}
		fn.Ops = append(fn.Ops, ir.Opcode{Type: ir.OpReturn, Operands: [3]ir.Operand{{}, ir.Imm(0)}})
		fns = append(fns, fn)
	}

	results := AnalyseAll(fns, 4)
	if len(results) != len(fns) {
		t.Fatalf("got %d results, want %d", len(results), len(fns))
	}
	for i, an := range results {
		if len(an.Vars) != i+1 {
			t.Errorf("result %d has %d variables, want %d", i, len(an.Vars), i+1)
		}
		if len(an.Ops) != i+2 {
			t.Errorf("result %d has %d opcode infos, want %d", i, len(an.Ops), i+2)
		}
	}
}

func TestPoolDefaultsWorkers(t *testing.T) {
	p := NewPool(0)
	if p.NumWorkers <= 0 {
		t.Errorf("NumWorkers = %d, want > 0", p.NumWorkers)
	}
	p.Run([]ir.Function{{Ops: []ir.Opcode{{Type: ir.OpNop}}}})
	if p.Completed() != 1 {
		t.Errorf("Completed = %d, want 1", p.Completed())
	}
}
