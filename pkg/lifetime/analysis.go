// Package lifetime computes variable live ranges over ir functions.
// For each instruction it records jump-target metadata, and for each
// variable the half-open instruction range [Start, End) over which its
// value is needed, widened so that any backward jump landing inside a
// live range extends the range through the jump source.
package lifetime

import "github.com/MasterTaffer/x86-64-encoder/pkg/ir"

// Variable flags.
const (
	// FlagPruned marks variables removed by later passes; the
	// analyzer itself never sets it.
	FlagPruned uint8 = 1 << 0
	// FlagUnused is set while a variable has been assigned but not
	// yet read.
	FlagUnused uint8 = 1 << 1
	// FlagEternal marks a variable live across the whole function;
	// its numeric range is ignored.
	FlagEternal uint8 = 1 << 2
	// FlagUninitialized marks a variable read before any assignment.
	// Sticky, and always combined with FlagEternal.
	FlagUninitialized uint8 = 1 << 3
)

// OpcodeInfo is per-instruction control-flow metadata.
type OpcodeInfo struct {
	// PreviousLabel is the index of the nearest earlier instruction
	// that is a jump target, or -1.
	PreviousLabel int `json:"previous_label"`
	// JumpFrom is the highest-index instruction jumping here, or -1.
	JumpFrom int `json:"jump_from"`
}

// VariableInfo is a variable's computed live range and flags.
// Start == -1 means the variable was never referenced.
type VariableInfo struct {
	Start int   `json:"lifetime_start"`
	End   int   `json:"lifetime_end"`
	Flags uint8 `json:"flags"`
}

// Eternal reports whether the variable is live across the whole
// function.
func (v VariableInfo) Eternal() bool { return v.Flags&FlagEternal != 0 }

// FunctionAnalysis holds the analyzer's output for one function.
type FunctionAnalysis struct {
	Ops  []OpcodeInfo   `json:"ops"`
	Vars []VariableInfo `json:"vars"`
}

// Analyse computes per-instruction and per-variable records for fn.
// The function is borrowed, never mutated, and is assumed to satisfy
// Function.Validate.
func Analyse(fn *ir.Function) *FunctionAnalysis {
	an := &FunctionAnalysis{
		Ops:  make([]OpcodeInfo, len(fn.Ops)),
		Vars: make([]VariableInfo, len(fn.Vars)),
	}
	for i := range an.Ops {
		an.Ops[i] = OpcodeInfo{PreviousLabel: -1, JumpFrom: -1}
	}
	for i := range an.Vars {
		an.Vars[i] = VariableInfo{Start: -1, End: -1}
	}

	// Pass 1: jump sources, right to left. Setting each target's
	// JumpFrom only once keeps the highest-index source, the farthest
	// backward reach.
	for i := len(fn.Ops) - 1; i >= 0; i-- {
		if !fn.Ops[i].Type.IsJump() {
			continue
		}
		target := fn.Ops[i].Target().Ref
		if an.Ops[target].JumpFrom == -1 {
			an.Ops[target].JumpFrom = i
		}
	}

	// Pass 2: chain each instruction to the nearest jump target
	// before it, so the extension walk can enumerate targets within a
	// range in descending order.
	prev := -1
	for i := range fn.Ops {
		an.Ops[i].PreviousLabel = prev
		if an.Ops[i].JumpFrom != -1 {
			prev = i
		}
	}

	// Pass 3: lifetimes.
	for i, op := range fn.Ops {
		if t := op.Target(); t.IsVariable() && (op.Type.ModifiesTarget() || op.Type.IsPureAssignment()) {
			an.extend(t.Ref, i, op.Type.IsPureAssignment())
		}
		for p := 0; p < 2; p++ {
			o := op.Primary(p)
			if !o.IsVariable() {
				continue
			}
			if o.TakesAddress() {
				an.Vars[o.Ref].Flags |= FlagEternal
				continue
			}
			reads := op.Type.ReadsPrimary1()
			if p == 1 {
				reads = op.Type.ReadsPrimary2()
			}
			if reads {
				an.extend(o.Ref, i, false)
			}
		}
	}
	return an
}

// extend widens variable v's live range to cover the use at index,
// then closes the range over backward jumps: while any jump-targeted
// instruction inside the range has a source past its end, the end
// moves past that source.
func (an *FunctionAnalysis) extend(v, index int, pureAssignment bool) {
	info := &an.Vars[v]
	if info.Flags&(FlagEternal|FlagUninitialized) != 0 || info.End > index {
		return
	}

	if info.Start == -1 {
		if !pureAssignment {
			// First touch is a read: conservatively treat the
			// variable as live everywhere.
			info.Flags |= FlagEternal | FlagUninitialized
			return
		}
		info.Start = index
		info.End = index + 1
		info.Flags |= FlagUnused
	} else if pureAssignment {
		info.Flags |= FlagUnused
	} else {
		info.Flags &^= FlagUnused
	}

	bound := info.End
	if info.Start > bound {
		bound = info.Start
	}
	maxJmp := index
	var candidate int
	for {
		candidate = maxJmp + 1
		for p := maxJmp; p >= bound; p = an.Ops[p].PreviousLabel {
			if an.Ops[p].JumpFrom > maxJmp {
				maxJmp = an.Ops[p].JumpFrom
			}
		}
		if maxJmp < candidate {
			break
		}
	}
	info.End = candidate
}
