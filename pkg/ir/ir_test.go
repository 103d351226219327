package ir

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadershipRules(t *testing.T) {
	// Base COMPARE/GOTO and NOP read nothing; everything else reads
	// primary_1.
	for _, op := range []OpcodeType{OpNop, OpGoto, OpCompare} {
		if op.ReadsPrimary1() {
			t.Errorf("%v should not read primary_1", op)
		}
		if op.ReadsPrimary2() {
			t.Errorf("%v should not read primary_2", op)
		}
	}

	// Conditional variants read both primaries.
	for c := CmpEqual; c < cmpCount; c++ {
		for _, op := range []OpcodeType{GotoIf(c), CompareIf(c)} {
			if !op.ReadsPrimary1() || !op.ReadsPrimary2() {
				t.Errorf("%v should read both primaries", op)
			}
		}
	}

	// Single-input operations read primary_1 only.
	for _, op := range []OpcodeType{OpReturn, OpCall, OpSetArg, OpBitNot, OpNot, OpCopy} {
		if !op.ReadsPrimary1() {
			t.Errorf("%v should read primary_1", op)
		}
		if op.ReadsPrimary2() {
			t.Errorf("%v should not read primary_2", op)
		}
	}

	// Two-input arithmetic reads both.
	for _, op := range []OpcodeType{OpAdd, OpSub, OpMul, OpDiv, OpBitAnd, OpShiftLeft} {
		if !op.ReadsPrimary1() || !op.ReadsPrimary2() {
			t.Errorf("%v should read both primaries", op)
		}
	}
}

func TestPureAssignment(t *testing.T) {
	if !OpCopy.IsPureAssignment() || !OpCall.IsPureAssignment() {
		t.Error("copy and call are pure assignments")
	}
	for _, op := range []OpcodeType{OpAdd, OpNop, OpGoto, OpCompare, OpReturn} {
		if op.IsPureAssignment() {
			t.Errorf("%v is not a pure assignment", op)
		}
	}
}

func TestJumpBand(t *testing.T) {
	if !OpGoto.IsJump() {
		t.Error("goto base is a jump")
	}
	for c := CmpEqual; c < cmpCount; c++ {
		if !GotoIf(c).IsJump() {
			t.Errorf("goto variant %v is a jump", c)
		}
		if GotoIf(c).IsCompare() {
			t.Errorf("goto variant %v is not a compare", c)
		}
	}
	if OpCompare.IsJump() || OpCall.IsJump() || OpReturn.IsJump() {
		t.Error("non-goto opcodes must not be jumps")
	}
}

func TestValidate(t *testing.T) {
	good := Function{
		ID:   0,
		Ops:  []Opcode{{Type: OpCopy, Operands: [3]Operand{Var(0), Imm(1)}}, {Type: OpReturn, Operands: [3]Operand{{}, Var(0)}}},
		Vars: []Variable{{TypeInfo{Type: I64}}},
	}
	if err := good.Validate(); err != nil {
		t.Errorf("valid function rejected: %v", err)
	}

	tests := []struct {
		name string
		fn   Function
		want string
	}{
		{
			"jump target out of range",
			Function{Ops: []Opcode{{Type: OpGoto, Operands: [3]Operand{Target(5)}}}},
			"jump target",
		},
		{
			"variable ref out of range",
			Function{Ops: []Opcode{{Type: OpCopy, Operands: [3]Operand{Var(2), Imm(0)}}}, Vars: []Variable{{}}},
			"variable ref",
		},
		{
			"argument ref out of range",
			Function{Ops: []Opcode{{Type: OpReturn, Operands: [3]Operand{{}, Arg(0)}}}},
			"argument ref",
		},
		{
			"constant ref out of range",
			Function{Ops: []Opcode{{Type: OpReturn, Operands: [3]Operand{{}, Const(1)}}}},
			"constant ref",
		},
	}
	for _, tc := range tests {
		err := tc.fn.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: Validate = %v, want error containing %q", tc.name, err, tc.want)
		}
	}
}

func TestJSONRoundtrip(t *testing.T) {
	fns := []Function{{
		ID: 3,
		Ops: []Opcode{
			{Type: OpCopy, Operands: [3]Operand{Var(0), Imm(0)}},
			{Type: GotoIf(CmpEqual), Operands: [3]Operand{Target(0), Var(0), Imm(10)}},
			{Type: OpReturn, Operands: [3]Operand{{}, Var(0)}},
		},
		Return: TypeInfo{Type: I64},
		Vars:   []Variable{{TypeInfo{Type: I64}}},
	}}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, fns); err != nil {
		t.Fatal(err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(fns, got); diff != "" {
		t.Errorf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestOpcodeString(t *testing.T) {
	op := Opcode{Type: GotoIf(CmpEqual), Operands: [3]Operand{Target(5), Var(0), Imm(10)}}
	if got, want := op.String(), "goto.eq(v0, #10) -> 5"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
	cp := Opcode{Type: OpCopy, Operands: [3]Operand{Var(1), Imm(7)}}
	if got, want := cp.String(), "copy v1, #7, #0"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}
