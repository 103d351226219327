package ir

import (
	"encoding/json"
	"fmt"
	"io"
)

// Variable is a function-local slot.
type Variable struct {
	TypeInfo TypeInfo `json:"type_info"`
}

// Constant is an entry in a function's constant table.
type Constant struct {
	TypeInfo TypeInfo `json:"type_info"`
	Value    int64    `json:"value"`
}

// Function is a flat opcode sequence with its operand tables.
type Function struct {
	ID        int        `json:"id"`
	Ops       []Opcode   `json:"ops"`
	Args      []TypeInfo `json:"args,omitempty"`
	Return    TypeInfo   `json:"return"`
	Vars      []Variable `json:"vars,omitempty"`
	Constants []Constant `json:"constants,omitempty"`
}

// Validate checks the construction-boundary invariants the analyzer
// assumes: jump targets inside [0, len(Ops)) and operand refs within
// their tables. Function refs are only checked for sign, since the
// module-level function table is outside a single Function.
func (f *Function) Validate() error {
	for i, op := range f.Ops {
		if op.Type >= numOpcodes {
			return fmt.Errorf("op %d: invalid opcode type %d", i, op.Type)
		}
		if op.Type.IsJump() {
			target := op.Operands[0].Ref
			if target < 0 || target >= len(f.Ops) {
				return fmt.Errorf("op %d: jump target %d outside [0,%d)", i, target, len(f.Ops))
			}
		}
		for slot, o := range op.Operands {
			if err := f.validateOperand(o); err != nil {
				return fmt.Errorf("op %d operand %d: %w", i, slot, err)
			}
		}
	}
	return nil
}

func (f *Function) validateOperand(o Operand) error {
	switch o.Kind {
	case KindImmediate:
		return nil
	case KindVariable:
		if o.Ref < 0 || o.Ref >= len(f.Vars) {
			return fmt.Errorf("variable ref %d outside [0,%d)", o.Ref, len(f.Vars))
		}
	case KindArgument:
		if o.Ref < 0 || o.Ref >= len(f.Args) {
			return fmt.Errorf("argument ref %d outside [0,%d)", o.Ref, len(f.Args))
		}
	case KindConstant:
		if o.Ref < 0 || o.Ref >= len(f.Constants) {
			return fmt.Errorf("constant ref %d outside [0,%d)", o.Ref, len(f.Constants))
		}
	case KindFunction:
		if o.Ref < 0 {
			return fmt.Errorf("negative function ref %d", o.Ref)
		}
	default:
		return fmt.Errorf("invalid operand kind %d", o.Kind)
	}
	return nil
}

// ReadJSON decodes a function list.
func ReadJSON(r io.Reader) ([]Function, error) {
	var fns []Function
	if err := json.NewDecoder(r).Decode(&fns); err != nil {
		return nil, err
	}
	return fns, nil
}

// WriteJSON encodes a function list, indented for readability.
func WriteJSON(w io.Writer, fns []Function) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fns)
}
