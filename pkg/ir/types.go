// Package ir defines a small three-address intermediate representation:
// typed variables, tagged operands, and functions as flat opcode
// sequences. Jump targets are instruction indices into the containing
// function, not a separate label space.
package ir

import "fmt"

// Type is a value type tag.
type Type uint8

const (
	Void Type = iota
	U64
	I64
	U32
	I32
	U16
	I16
	U8
	I8
	F64
	F32
	Struct
)

var typeNames = [...]string{
	"void", "u64", "i64", "u32", "i32", "u16", "i16", "u8", "i8", "f64", "f32", "struct",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// TypeInfo describes a value's type. SubType carries the pointee or
// element type where applicable; StructSize the byte size of Struct
// values.
type TypeInfo struct {
	Type       Type `json:"type"`
	SubType    Type `json:"sub_type,omitempty"`
	StructSize int  `json:"struct_size,omitempty"`
}

// OperandKind tags what an operand's payload refers to.
type OperandKind uint8

const (
	KindImmediate OperandKind = iota
	KindVariable
	KindArgument
	KindConstant
	KindFunction
)

var kindNames = [...]string{"imm", "var", "arg", "const", "fn"}

func (k OperandKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Operand flags.
const (
	// FlagAddress marks that the operand's address is taken rather
	// than its value.
	FlagAddress uint8 = 1 << 0
	// FlagDereference marks that the operand is read or written
	// through as a pointer.
	FlagDereference uint8 = 1 << 1
)

// Operand is one slot of an opcode. Imm holds immediate payloads; Ref
// indexes the containing function's variable, argument, constant or
// function table — or, in a jump's target slot, the destination
// instruction index.
type Operand struct {
	Kind  OperandKind `json:"kind"`
	Flags uint8       `json:"flags,omitempty"`
	Imm   int64       `json:"imm,omitempty"`
	FImm  float64     `json:"fimm,omitempty"`
	Ref   int         `json:"ref,omitempty"`
}

// Imm builds an immediate operand.
func Imm(v int64) Operand { return Operand{Kind: KindImmediate, Imm: v} }

// Var builds a variable reference.
func Var(id int) Operand { return Operand{Kind: KindVariable, Ref: id} }

// VarAddr builds an address-of-variable reference.
func VarAddr(id int) Operand {
	return Operand{Kind: KindVariable, Ref: id, Flags: FlagAddress}
}

// Arg builds an argument reference.
func Arg(id int) Operand { return Operand{Kind: KindArgument, Ref: id} }

// Const builds a constant-table reference.
func Const(id int) Operand { return Operand{Kind: KindConstant, Ref: id} }

// FuncRef builds a function reference.
func FuncRef(id int) Operand { return Operand{Kind: KindFunction, Ref: id} }

// Target builds a jump-target operand holding an instruction index.
func Target(index int) Operand { return Operand{Kind: KindImmediate, Ref: index} }

// IsVariable reports whether the operand refers to a variable.
func (o Operand) IsVariable() bool { return o.Kind == KindVariable }

// TakesAddress reports whether the operand takes a variable's address.
func (o Operand) TakesAddress() bool {
	return o.Kind == KindVariable && o.Flags&FlagAddress != 0
}

func (o Operand) String() string {
	switch o.Kind {
	case KindImmediate:
		return fmt.Sprintf("#%d", o.Imm)
	case KindVariable:
		if o.Flags&FlagAddress != 0 {
			return fmt.Sprintf("&v%d", o.Ref)
		}
		if o.Flags&FlagDereference != 0 {
			return fmt.Sprintf("*v%d", o.Ref)
		}
		return fmt.Sprintf("v%d", o.Ref)
	case KindArgument:
		return fmt.Sprintf("a%d", o.Ref)
	case KindConstant:
		return fmt.Sprintf("c%d", o.Ref)
	case KindFunction:
		return fmt.Sprintf("f%d", o.Ref)
	}
	return "?"
}
