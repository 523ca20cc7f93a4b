// Package formica defines the Formica instruction set run by ants and the
// two-pass assembler that turns program text into it.
package formica

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

type Opcode uint8

const (
	OpTurnLeft Opcode = iota
	OpTurnRight
	OpAdvance
	OpPickup
	OpDrop
	OpReleasePheromone
	OpErasePheromone
	OpCheckFood
	OpCheckPheromone
	OpCheckNest
	OpJump
	OpJumpIfZero
	OpJumpIfNonZero

	numOpcodes
)

// Operand describes what, if anything, follows a mnemonic.
type Operand uint8

const (
	OperandNone Operand = iota
	OperandScent
	OperandLabel
)

type opInfo struct {
	mnemonic string
	operand  Operand
}

var opTable = [numOpcodes]opInfo{
	OpTurnLeft:         {"TURN_L", OperandNone},
	OpTurnRight:        {"TURN_R", OperandNone},
	OpAdvance:          {"ADVANCE", OperandNone},
	OpPickup:           {"PICKUP", OperandNone},
	OpDrop:             {"DROP", OperandNone},
	OpReleasePheromone: {"RELEASE_PH", OperandScent},
	OpErasePheromone:   {"ERASE_PH", OperandNone},
	OpCheckFood:        {"CHECK_FOOD", OperandNone},
	OpCheckPheromone:   {"CHECK_PH", OperandNone},
	OpCheckNest:        {"CHECK_NEST", OperandNone},
	OpJump:             {"JMP", OperandLabel},
	OpJumpIfZero:       {"JZ", OperandLabel},
	OpJumpIfNonZero:    {"JNZ", OperandLabel},
}

var byMnemonic = func() map[string]Opcode {
	m := make(map[string]Opcode, numOpcodes)
	for op, info := range opTable {
		m[info.mnemonic] = Opcode(op)
	}
	return m
}()

func (op Opcode) Valid() bool { return op < numOpcodes }

func (op Opcode) Mnemonic() string {
	if !op.Valid() {
		return ""
	}
	return opTable[op].mnemonic
}

func (op Opcode) Operand() Operand {
	if !op.Valid() {
		return OperandNone
	}
	return opTable[op].operand
}

func (op Opcode) IsJump() bool { return op.Operand() == OperandLabel }

func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(%d)", uint8(op))
	}
	return opTable[op].mnemonic
}

// LookupMnemonic is case-sensitive; mnemonics are upper case.
func LookupMnemonic(s string) (Opcode, bool) {
	op, ok := byMnemonic[s]
	return op, ok
}

// Address is an absolute index into a Program.
type Address uint32

// Instruction is one decoded Formica instruction. Arg holds the scent for
// RELEASE_PH and the target address for jumps; it is zero otherwise.
type Instruction struct {
	Op  Opcode `json:"op"`
	Arg uint32 `json:"arg,omitempty"`
}

func TurnLeft() Instruction       { return Instruction{Op: OpTurnLeft} }
func TurnRight() Instruction      { return Instruction{Op: OpTurnRight} }
func Advance() Instruction        { return Instruction{Op: OpAdvance} }
func Pickup() Instruction         { return Instruction{Op: OpPickup} }
func Drop() Instruction           { return Instruction{Op: OpDrop} }
func ErasePheromone() Instruction { return Instruction{Op: OpErasePheromone} }
func CheckFood() Instruction      { return Instruction{Op: OpCheckFood} }
func CheckPheromone() Instruction { return Instruction{Op: OpCheckPheromone} }
func CheckNest() Instruction      { return Instruction{Op: OpCheckNest} }

func ReleasePheromone(scent uint8) Instruction {
	return Instruction{Op: OpReleasePheromone, Arg: uint32(scent)}
}

func Jump(to Address) Instruction          { return Instruction{Op: OpJump, Arg: uint32(to)} }
func JumpIfZero(to Address) Instruction    { return Instruction{Op: OpJumpIfZero, Arg: uint32(to)} }
func JumpIfNonZero(to Address) Instruction { return Instruction{Op: OpJumpIfNonZero, Arg: uint32(to)} }

func (in Instruction) Scent() uint8 { return uint8(in.Arg) }

func (in Instruction) Target() Address { return Address(in.Arg) }

func (in Instruction) String() string {
	switch in.Op.Operand() {
	case OperandScent:
		return in.Op.Mnemonic() + " " + strconv.Itoa(int(in.Scent()))
	case OperandLabel:
		return in.Op.Mnemonic() + " @" + strconv.FormatUint(uint64(in.Arg), 10)
	default:
		return in.Op.String()
	}
}

// Program is an assembled, immutable instruction sequence shared by every
// ant in a world.
type Program []Instruction

func (p Program) Len() int { return len(p) }

// At fetches the instruction at pc. ok is false when pc is outside the program.
func (p Program) At(pc int) (Instruction, bool) {
	if pc < 0 || pc >= len(p) {
		return Instruction{}, false
	}
	return p[pc], true
}

// Validate checks opcodes, scent ranges and that every jump lands inside the
// program. A label placed after the last instruction assembles fine but
// fails here, since jumping to it runs off the end.
func (p Program) Validate() error {
	for i, in := range p {
		if !in.Op.Valid() {
			return fmt.Errorf("instruction %d: invalid opcode %d", i, in.Op)
		}
		switch in.Op.Operand() {
		case OperandScent:
			if in.Arg > 0xff {
				return fmt.Errorf("instruction %d: scent %d out of range", i, in.Arg)
			}
		case OperandLabel:
			if int(in.Arg) >= len(p) {
				return fmt.Errorf("instruction %d: %s target %d outside program of %d", i, in.Op, in.Arg, len(p))
			}
		default:
			if in.Arg != 0 {
				return fmt.Errorf("instruction %d: %s takes no operand", i, in.Op)
			}
		}
	}
	return nil
}

// Digest identifies a program by content.
func (p Program) Digest() string {
	h := sha256.New()
	for _, in := range p {
		h.Write([]byte{byte(in.Op), byte(in.Arg), byte(in.Arg >> 8), byte(in.Arg >> 16), byte(in.Arg >> 24)})
	}
	return hex.EncodeToString(h.Sum(nil))
}
