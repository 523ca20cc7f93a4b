package world

import (
	"errors"
	"fmt"

	"antics.dev/internal/sim/formica"
)

// ErrPCOutOfRange means an ant tried to fetch past the end of the program.
// Programs that do not loop back end this way.
var ErrPCOutOfRange = errors.New("program counter out of range")

var errUnknownOpcode = errors.New("unknown opcode")

// ExecError describes the ant that faulted and where.
type ExecError struct {
	Tick       uint64
	Ant        int
	PC         int
	ProgramLen int
	Err        error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("tick %d: ant %d: pc %d (program length %d): %v", e.Tick, e.Ant, e.PC, e.ProgramLen, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// outcome records what one instruction did, for tick statistics.
type outcome uint8

const (
	outNone outcome = iota
	outAdvanced
	outBlocked
	outPickedUp
	outPickupFailed
	outDropped
	outDropFailed
	outDeposited
	outErased
)

// exec runs exactly one instruction for a. The flag register follows the
// table below; jumps branch on it.
//
//	TURN_L/TURN_R, RELEASE_PH, ERASE_PH, JMP/JZ/JNZ  flag unchanged
//	ADVANCE, PICKUP, DROP                           1 on success, 0 on failure
//	CHECK_FOOD                                      food units on the cell
//	CHECK_PH                                        own colony's scent, 0 if none
//	CHECK_NEST                                      nest owner id, 0 if none
func (w *World) exec(idx int, a *Ant) (outcome, error) {
	in, ok := w.program.At(a.PC)
	if !ok {
		return outNone, &ExecError{Tick: w.tick.Load(), Ant: idx, PC: a.PC, ProgramLen: len(w.program), Err: ErrPCOutOfRange}
	}

	out := outNone
	next := a.PC + 1
	switch in.Op {
	case formica.OpTurnLeft:
		a.TurnLeft()
	case formica.OpTurnRight:
		a.TurnRight()
	case formica.OpAdvance:
		out = pick(a.Advance(w), outAdvanced, outBlocked)
		a.Flag = flagOf(out == outAdvanced)
	case formica.OpPickup:
		out = pick(a.Pickup(w), outPickedUp, outPickupFailed)
		a.Flag = flagOf(out == outPickedUp)
	case formica.OpDrop:
		out = pick(a.Drop(w), outDropped, outDropFailed)
		a.Flag = flagOf(out == outDropped)
	case formica.OpReleasePheromone:
		w.DepositPheromone(a.Pos, Pheromone{Scent: Scent(in.Scent()), Colony: a.Colony})
		out = outDeposited
	case formica.OpErasePheromone:
		w.ErasePheromone(a.Pos)
		out = outErased
	case formica.OpCheckFood:
		a.Flag = w.Food(a.Pos)
	case formica.OpCheckPheromone:
		a.Flag = 0
		if p, ok := w.PheromoneFor(a.Pos, a.Colony); ok {
			a.Flag = uint32(p.Scent)
		}
	case formica.OpCheckNest:
		a.Flag = 0
		if owner, ok := w.NestOwner(a.Pos); ok {
			a.Flag = uint32(owner)
		}
	case formica.OpJump:
		next = int(in.Target())
	case formica.OpJumpIfZero:
		if a.Flag == 0 {
			next = int(in.Target())
		}
	case formica.OpJumpIfNonZero:
		if a.Flag != 0 {
			next = int(in.Target())
		}
	default:
		return outNone, &ExecError{Tick: w.tick.Load(), Ant: idx, PC: a.PC, ProgramLen: len(w.program), Err: fmt.Errorf("%w: %d", errUnknownOpcode, in.Op)}
	}
	a.PC = next
	return out, nil
}

func flagOf(ok bool) uint32 {
	if ok {
		return 1
	}
	return 0
}

func pick(ok bool, yes, no outcome) outcome {
	if ok {
		return yes
	}
	return no
}
