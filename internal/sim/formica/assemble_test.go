package formica

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_LoopProgram(t *testing.T) {
	prog, err := Assemble("loop:\nADVANCE\nTURN_L\nJMP loop\n")
	require.NoError(t, err)
	require.Equal(t, Program{Advance(), TurnLeft(), Jump(0)}, prog)
	assert.NoError(t, prog.Validate())
}

func TestAssemble_AllMnemonics(t *testing.T) {
	src := `
start:
	TURN_L
	TURN_R
	ADVANCE
	PICKUP
	DROP
	RELEASE_PH 7
	ERASE_PH
	CHECK_FOOD
	CHECK_PH
	CHECK_NEST
mid:
	JZ mid
	JNZ start
	JMP end
end:
	JMP start
`
	prog, err := Assemble(src)
	require.NoError(t, err)
	want := Program{
		TurnLeft(), TurnRight(), Advance(), Pickup(), Drop(),
		ReleasePheromone(7), ErasePheromone(),
		CheckFood(), CheckPheromone(), CheckNest(),
		JumpIfZero(10), JumpIfNonZero(0), Jump(13), Jump(0),
	}
	assert.Equal(t, want, prog)
}

func TestAssemble_ForwardAndStackedLabels(t *testing.T) {
	src := "JMP b\na:\nb:\nADVANCE\nJNZ a\n"
	prog, err := Assemble(src)
	require.NoError(t, err)
	assert.Equal(t, Program{Jump(1), Advance(), JumpIfNonZero(1)}, prog)
}

func TestAssemble_CommentsAndBlankLines(t *testing.T) {
	src := "; forager\n\n  top:   \n\tADVANCE ; step\n\n\tJMP top\n"
	prog, err := Assemble(src)
	require.NoError(t, err)
	assert.Equal(t, Program{Advance(), Jump(0)}, prog)
}

func TestAssemble_Empty(t *testing.T) {
	prog, err := Assemble("\n \n; nothing\n")
	require.NoError(t, err)
	assert.Empty(t, prog)
}

func TestAssemble_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
		line int
	}{
		{"undefined label", "ADVANCE\nJMP nowhere\n", ErrUndefinedLabel, 2},
		{"unknown mnemonic", "ADVANCE\nFLY\n", ErrUnknownMnemonic, 2},
		{"lower case mnemonic", "advance\n", ErrUnknownMnemonic, 1},
		{"missing scent", "RELEASE_PH\n", ErrMissingOperand, 1},
		{"missing label", "x:\nJZ\n", ErrMissingOperand, 2},
		{"scent not a number", "RELEASE_PH lots\n", ErrBadOperand, 1},
		{"scent negative", "RELEASE_PH -1\n", ErrBadOperand, 1},
		{"scent too large", "RELEASE_PH 256\n", ErrBadOperand, 1},
		{"extra operand", "ADVANCE now\n", ErrExtraOperand, 1},
		{"two jump targets", "a:\nJMP a a\n", ErrExtraOperand, 2},
		{"duplicate label", "a:\nADVANCE\na:\nTURN_L\n", ErrDuplicateLabel, 3},
		{"bad label", "1st:\nADVANCE\n", ErrBadLabel, 1},
		{"empty label", ":\n", ErrBadLabel, 1},
		{"label on instruction line", "loop: ADVANCE\n", ErrUnknownMnemonic, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prog, err := Assemble(tc.src)
			require.Error(t, err)
			assert.Nil(t, prog, "no partial program on failure")
			assert.ErrorIs(t, err, tc.want)

			var ae *AssemblyError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tc.line, ae.Line)
		})
	}
}

func TestMustAssemble_Panics(t *testing.T) {
	assert.Panics(t, func() { MustAssemble("JMP missing") })
	assert.NotPanics(t, func() { MustAssemble("a:\nJMP a") })
}

func TestDisassemble_RoundTrip(t *testing.T) {
	progs := []Program{
		{Advance(), TurnLeft(), Jump(0)},
		{CheckFood(), JumpIfZero(4), Pickup(), ReleasePheromone(3), Jump(0)},
		{JumpIfNonZero(2), Drop(), ErasePheromone(), CheckNest(), CheckPheromone(), TurnRight(), Jump(6)},
		{},
	}
	for _, p := range progs {
		text := Disassemble(p)
		back, err := Assemble(text)
		require.NoError(t, err, text)
		if len(p) == 0 {
			assert.Empty(t, back)
			continue
		}
		assert.Equal(t, p, back, text)
		assert.Equal(t, p.Digest(), back.Digest())
	}
}

func TestDisassemble_TargetsPastTheEnd(t *testing.T) {
	p := Program{CheckFood(), JumpIfZero(9), Jump(2), Jump(40)}
	text := Disassemble(p)
	assert.Contains(t, text, "L9:\n")
	assert.Contains(t, text, "L40:\n")

	back, err := Assemble(text)
	require.NoError(t, err, text)
	require.Len(t, back, len(p))
	assert.Equal(t, Program{CheckFood(), JumpIfZero(4), Jump(2), Jump(4)}, back)
	assert.Error(t, back.Validate())
}

func TestProgram_Validate(t *testing.T) {
	assert.NoError(t, Program{Advance(), Jump(0)}.Validate())
	assert.Error(t, Program{Advance(), Jump(2)}.Validate())
	assert.Error(t, Program{{Op: OpAdvance, Arg: 1}}.Validate())
	assert.Error(t, Program{{Op: numOpcodes}}.Validate())
	assert.Error(t, Program{{Op: OpReleasePheromone, Arg: 300}}.Validate())

	// A trailing label assembles but jumps off the end.
	p, err := Assemble("JMP end\nend:\n")
	require.NoError(t, err)
	assert.Equal(t, Program{Jump(1)}, p)
	assert.Error(t, p.Validate())
}

func TestProgram_At(t *testing.T) {
	p := Program{Advance()}
	in, ok := p.At(0)
	assert.True(t, ok)
	assert.Equal(t, Advance(), in)
	_, ok = p.At(1)
	assert.False(t, ok)
	_, ok = p.At(-1)
	assert.False(t, ok)
}

func TestInstruction_String(t *testing.T) {
	assert.Equal(t, "ADVANCE", Advance().String())
	assert.Equal(t, "RELEASE_PH 9", ReleasePheromone(9).String())
	assert.Equal(t, "JNZ @4", JumpIfNonZero(4).String())
	assert.Equal(t, "Opcode(200)", Opcode(200).String())

	for op := OpTurnLeft; op < numOpcodes; op++ {
		got, ok := LookupMnemonic(op.Mnemonic())
		require.True(t, ok, op.Mnemonic())
		assert.Equal(t, op, got)
	}
}
