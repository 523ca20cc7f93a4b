package formica

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownMnemonic = errors.New("unknown mnemonic")
	ErrMissingOperand  = errors.New("missing operand")
	ErrBadOperand      = errors.New("malformed operand")
	ErrExtraOperand    = errors.New("unexpected operand")
	ErrUndefinedLabel  = errors.New("undefined label")
	ErrDuplicateLabel  = errors.New("duplicate label")
	ErrBadLabel        = errors.New("invalid label name")
)

// AssemblyError pins a failure to its 1-based source line.
type AssemblyError struct {
	Line int
	Text string
	Err  error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("formica: line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// CommentPrefix starts a comment that runs to the end of the line.
const CommentPrefix = ";"

type sourceLine struct {
	num   int
	text  string
	label string // set on label definitions
}

// Assemble translates Formica source into a Program.
//
// Pass one binds every "name:" line to the address of the next instruction.
// Pass two decodes the remaining lines, resolving jump labels through that
// table. Blank lines and comments occupy no address. Any error aborts the
// whole run and no program is returned.
func Assemble(src string) (Program, error) {
	lines, err := scan(src)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]Address)
	var next Address
	for _, ln := range lines {
		if ln.label == "" {
			next++
			continue
		}
		if _, dup := labels[ln.label]; dup {
			return nil, &AssemblyError{Line: ln.num, Text: ln.text, Err: fmt.Errorf("%w: %s", ErrDuplicateLabel, ln.label)}
		}
		labels[ln.label] = next
	}

	prog := make(Program, 0, int(next))
	for _, ln := range lines {
		if ln.label != "" {
			continue
		}
		in, err := decode(ln.text, labels)
		if err != nil {
			return nil, &AssemblyError{Line: ln.num, Text: ln.text, Err: err}
		}
		prog = append(prog, in)
	}
	return prog, nil
}

// MustAssemble panics on error. Meant for programs fixed at compile time.
func MustAssemble(src string) Program {
	p, err := Assemble(src)
	if err != nil {
		panic(err)
	}
	return p
}

func scan(src string) ([]sourceLine, error) {
	var out []sourceLine
	for i, raw := range strings.Split(src, "\n") {
		text := raw
		if j := strings.Index(text, CommentPrefix); j >= 0 {
			text = text[:j]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		ln := sourceLine{num: i + 1, text: text}
		if name, ok := strings.CutSuffix(text, ":"); ok {
			name = strings.TrimSpace(name)
			if !isIdent(name) {
				return nil, &AssemblyError{Line: ln.num, Text: text, Err: fmt.Errorf("%w: %q", ErrBadLabel, name)}
			}
			ln.label = name
		}
		out = append(out, ln)
	}
	return out, nil
}

func decode(text string, labels map[string]Address) (Instruction, error) {
	fields := strings.Fields(text)
	op, ok := LookupMnemonic(fields[0])
	if !ok {
		return Instruction{}, fmt.Errorf("%w: %s", ErrUnknownMnemonic, fields[0])
	}

	want := 0
	if op.Operand() != OperandNone {
		want = 1
	}
	switch {
	case len(fields)-1 < want:
		return Instruction{}, fmt.Errorf("%w: %s", ErrMissingOperand, op)
	case len(fields)-1 > want:
		return Instruction{}, fmt.Errorf("%w: %s %s", ErrExtraOperand, op, strings.Join(fields[1+want:], " "))
	}

	switch op.Operand() {
	case OperandScent:
		v, err := strconv.ParseUint(fields[1], 10, 8)
		if err != nil {
			return Instruction{}, fmt.Errorf("%w: scent %q must be an integer in 0..255", ErrBadOperand, fields[1])
		}
		return Instruction{Op: op, Arg: uint32(v)}, nil
	case OperandLabel:
		name := fields[1]
		if !isIdent(name) {
			return Instruction{}, fmt.Errorf("%w: label %q", ErrBadOperand, name)
		}
		addr, ok := labels[name]
		if !ok {
			return Instruction{}, fmt.Errorf("%w: %s", ErrUndefinedLabel, name)
		}
		return Instruction{Op: op, Arg: uint32(addr)}, nil
	}
	return Instruction{Op: op}, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
