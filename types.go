package main

import "fmt"

// Cmd is the opcode space: sixteen real machine instructions plus the two
// pseudo-commands the assembler consumes internally.
type Cmd uint8

const (
	CmdDEF   Cmd = 0x01
	CmdLABEL Cmd = 0x02

	CmdLDA Cmd = 0x10
	CmdLDB Cmd = 0x11
	CmdMOV Cmd = 0x12
	CmdMAB Cmd = 0x13
	CmdADD Cmd = 0x14
	CmdSUB Cmd = 0x15
	CmdAND Cmd = 0x16
	CmdNOT Cmd = 0x17
	CmdJMP Cmd = 0x18
	CmdJPS Cmd = 0x19
	CmdJPO Cmd = 0x1A
	CmdCAL Cmd = 0x1B
	CmdRET Cmd = 0x1C
	CmdRRA Cmd = 0x1D
	CmdRLA Cmd = 0x1E
	CmdHLT Cmd = 0x1F
)

// AType classifies a statement's operand.
type AType int

const (
	ATypInvalid AType = iota
	ATypNone
	ATypAbsolute
	ATypRelative
	ATypIdconst
	ATypLabel
)

func (a AType) String() string {
	switch a {
	case ATypNone:
		return "NONE"
	case ATypAbsolute:
		return "ABSOLUTE"
	case ATypRelative:
		return "RELATIVE"
	case ATypIdconst:
		return "IDCONST"
	case ATypLabel:
		return "LABEL"
	default:
		return "INVALID"
	}
}

// Stmt is one line of the program: a command plus its typed operand.
//
// Invariants: when Atyp is ATypLabel, SymArg carries
// the name and IntArg is 0; when Atyp is one of Absolute/Relative/Idconst,
// SymArg is empty and IntArg carries the value; when Atyp is None, neither
// is meaningful. Ignore marks a statement the parser's trailing-`*` marker
// flagged as tolerated-but-unused; it is excluded from final cell numbering
// and output, independent of the peephole pass's own (transient) relative-
// addressing protection mask.
type Stmt struct {
	Cmd    Cmd
	Atyp   AType
	IntArg int
	SymArg string
	Ignore bool
}

func (s Stmt) String() string {
	switch s.Atyp {
	case ATypLabel:
		return fmt.Sprintf("%s %s", cmdName(s.Cmd), s.SymArg)
	case ATypNone:
		return cmdName(s.Cmd)
	default:
		return fmt.Sprintf("%s %d", cmdName(s.Cmd), s.IntArg)
	}
}
