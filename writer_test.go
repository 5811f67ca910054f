package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProgram_LineFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteProgram(&buf, []Stmt{abs(CmdLDA, 5), none(CmdHLT)}, false)
	require.NoError(t, err)
	assert.Equal(t, "0 LDA 5\n1 HLT\n", buf.String())
}

func TestWriteProgram_SkipsIgnoredStatementsAndRenumbers(t *testing.T) {
	var buf bytes.Buffer
	stmts := []Stmt{
		{Cmd: CmdLDA, Atyp: ATypAbsolute, IntArg: 9, Ignore: true},
		abs(CmdLDA, 1),
		none(CmdHLT),
	}
	err := WriteProgram(&buf, stmts, false)
	require.NoError(t, err)
	assert.Equal(t, "0 LDA 1\n1 HLT\n", buf.String())
}

func TestWriteProgram_Unix2DosInsertsCRBeforeLF(t *testing.T) {
	var buf bytes.Buffer
	err := WriteProgram(&buf, []Stmt{none(CmdHLT)}, true)
	require.NoError(t, err)
	assert.Equal(t, "0 HLT\r\n", buf.String())
}

func TestWriteProgram_ImpossibleStateReturnsErrInternalState(t *testing.T) {
	var buf bytes.Buffer
	stmts := []Stmt{{Cmd: CmdJMP, Atyp: ATypLabel, SymArg: "unresolved"}}
	err := WriteProgram(&buf, stmts, false)
	assert.ErrorIs(t, err, ErrInternalState)
}
