package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrInternalState is "internal error: impossible state": a
// statement reached the writer with an operand type other than NONE or
// ABSOLUTE, which the label pipeline should never produce. The driver maps
// this to exit code 2.
var ErrInternalState = errors.New("internal error: impossible state")

// WriteProgram emits one line per remaining (non-ignored) statement:
// "<index> <MNEMONIC>[ <arg>]". unix2dos precedes each newline
// with a carriage return.
func WriteProgram(w io.Writer, stmts []Stmt, unix2dos bool) error {
	bw := bufio.NewWriter(w)
	nl := "\n"
	if unix2dos {
		nl = "\r\n"
	}

	index := 0
	for _, s := range stmts {
		if s.Ignore {
			continue
		}
		if s.Atyp != ATypNone && s.Atyp != ATypAbsolute {
			return ErrInternalState
		}
		var err error
		if s.Atyp == ATypAbsolute {
			_, err = fmt.Fprintf(bw, "%d %s %d%s", index, cmdName(s.Cmd), s.IntArg, nl)
		} else {
			_, err = fmt.Fprintf(bw, "%d %s%s", index, cmdName(s.Cmd), nl)
		}
		if err != nil {
			return err
		}
		index++
	}
	return bw.Flush()
}
