package main

import (
	"io"
	"log"
	"os"
)

// Diag is the single diagnostic sink: a trace stream gated by -v,
// and an always-on warning stream for structural defects (duplicate
// labels, CFG decrement-at-zero). Both use a bare *log.Logger with no
// prefix and no timestamp, matching the reference assemblers' plain
// stderr writes, since this tool's diagnostic output is meant to be
// compared byte-for-byte in scripts.
type Diag struct {
	trace *log.Logger
	warn  *log.Logger
}

func NewDiag(verbose bool) *Diag {
	sink := io.Writer(io.Discard)
	if verbose {
		sink = os.Stderr
	}
	return &Diag{
		trace: log.New(sink, "", 0),
		warn:  log.New(os.Stderr, "", 0),
	}
}

func (d *Diag) Tracef(format string, args ...interface{}) {
	d.trace.Printf(format, args...)
}

func (d *Diag) Warnf(format string, args ...interface{}) {
	d.warn.Printf(format, args...)
}
