package main

import (
	"fmt"
	"sort"
)

// findIdconstReuse scans the program for every distinct IDCONST value and,
// where a matching existing instruction encoding exists, records its cell
// index in labels under the synthetic name "$v". Values are
// processed in ascending order so reuse is deterministic across runs.
func findIdconstReuse(stmts []Stmt, labels map[string]int, warnf func(string, ...interface{})) {
	seen := map[int]bool{}
	var vals []int
	for _, s := range stmts {
		if s.Atyp == ATypIdconst && !seen[s.IntArg] {
			seen[s.IntArg] = true
			vals = append(vals, s.IntArg)
		}
	}
	sort.Ints(vals)
	for _, v := range vals {
		markIdconst(stmts, labels, v, warnf)
	}
}

func markIdconst(stmts []Stmt, labels map[string]int, value int, warnf func(string, ...interface{})) {
	hi := value >> 6
	lo := value & 0x3F
	candidate, ok := opcodeFromIndex(hi)
	if !ok {
		return
	}
	takesOperand := cmdHasOperand(candidate)
	if !takesOperand && lo != 0 {
		return
	}

	cellIdx := 0
	for _, s := range stmts {
		if s.Ignore {
			continue
		}
		if s.Cmd == candidate && s.Atyp == ATypAbsolute && (!takesOperand || s.IntArg == lo) {
			name := fmt.Sprintf("$%d", value)
			labels[name] = cellIdx
			if warnf != nil {
				warnf("optimize: re-use existing const %d @ %d", value, cellIdx)
			}
			return
		}
		cellIdx++
	}
}
