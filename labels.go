package main

import "fmt"

// ResolveLabels builds the label map (consuming LABEL-pseudos
// and converting RELATIVE to ABSOLUTE), resolves labels, reuses id-constant
// reuse, and trailing DEF materialization. The returned sequence contains
// no LABEL-pseudos (DEF cells, including materialized constants, remain); Ignore-flagged
// statements remain attached but are excluded from the cell numbering,
// matching the writer's own addressing.
func ResolveLabels(stmts []Stmt, enableIdconst bool, warnf func(string, ...interface{})) ([]Stmt, error) {
	labels := make(map[string]int)
	out := make([]Stmt, 0, len(stmts))
	cellCount := 0

	for _, s := range stmts {
		if s.Cmd == CmdLABEL {
			labels[s.SymArg] = cellCount
			continue
		}
		if s.Atyp == ATypRelative {
			s.IntArg += cellCount
			s.Atyp = ATypAbsolute
		}
		if s.Atyp == ATypLabel {
			if idx, ok := labels[s.SymArg]; ok {
				s.Atyp = ATypAbsolute
				s.IntArg = idx
				s.SymArg = ""
			}
		}
		out = append(out, s)
		if !s.Ignore {
			cellCount++
		}
	}

	for i, s := range out {
		if s.Atyp != ATypLabel {
			continue
		}
		idx, ok := labels[s.SymArg]
		if !ok {
			return nil, fmt.Errorf("undefined label '%s' @ cmd %s", s.SymArg, cmdName(s.Cmd))
		}
		out[i].Atyp = ATypAbsolute
		out[i].IntArg = idx
		out[i].SymArg = ""
	}

	if enableIdconst {
		findIdconstReuse(out, labels, warnf)
	}

	var newConsts []int
	for i, s := range out {
		if s.Atyp != ATypIdconst {
			continue
		}
		name := fmt.Sprintf("$%d", s.IntArg)
		idx, ok := labels[name]
		if !ok {
			idx = cellCount + len(newConsts)
			labels[name] = idx
			newConsts = append(newConsts, s.IntArg)
		}
		out[i].Atyp = ATypAbsolute
		out[i].IntArg = idx
	}

	for _, v := range newConsts {
		out = append(out, Stmt{Cmd: CmdDEF, Atyp: ATypAbsolute, IntArg: v})
	}

	return out, nil
}
