package main

// peepAction names the five table-driven transformations plus the one
// conditional rule.
type peepAction int

const (
	actErasePrev peepAction = iota
	actEraseCur
	actEraseBoth
	actSwap
	actTailCall
	actEraseBothIfEqual
)

func pairKey(prev, cur Cmd) uint16 {
	return uint16(prev)<<8 | uint16(cur)
}

// peepTable is the authoritative pair-code -> action dispatch.
var peepTable = map[uint16]peepAction{
	pairKey(CmdADD, CmdSUB): actEraseBoth,
	pairKey(CmdSUB, CmdADD): actEraseBoth,
	pairKey(CmdNOT, CmdNOT): actEraseBoth,

	pairKey(CmdLDA, CmdLDA): actErasePrev,
	pairKey(CmdNOT, CmdLDA): actErasePrev,
	pairKey(CmdADD, CmdLDA): actErasePrev,
	pairKey(CmdSUB, CmdLDA): actErasePrev,

	pairKey(CmdLDB, CmdLDB): actErasePrev,
	pairKey(CmdMAB, CmdLDB): actErasePrev,
	pairKey(CmdLDB, CmdMAB): actErasePrev,

	pairKey(CmdAND, CmdAND): actEraseCur,
	pairKey(CmdMAB, CmdMAB): actEraseCur,
	pairKey(CmdJMP, CmdJMP): actEraseCur,
	pairKey(CmdJMP, CmdJPS): actEraseCur,
	pairKey(CmdJMP, CmdJPO): actEraseCur,
	pairKey(CmdJPS, CmdJPS): actEraseCur,
	pairKey(CmdJPO, CmdJPO): actEraseCur,
	pairKey(CmdRET, CmdRET): actEraseCur,
	pairKey(CmdRET, CmdCAL): actEraseCur,
	pairKey(CmdRET, CmdJMP): actEraseCur,
	pairKey(CmdHLT, CmdHLT): actEraseCur,
	pairKey(CmdHLT, CmdJMP): actEraseCur,

	pairKey(CmdRRA, CmdRLA): actEraseBothIfEqual,
	pairKey(CmdRLA, CmdRRA): actEraseBothIfEqual,

	pairKey(CmdLDB, CmdNOT): actSwap,

	pairKey(CmdCAL, CmdRET): actTailCall,
}

// peepStmt pairs a statement with a transient protection flag used only to
// drive the peephole scan; the flag travels with the statement through
// erasure exactly like the persistent Stmt.Ignore field would, but is
// discarded once the pass finishes (see DESIGN.md, "ignore" disambiguation).
type peepStmt struct {
	Stmt
	protected bool
}

// markRelativeProtected computes, for each statement, whether it sits
// within the covered interval of some RELATIVE statement and therefore
// must not be moved or erased by the scan.
func markRelativeProtected(stmts []peepStmt) {
	n := len(stmts)
	for p := 0; p < n; p++ {
		if stmts[p].Atyp != ATypRelative {
			continue
		}
		k := stmts[p].IntArg
		if k == 0 {
			stmts[p].protected = true
			continue
		}
		lo, hi := p, p+k
		if lo > hi {
			lo, hi = hi, lo
		}
		if k > 0 {
			hi++
		} else {
			lo--
		}
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		for i := lo; i <= hi; i++ {
			stmts[i].protected = true
		}
	}
}

// peepholeOptimize runs the peephole pass to a fixed point. trace, if
// non-nil, is called once per applied rewrite with the pair and the cursor
// position, for the "optimize <paircode> @ <position>" verbose line.
//
// LABEL-pseudos are transparent to pairing: the scan looks through them to
// find the nearest real `prev`/`cur` statements on either side, matching
// the reference peephole (which has no label awareness at all and pairs on
// raw adjacency in the underlying statement list). This is what allows the
// RET;JMP and RET;CAL rules to fire across an intervening label -- see
// DESIGN.md's "RET;CAL / RET;JMP reachability" note.
func peepholeOptimize(in []Stmt, trace func(prev, cur Cmd, pos int)) []Stmt {
	if len(in) < 2 {
		out := make([]Stmt, len(in))
		copy(out, in)
		return out
	}

	stmts := make([]peepStmt, len(in))
	for i, s := range in {
		stmts[i] = peepStmt{Stmt: s}
		if s.Ignore {
			stmts[i].protected = true
		}
	}
	markRelativeProtected(stmts)

	removeAt := func(idx int) {
		stmts = append(stmts[:idx], stmts[idx+1:]...)
	}

	for {
		changed := false
		i := 0
		for i < len(stmts) {
			if stmts[i].Cmd == CmdLABEL {
				i++
				continue
			}
			if stmts[i].protected {
				i++
				for i < len(stmts) && (stmts[i].protected || stmts[i].Cmd == CmdLABEL) {
					i++
				}
				if i >= len(stmts) {
					break
				}
				i++
				continue
			}

			j := i - 1
			for j >= 0 && stmts[j].Cmd == CmdLABEL {
				j--
			}
			if j < 0 || stmts[j].protected {
				i++
				continue
			}

			prev := stmts[j].Stmt
			cur := stmts[i].Stmt
			action, ok := peepTable[pairKey(prev.Cmd, cur.Cmd)]
			if !ok {
				i++
				continue
			}

			switch action {
			case actEraseBoth:
				if trace != nil {
					trace(prev.Cmd, cur.Cmd, i)
				}
				removeAt(i)
				removeAt(j)
				changed = true
				i = max1(j)
			case actErasePrev:
				if trace != nil {
					trace(prev.Cmd, cur.Cmd, i)
				}
				removeAt(j)
				changed = true
				i = max1(j)
			case actEraseCur:
				if trace != nil {
					trace(prev.Cmd, cur.Cmd, i)
				}
				removeAt(i)
				changed = true
			case actSwap:
				if trace != nil {
					trace(prev.Cmd, cur.Cmd, i)
				}
				stmts[j].Stmt, stmts[i].Stmt = stmts[i].Stmt, stmts[j].Stmt
				changed = true
				i++
			case actTailCall:
				if trace != nil {
					trace(prev.Cmd, cur.Cmd, i)
				}
				stmts[j].Cmd = CmdJMP
				removeAt(i)
				changed = true
			case actEraseBothIfEqual:
				if prev.IntArg == cur.IntArg {
					if trace != nil {
						trace(prev.Cmd, cur.Cmd, i)
					}
					removeAt(i)
					removeAt(j)
					changed = true
					i = max1(j)
				} else {
					i++
				}
			}
		}
		if !changed {
			break
		}
	}

	out := make([]Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = s.Stmt
	}
	return out
}

func max1(i int) int {
	if i < 1 {
		return 1
	}
	return i
}
