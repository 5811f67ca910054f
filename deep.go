package main

import (
	"fmt"
	"sort"
)

// blockID is a stable index into a deepOptimizer's block pool. There are no
// pointers in this graph; an exit edge is just a blockID, and noBlock is its zero-ish
// "unset" value.
type blockID int

const noBlock blockID = -1

// block is one basic block of the control-flow graph built by the deep
// pass. dead tombstones a destroyed block without renumbering the pool, so
// every other block's edges stay valid indices.
type block struct {
	entryLabels  []string
	entryCount   int
	isJumpTarget bool
	exitNorm     blockID
	exitOvfl     blockID
	exitSign     blockID
	body         []Stmt
	dead         bool
}

func newBlock() *block {
	return &block{exitNorm: noBlock, exitOvfl: noBlock, exitSign: noBlock}
}

func (b *block) isEmpty() bool {
	return b.exitNorm == noBlock && b.exitOvfl == noBlock && b.exitSign == noBlock && len(b.body) == 0
}

// deepOptimizer owns the block pool for one run of the CFG pass.
type deepOptimizer struct {
	blocks []*block
	anonID int
	warnf  func(string, ...interface{})
	tracef func(string, ...interface{})
}

func (d *deepOptimizer) curID() blockID { return blockID(len(d.blocks) - 1) }
func (d *deepOptimizer) cur() *block    { return d.blocks[d.curID()] }

func (d *deepOptimizer) appendBlock() blockID {
	d.blocks = append(d.blocks, newBlock())
	return d.curID()
}

// unrefExit decrements the entry count of the block *exit points at (if
// any), reports an internal error if it was already zero, and
// clears *exit.
func (d *deepOptimizer) unrefExit(exit *blockID) {
	if *exit == noBlock {
		return
	}
	t := d.blocks[*exit]
	if t.entryCount == 0 {
		d.warnf("optimize_deep: got illegal state '!entry_count'")
	} else {
		t.entryCount--
	}
	*exit = noBlock
}

func (d *deepOptimizer) destroyBlock(id blockID) {
	b := d.blocks[id]
	if b.dead {
		return
	}
	b.dead = true
	d.unrefExit(&b.exitNorm)
	d.unrefExit(&b.exitOvfl)
	d.unrefExit(&b.exitSign)
}

func (d *deepOptimizer) liveCount() int {
	n := 0
	for _, b := range d.blocks {
		if !b.dead {
			n++
		}
	}
	return n
}

// init builds the CFG by walking the linear statement list once.
func (d *deepOptimizer) init(stmts []Stmt) {
	excJmp := map[string][]blockID{}
	excJpo := map[string][]blockID{}
	excJps := map[string][]blockID{}
	excDests := map[string][]blockID{}

	d.blocks = append(d.blocks, newBlock())
	d.blocks[0].entryCount = 1
	d.blocks[0].isJumpTarget = true

	for _, s := range stmts {
		switch s.Cmd {
		case CmdLABEL:
			cur := d.cur()
			if !cur.isEmpty() {
				nb := d.appendBlock()
				if cur.exitNorm == noBlock {
					cur.exitNorm = nb
					d.blocks[nb].entryCount++
				}
			}
			cur = d.cur()
			excDests[s.SymArg] = append(excDests[s.SymArg], d.curID())
			cur.entryLabels = append(cur.entryLabels, s.SymArg)
		case CmdJMP:
			excJmp[s.SymArg] = append(excJmp[s.SymArg], d.curID())
			d.appendBlock()
		case CmdJPS:
			prevID := d.curID()
			excJps[s.SymArg] = append(excJps[s.SymArg], prevID)
			nb := d.appendBlock()
			prev := d.blocks[prevID]
			if prev.exitNorm == noBlock {
				prev.exitNorm = nb
				d.blocks[nb].entryCount++
			}
		case CmdJPO:
			prevID := d.curID()
			excJpo[s.SymArg] = append(excJpo[s.SymArg], prevID)
			nb := d.appendBlock()
			prev := d.blocks[prevID]
			if prev.exitNorm == noBlock {
				prev.exitNorm = nb
				d.blocks[nb].entryCount++
			}
		case CmdHLT:
			d.cur().exitNorm = noBlock
			d.appendBlock()
		default:
			d.cur().body = append(d.cur().body, s)
		}
	}

	for _, b := range d.blocks {
		if len(b.entryLabels) == 0 {
			b.entryLabels = append(b.entryLabels, fmt.Sprintf("%%%d", d.anonID))
			d.anonID++
		}
		for _, s := range b.body {
			if s.Atyp != ATypLabel {
				continue
			}
			if dests := excDests[s.SymArg]; len(dests) > 0 {
				d.blocks[dests[0]].entryCount++
			}
		}
	}

	resolve := func(sources []blockID, dest blockID, set func(*block, blockID)) {
		if len(sources) == 0 {
			return
		}
		anyJT := false
		for _, sid := range sources {
			b := d.blocks[sid]
			if b.isJumpTarget {
				anyJT = true
			}
			set(b, dest)
		}
		d.blocks[dest].entryCount += len(sources)
		d.blocks[dest].isJumpTarget = anyJT
	}

	names := make([]string, 0, len(excDests))
	for name := range excDests {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		dests := excDests[name]
		if len(dests) != 1 {
			d.warnf("optimize_deep: got redefinition of label '%s' (%d times)", name, len(dests))
		}
		if len(dests) == 0 {
			continue
		}
		jmpdest := dests[len(dests)-1]
		resolve(excJmp[name], jmpdest, func(b *block, t blockID) { b.exitNorm = t })
		resolve(excJpo[name], jmpdest, func(b *block, t blockID) { b.exitOvfl = t })
		resolve(excJps[name], jmpdest, func(b *block, t blockID) { b.exitSign = t })
	}
}

// run performs one local-simplification scan, splicing each block's
// straight-line successor into it when that block is the successor's only
// predecessor.
func (d *deepOptimizer) run() {
	for _, b := range d.blocks {
		if b.dead {
			continue
		}
		if b.exitNorm == noBlock || b.exitOvfl != noBlock || b.exitSign != noBlock {
			continue
		}
		other := d.blocks[b.exitNorm]
		if other.dead || other.entryCount != 1 {
			continue
		}

		if d.tracef != nil {
			d.tracef("optimize_deep: merging block into sole predecessor")
		}

		b.body = append(b.body, other.body...)
		other.body = nil

		// Adopt other's exits as a pure ownership transfer: the edge
		// count at each target is unchanged (one source replaces
		// another), so the targets are not touched here. other's own
		// copies are cleared so its later destruction (entry_count is
		// about to drop to 0 below) does not double-unref them.
		b.exitOvfl, other.exitOvfl = other.exitOvfl, noBlock
		b.exitSign, other.exitSign = other.exitSign, noBlock

		d.unrefExit(&b.exitNorm)
		b.exitNorm = other.exitNorm
		other.exitNorm = noBlock
	}
}

// cleanup drops every block whose entry_count has reached zero.
func (d *deepOptimizer) cleanup() {
	var dead []blockID
	for id, b := range d.blocks {
		if !b.dead && b.entryCount == 0 {
			dead = append(dead, blockID(id))
		}
	}
	for _, id := range dead {
		d.destroyBlock(id)
	}
}

// fini re-linearizes the surviving blocks.
func (d *deepOptimizer) fini() []Stmt {
	var live []blockID
	for id, b := range d.blocks {
		if !b.dead {
			live = append(live, blockID(id))
		}
	}

	mark := func(id blockID) {
		if id != noBlock {
			d.blocks[id].isJumpTarget = true
		}
	}
	for _, id := range live {
		b := d.blocks[id]
		if b.isJumpTarget {
			mark(b.exitOvfl)
			mark(b.exitSign)
			mark(b.exitNorm)
		}
	}

	var out []Stmt
	for idx, id := range live {
		b := d.blocks[id]
		for _, lbl := range b.entryLabels {
			out = append(out, Stmt{Cmd: CmdLABEL, Atyp: ATypLabel, SymArg: lbl})
		}
		out = append(out, b.body...)
		if b.exitOvfl != noBlock {
			out = append(out, Stmt{Cmd: CmdJPO, Atyp: ATypLabel, SymArg: d.blocks[b.exitOvfl].entryLabels[0]})
		}
		if b.exitSign != noBlock {
			out = append(out, Stmt{Cmd: CmdJPS, Atyp: ATypLabel, SymArg: d.blocks[b.exitSign].entryLabels[0]})
		}
		if b.exitNorm == noBlock {
			if b.isJumpTarget {
				out = append(out, Stmt{Cmd: CmdHLT, Atyp: ATypNone})
			}
		} else {
			var next blockID = noBlock
			if idx+1 < len(live) {
				next = live[idx+1]
			}
			if next != b.exitNorm {
				out = append(out, Stmt{Cmd: CmdJMP, Atyp: ATypLabel, SymArg: d.blocks[b.exitNorm].entryLabels[0]})
			}
		}
	}
	return out
}

// optimizeDeep runs the full CFG pass: init, then Run+Cleanup to a fixed
// point, then Fini.
func optimizeDeep(stmts []Stmt, warnf, tracef func(string, ...interface{})) []Stmt {
	d := &deepOptimizer{warnf: warnf, tracef: tracef}
	d.init(stmts)
	d.cleanup()
	for {
		before := d.liveCount()
		d.run()
		d.cleanup()
		if d.liveCount() == before {
			break
		}
	}
	return d.fini()
}
