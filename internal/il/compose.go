package il

// Shift returns a copy of b with every slot reference remapped to s + k,
// the "slot-shifted" embedding step of spec.md §4.6: a constraint block
// defined over THIS_SLOT (config.THISSlot) becomes usable at whatever slot
// the embedding context actually allocated for the value under test.
func Shift(b *Block, k int) *Block {
	out := &Block{NumSlots: b.NumSlots + k, Entries: make([]Entry, len(b.Entries))}
	for i, e := range b.Entries {
		out.Entries[i] = Entry{Op: shiftOp(e.Op, k), Attr: e.Attr, Comment: e.Comment}
	}
	return out
}

func shiftOp(op Op, k int) Op {
	switch op.Kind {
	case OpLoad, OpStore, OpUpdate:
		op.Slot += k
	case OpIfType:
		op.Slot += k
	case OpForAll:
		op.Slot += k
		op.Slot2 += k
	}
	if len(op.Modified) > 0 {
		shifted := make([]int, len(op.Modified))
		for i, s := range op.Modified {
			shifted[i] = s + k
		}
		op.Modified = shifted
	}
	return op
}

// Relabel returns a copy of b with every label it defines (and every
// reference to one of those labels) replaced by a freshly minted name, so
// that embedding the same constraint block twice in one Module can never
// collide (spec.md §4.6 "every label gets a fresh unique name").
func Relabel(b *Block, prefix string) *Block {
	rename := make(map[string]string)
	for _, l := range b.Labels() {
		rename[l] = NewLabel(prefix)
	}
	remap := func(s string) string {
		if s == "" {
			return s
		}
		if r, ok := rename[s]; ok {
			return r
		}
		return s
	}

	out := &Block{NumSlots: b.NumSlots, Entries: make([]Entry, len(b.Entries))}
	for i, e := range b.Entries {
		op := e.Op
		switch op.Kind {
		case OpLabel:
			op.Label = remap(op.Label)
		case OpGoto, OpIfGoto, OpIfType, OpAssert, OpEnd:
			op.Target = remap(op.Target)
		case OpForAll, OpLoop:
			op.End = remap(op.End)
		case OpTryCatch:
			op.End = remap(op.End)
			handlers := make([]CatchHandler, len(op.Handlers))
			for j, h := range op.Handlers {
				handlers[j] = CatchHandler{TypeName: h.TypeName, Label: remap(h.Label)}
			}
			op.Handlers = handlers
		case OpSwitch:
			op.Default = remap(op.Default)
			cases := make([]SwitchCase, len(op.Cases))
			for j, c := range op.Cases {
				cases[j] = SwitchCase{Value: c.Value, Label: remap(c.Label)}
			}
			op.Cases = cases
		}
		out.Entries[i] = Entry{Op: op, Attr: e.Attr, Comment: e.Comment}
	}
	return out
}

// Chain rewrites every Fail entry in b into a Goto(target), so a failing
// branch of a composed constraint (e.g. one arm of a union type's check)
// falls through to try the next arm instead of aborting the whole check
// (spec.md §4.6 "used in union-type constraints where failure of one
// branch must not be fatal").
func Chain(b *Block, target string) *Block {
	out := &Block{NumSlots: b.NumSlots, Entries: make([]Entry, len(b.Entries))}
	for i, e := range b.Entries {
		op := e.Op
		if op.Kind == OpFail {
			op = Op{Kind: OpGoto, Target: target}
		}
		out.Entries[i] = Entry{Op: op, Attr: e.Attr, Comment: e.Comment}
	}
	return out
}

// Append concatenates extra's entries onto the end of b, returning a new
// Block. NumSlots becomes the larger of the two, since callers are
// expected to have already Shifted extra into a non-overlapping slot range
// if it needs its own locals.
func Append(b, extra *Block) *Block {
	n := b.NumSlots
	if extra.NumSlots > n {
		n = extra.NumSlots
	}
	out := &Block{NumSlots: n, Entries: make([]Entry, 0, len(b.Entries)+len(extra.Entries))}
	out.Entries = append(out.Entries, b.Entries...)
	out.Entries = append(out.Entries, extra.Entries...)
	return out
}
