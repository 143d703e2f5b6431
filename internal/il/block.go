package il

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/zimothy/Whiley/internal/source"
)

// Entry bundles one Op with the source attribute it came from and an
// optional human-readable comment, following spec.md §3.2's "each entry
// bundles one operation with a set of positional attributes".
type Entry struct {
	Op      Op
	Attr    source.Attribute
	Comment string
}

// Block is an ordered, append-only sequence of Entries plus the number of
// input slots it consumes — the entry-oriented analogue of the teacher's
// append-only vm.Chunk (grounded on vm/chunk.go's Write/WriteOp shape).
type Block struct {
	NumSlots int
	Entries  []Entry
}

// NewBlock creates an empty Block expecting numSlots local slots.
func NewBlock(numSlots int) *Block {
	return &Block{NumSlots: numSlots, Entries: make([]Entry, 0, 16)}
}

// Emit appends op with the given attribute and returns the index of the
// new entry, mirroring vm.Chunk.WriteOp's "append and return position" so
// callers can hold onto the index for a later Patch.
func (b *Block) Emit(op Op, attr source.Attribute) int {
	b.Entries = append(b.Entries, Entry{Op: op, Attr: attr})
	b.touchSlots(op)
	return len(b.Entries) - 1
}

// EmitComment is Emit plus an attached debug comment, used by the Lowerer
// and the Resolver's constraint-block synthesis to annotate synthetic
// entries that have no direct source counterpart.
func (b *Block) EmitComment(op Op, attr source.Attribute, comment string) int {
	idx := b.Emit(op, attr)
	b.Entries[idx].Comment = comment
	return idx
}

// EmitLabel emits a Label entry defining name at the current position.
func (b *Block) EmitLabel(name string, attr source.Attribute) int {
	return b.Emit(Op{Kind: OpLabel, Label: name}, attr)
}

// EmitGoto emits an unconditional jump to target and returns the entry
// index, so a forward branch whose exact target name isn't chosen yet can
// be fixed up later with Patch — the named-label analogue of
// vm/compiler_scope.go's emitJump/patchJump pair.
func (b *Block) EmitGoto(target string, attr source.Attribute) int {
	return b.Emit(Op{Kind: OpGoto, Target: target}, attr)
}

// Patch rewrites the branch target of a previously emitted Goto, IfGoto,
// IfType, Assert or End entry. It panics if idx does not refer to one of those
// kinds, since patching any other Op is certainly a caller bug.
func (b *Block) Patch(idx int, target string) {
	op := &b.Entries[idx].Op
	switch op.Kind {
	case OpGoto, OpIfGoto, OpIfType, OpAssert, OpEnd:
		op.Target = target
	default:
		panic(fmt.Sprintf("il: Patch called on non-branch entry %s", op.Kind))
	}
}

// NewLabel mints a fresh, collision-free label name. Using a UUID rather
// than a counter means two Blocks built independently and later spliced
// together (constraint-block embedding, §4.6) can never collide without
// either one having to know about the other.
func NewLabel(prefix string) string {
	return prefix + "_" + uuid.New().String()
}

func (b *Block) touchSlots(op Op) {
	touch := func(s int) {
		if s+1 > b.NumSlots {
			b.NumSlots = s + 1
		}
	}
	switch op.Kind {
	case OpLoad, OpStore, OpUpdate:
		touch(op.Slot)
	case OpIfType, OpForAll:
		touch(op.Slot)
		if op.Kind == OpForAll {
			touch(op.Slot2)
		}
	}
}

// Labels returns the set of label names this Block defines, in order of
// definition. Used by validation and by tests asserting relabelling
// preserves shape (spec.md §3.2 invariant iv).
func (b *Block) Labels() []string {
	var out []string
	for _, e := range b.Entries {
		if e.Op.Kind == OpLabel {
			out = append(out, e.Op.Label)
		}
	}
	return out
}

// Targets returns every label name referenced by a branching entry, in
// entry order; a Goto/IfGoto/IfType/Assert/End/ForAll/Loop/TryCatch/Switch
// may each reference one or more.
func (b *Block) Targets() []string {
	var out []string
	add := func(s string) {
		if s != "" {
			out = append(out, s)
		}
	}
	for _, e := range b.Entries {
		op := e.Op
		switch op.Kind {
		case OpGoto, OpIfGoto, OpIfType, OpAssert:
			add(op.Target)
		case OpEnd:
			add(op.Target)
		case OpForAll, OpLoop, OpTryCatch:
			add(op.End)
			for _, h := range op.Handlers {
				add(h.Label)
			}
		case OpSwitch:
			add(op.Default)
			for _, c := range op.Cases {
				add(c.Label)
			}
		}
	}
	return out
}
