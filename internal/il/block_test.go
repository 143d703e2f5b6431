package il

import (
	"testing"

	"github.com/zimothy/Whiley/internal/source"
)

func sampleConstraintBlock() *Block {
	b := NewBlock(1)
	b.Emit(Op{Kind: OpLoad, Slot: 0}, source.Attribute{})
	b.Emit(Op{Kind: OpIfGoto, Cmp: CmpGe, Target: "ok"}, source.Attribute{})
	b.Emit(Op{Kind: OpFail, Msg: "type constraint not satisfied"}, source.Attribute{})
	b.EmitLabel("ok", source.Attribute{})
	return b
}

func TestBlockLabelsAndTargets(t *testing.T) {
	b := sampleConstraintBlock()
	labels := b.Labels()
	if len(labels) != 1 || labels[0] != "ok" {
		t.Fatalf("Labels() = %v, want [ok]", labels)
	}
	targets := b.Targets()
	if len(targets) != 1 || targets[0] != "ok" {
		t.Fatalf("Targets() = %v, want [ok]", targets)
	}
}

func TestShiftRemapsSlots(t *testing.T) {
	b := sampleConstraintBlock()
	shifted := Shift(b, 3)
	if shifted.Entries[0].Op.Slot != 3 {
		t.Errorf("Load slot after Shift(3) = %d, want 3", shifted.Entries[0].Op.Slot)
	}
	if shifted.NumSlots != b.NumSlots+3 {
		t.Errorf("NumSlots after Shift(3) = %d, want %d", shifted.NumSlots, b.NumSlots+3)
	}
	// original untouched
	if b.Entries[0].Op.Slot != 0 {
		t.Errorf("Shift mutated the original block")
	}
}

func TestRelabelPreservesShapeNotNames(t *testing.T) {
	b := sampleConstraintBlock()
	relabelled := Relabel(b, "ctest")

	if len(relabelled.Entries) != len(b.Entries) {
		t.Fatalf("Relabel changed entry count: %d vs %d", len(relabelled.Entries), len(b.Entries))
	}
	newLabels := relabelled.Labels()
	if len(newLabels) != 1 || newLabels[0] == "ok" {
		t.Errorf("Relabel did not rename the label: got %v", newLabels)
	}
	newTargets := relabelled.Targets()
	if len(newTargets) != 1 || newTargets[0] != newLabels[0] {
		t.Errorf("Relabel broke the Goto/IfGoto -> Label correspondence: target %v, label %v", newTargets, newLabels)
	}
}

func TestChainRewritesFailToGoto(t *testing.T) {
	b := sampleConstraintBlock()
	chained := Chain(b, "nextArm")
	found := false
	for _, e := range chained.Entries {
		if e.Op.Kind == OpFail {
			t.Errorf("Chain left a Fail entry in place")
		}
		if e.Op.Kind == OpGoto && e.Op.Target == "nextArm" {
			found = true
		}
	}
	if !found {
		t.Errorf("Chain did not introduce a Goto to the chain target")
	}
}

func TestAppendConcatenatesEntries(t *testing.T) {
	a := sampleConstraintBlock()
	b := sampleConstraintBlock()
	joined := Append(a, b)
	if len(joined.Entries) != len(a.Entries)+len(b.Entries) {
		t.Errorf("Append entry count = %d, want %d", len(joined.Entries), len(a.Entries)+len(b.Entries))
	}
}
