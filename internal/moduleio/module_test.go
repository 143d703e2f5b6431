package moduleio

import (
	"testing"

	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/source"
	"github.com/zimothy/Whiley/internal/types"
	"github.com/zimothy/Whiley/internal/value"
)

func TestDumpLoadRoundTrip(t *testing.T) {
	mod := il.NewModule("m")

	var attr source.Attribute

	natBlock := il.NewBlock(1)
	okLabel := il.NewLabel("ok")
	natBlock.Emit(il.Op{Kind: il.OpLoad, Slot: 0}, attr)
	natBlock.Emit(il.Op{Kind: il.OpConst, Value: value.NewInt(0)}, attr)
	natBlock.Emit(il.Op{Kind: il.OpIfGoto, Cmp: il.CmpGe, Target: okLabel}, attr)
	natBlock.Emit(il.Op{Kind: il.OpFail, Msg: "type constraint not satisfied (nat)"}, attr)
	natBlock.EmitLabel(okLabel, attr)
	mod.Types["nat"] = &il.NamedType{Name: "nat", Type: types.TInt, Constraint: natBlock}

	mod.Types["Point"] = &il.NamedType{
		Name: "Point",
		Type: types.NewUnionRaw(
			types.NewRecord([]types.RecordField{{Name: "x", Type: types.TInt}, {Name: "y", Type: types.TInt}}, false),
			types.NewRecord([]types.RecordField{{Name: "x", Type: types.TInt}, {Name: "y", Type: types.TInt}, {Name: "z", Type: types.TInt}}, false),
		),
	}

	mod.Constants["zero"] = value.NewInt(0)
	mod.Constants["pair"] = value.TupleValue{Elements: []value.Value{value.NewInt(1), value.NewInt(2)}}

	body := il.NewBlock(1)
	body.Emit(il.Op{Kind: il.OpLoad, Slot: 0}, attr)
	body.Emit(il.Op{Kind: il.OpReturn, TypeName: "nat"}, attr)
	mod.Functions["f"] = &il.Function{
		Name:   "f",
		Params: []il.Param{{Name: "x", Type: types.NewNominal("m", "nat")}},
		Return: types.NewNominal("m", "nat"),
		Body:   body,
	}

	data, err := Dump(mod)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}

	reloaded, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v\n%s", err, data)
	}

	if reloaded.Name != mod.Name {
		t.Errorf("Name = %q, want %q", reloaded.Name, mod.Name)
	}
	if !reloaded.Types["nat"].Type.Equal(mod.Types["nat"].Type) {
		t.Errorf("nat Type round-trip mismatch: got %s, want %s", reloaded.Types["nat"].Type, mod.Types["nat"].Type)
	}
	if len(reloaded.Types["nat"].Constraint.Entries) != len(natBlock.Entries) {
		t.Errorf("nat constraint block entry count = %d, want %d", len(reloaded.Types["nat"].Constraint.Entries), len(natBlock.Entries))
	}
	if !reloaded.Types["Point"].Type.Equal(mod.Types["Point"].Type) {
		t.Errorf("Point Type round-trip mismatch: got %s, want %s", reloaded.Types["Point"].Type, mod.Types["Point"].Type)
	}
	if !reloaded.Constants["zero"].Equal(mod.Constants["zero"]) {
		t.Errorf("zero constant round-trip mismatch")
	}
	if !reloaded.Constants["pair"].Equal(mod.Constants["pair"]) {
		t.Errorf("pair constant round-trip mismatch")
	}
	fn := reloaded.Functions["f"]
	if fn == nil || len(fn.Params) != 1 || fn.Params[0].Name != "x" {
		t.Fatalf("function f round-trip mismatch: %+v", fn)
	}
	if len(fn.Body.Entries) != len(body.Entries) {
		t.Errorf("f body entry count = %d, want %d", len(fn.Body.Entries), len(body.Entries))
	}
}
