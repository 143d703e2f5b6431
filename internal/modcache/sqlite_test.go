package modcache

import (
	"context"
	"testing"

	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/types"
	"github.com/zimothy/Whiley/internal/value"
)

func TestPublishAndLoad(t *testing.T) {
	loader, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer loader.Close()

	mod := il.NewModule("geometry")
	mod.Types["Point"] = &il.NamedType{
		Name: "Point",
		Type: types.NewRecord([]types.RecordField{{Name: "x", Type: types.TInt}, {Name: "y", Type: types.TInt}}, false),
	}
	mod.Constants["origin"] = value.RecordValue{Fields: map[string]value.Value{
		"x": value.NewInt(0),
		"y": value.NewInt(0),
	}}
	mod.Functions["norm"] = &il.Function{
		Name:   "norm",
		Params: []il.Param{{Name: "p", Type: types.NewNominal("geometry", "Point")}},
		Return: types.TInt,
		Body:   il.NewBlock(1),
	}

	ctx := context.Background()
	if err := loader.Publish(ctx, mod); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	gotType, _, err := loader.LoadType("geometry", "Point")
	if err != nil {
		t.Fatalf("LoadType: %v", err)
	}
	if !gotType.Equal(mod.Types["Point"].Type) {
		t.Errorf("LoadType mismatch: got %s, want %s", gotType, mod.Types["Point"].Type)
	}

	gotConst, err := loader.LoadConstant("geometry", "origin")
	if err != nil {
		t.Fatalf("LoadConstant: %v", err)
	}
	if !gotConst.Equal(mod.Constants["origin"]) {
		t.Errorf("LoadConstant mismatch: got %v, want %v", gotConst, mod.Constants["origin"])
	}

	sig, isMethod, err := loader.LoadFunctionSignature("geometry", "norm")
	if err != nil {
		t.Fatalf("LoadFunctionSignature: %v", err)
	}
	if isMethod {
		t.Error("norm should not be a method")
	}
	params, ret, _, _, ok := sig.Signature()
	if !ok {
		t.Fatal("Signature() returned ok=false for a function type")
	}
	if len(params) != 1 || !ret.Equal(types.TInt) {
		t.Errorf("unexpected signature: params=%v ret=%s", params, ret)
	}

	if _, _, err := loader.LoadType("geometry", "Missing"); err == nil {
		t.Error("expected error loading unknown type")
	}
	if _, err := loader.LoadConstant("other", "x"); err == nil {
		t.Error("expected error loading from unknown module")
	}

	// Publishing again must be a no-op: the cached in-memory module and the
	// sqlite row are both left exactly as they were.
	second := il.NewModule("geometry")
	if err := loader.Publish(ctx, second); err != nil {
		t.Fatalf("second Publish: %v", err)
	}
	gotType2, _, err := loader.LoadType("geometry", "Point")
	if err != nil {
		t.Fatalf("LoadType after republish: %v", err)
	}
	if !gotType2.Equal(mod.Types["Point"].Type) {
		t.Errorf("republish clobbered the cache: got %s, want %s", gotType2, mod.Types["Point"].Type)
	}
}
