package resolver

import (
	"fmt"

	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/types"
	"github.com/zimothy/Whiley/internal/value"
)

// ModuleLoader resolves a declaration from a foreign module, already fully
// resolved at the loading module's own expense (spec.md §4.4 step 3:
// "Else if declared in a foreign module → load from the module loader
// (fully resolved there)"). The one production implementation is
// modcache.SQLiteLoader; MapLoader below backs tests and single-module
// (no search path) compiles.
type ModuleLoader interface {
	LoadType(module, name string) (types.Type, *il.Block, error)
	LoadConstant(module, name string) (value.Value, error)
	LoadFunctionSignature(module, name string) (types.Type, bool, error)
}

// moduleEntry is one foreign module's published declarations, as handed to
// MapLoader by a test or by a driver that has already compiled that module.
type moduleEntry struct {
	Types     map[string]typeEntry
	Constants map[string]value.Value
	Functions map[string]funcEntry
}

type funcEntry struct {
	Type     types.Type
	IsMethod bool
}

// MapLoader is an in-memory ModuleLoader over pre-populated module tables —
// the Resolver-package analogue of an already-compiled-and-cached set of
// foreign modules, with no filesystem or network access.
type MapLoader struct {
	modules map[string]*moduleEntry
}

// NewMapLoader creates an empty MapLoader; modules are added via Publish*.
func NewMapLoader() *MapLoader {
	return &MapLoader{modules: make(map[string]*moduleEntry)}
}

func (m *MapLoader) entry(module string) *moduleEntry {
	e, ok := m.modules[module]
	if !ok {
		e = &moduleEntry{
			Types:     make(map[string]typeEntry),
			Constants: make(map[string]value.Value),
			Functions: make(map[string]funcEntry),
		}
		m.modules[module] = e
	}
	return e
}

// PublishType registers a resolved type (and its constraint block, if any)
// under module/name, mirroring the publish-once semantics
// internal/modcache implements over sqlite (spec.md §5 "entries are
// created lazily and never mutated after publication").
func (m *MapLoader) PublishType(module, name string, t types.Type, block *il.Block) {
	m.entry(module).Types[name] = typeEntry{Type: t, Block: block}
}

// PublishConstant registers a resolved constant value under module/name.
func (m *MapLoader) PublishConstant(module, name string, v value.Value) {
	m.entry(module).Constants[name] = v
}

// PublishFunction registers a resolved function/method signature under
// module/name.
func (m *MapLoader) PublishFunction(module, name string, t types.Type, isMethod bool) {
	m.entry(module).Functions[name] = funcEntry{Type: t, IsMethod: isMethod}
}

func (m *MapLoader) LoadType(module, name string) (types.Type, *il.Block, error) {
	e, ok := m.modules[module]
	if !ok {
		return types.Type{}, nil, fmt.Errorf("resolver: unknown module %q", module)
	}
	entry, ok := e.Types[name]
	if !ok {
		return types.Type{}, nil, fmt.Errorf("resolver: module %q has no type %q", module, name)
	}
	return entry.Type, entry.Block, nil
}

func (m *MapLoader) LoadConstant(module, name string) (value.Value, error) {
	e, ok := m.modules[module]
	if !ok {
		return nil, fmt.Errorf("resolver: unknown module %q", module)
	}
	v, ok := e.Constants[name]
	if !ok {
		return nil, fmt.Errorf("resolver: module %q has no constant %q", module, name)
	}
	return v, nil
}

func (m *MapLoader) LoadFunctionSignature(module, name string) (types.Type, bool, error) {
	e, ok := m.modules[module]
	if !ok {
		return types.Type{}, false, fmt.Errorf("resolver: unknown module %q", module)
	}
	fn, ok := e.Functions[name]
	if !ok {
		return types.Type{}, false, fmt.Errorf("resolver: module %q has no function %q", module, name)
	}
	return fn.Type, fn.IsMethod, nil
}
