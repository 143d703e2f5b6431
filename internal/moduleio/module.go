package moduleio

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zimothy/Whiley/internal/il"
)

type paramDTO struct {
	Name string  `yaml:"name"`
	Type typeDTO `yaml:"type"`
}

type namedTypeDTO struct {
	Name       string    `yaml:"name"`
	Type       typeDTO   `yaml:"type"`
	Constraint *blockDTO `yaml:"constraint,omitempty"`
}

type functionDTO struct {
	Name     string     `yaml:"name"`
	IsMethod bool       `yaml:"is_method,omitempty"`
	Receiver *paramDTO  `yaml:"receiver,omitempty"`
	Params   []paramDTO `yaml:"params,omitempty"`
	Return   typeDTO    `yaml:"return"`
	Body     blockDTO   `yaml:"body"`

	Precondition  *blockDTO `yaml:"precondition,omitempty"`
	Postcondition *blockDTO `yaml:"postcondition,omitempty"`
}

// moduleDTO is the on-disk shape Dump/Load round-trip: the same (name,
// types, constants, functions) quadruple as il.Module, spelled out in
// plain YAML scalars and maps instead of the Go-only Type/Block/Value
// representations (spec.md §6 "IL output (produced)").
type moduleDTO struct {
	Name      string                  `yaml:"name"`
	Types     map[string]namedTypeDTO `yaml:"types,omitempty"`
	Constants map[string]valueDTO     `yaml:"constants,omitempty"`
	Functions map[string]functionDTO  `yaml:"functions,omitempty"`
}

// Dump renders mod as human-readable YAML, for a golden test fixture or
// the `whileyc -dump-il` debug flag.
func Dump(mod *il.Module) ([]byte, error) {
	dto := moduleDTO{
		Name:      mod.Name,
		Types:     make(map[string]namedTypeDTO, len(mod.Types)),
		Constants: make(map[string]valueDTO, len(mod.Constants)),
		Functions: make(map[string]functionDTO, len(mod.Functions)),
	}
	for name, nt := range mod.Types {
		dto.Types[name] = namedTypeDTO{
			Name:       nt.Name,
			Type:       toTypeDTO(nt.Type),
			Constraint: toBlockDTO(nt.Constraint),
		}
	}
	for name, v := range mod.Constants {
		dto.Constants[name] = toValueDTO(v)
	}
	for name, fn := range mod.Functions {
		fdto := functionDTO{
			Name:          fn.Name,
			IsMethod:      fn.IsMethod,
			Params:        make([]paramDTO, len(fn.Params)),
			Return:        toTypeDTO(fn.Return),
			Precondition:  toBlockDTO(fn.Precondition),
			Postcondition: toBlockDTO(fn.Postcondition),
		}
		if fn.Body != nil {
			fdto.Body = *toBlockDTO(fn.Body)
		}
		for i, p := range fn.Params {
			fdto.Params[i] = paramDTO{Name: p.Name, Type: toTypeDTO(p.Type)}
		}
		if fn.Receiver != nil {
			fdto.Receiver = &paramDTO{Name: fn.Receiver.Name, Type: toTypeDTO(fn.Receiver.Type)}
		}
		dto.Functions[name] = fdto
	}
	return yaml.Marshal(dto)
}

// Load parses data (as produced by Dump) back into an il.Module.
func Load(data []byte) (*il.Module, error) {
	var dto moduleDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("moduleio: %w", err)
	}
	mod := il.NewModule(dto.Name)
	for name, nt := range dto.Types {
		t, err := fromTypeDTO(nt.Type)
		if err != nil {
			return nil, fmt.Errorf("moduleio: type %q: %w", name, err)
		}
		cons, err := fromBlockDTO(nt.Constraint)
		if err != nil {
			return nil, fmt.Errorf("moduleio: type %q constraint: %w", name, err)
		}
		mod.Types[name] = &il.NamedType{Name: nt.Name, Type: t, Constraint: cons}
	}
	for name, v := range dto.Constants {
		val, err := fromValueDTO(v)
		if err != nil {
			return nil, fmt.Errorf("moduleio: constant %q: %w", name, err)
		}
		mod.Constants[name] = val
	}
	for name, fdto := range dto.Functions {
		ret, err := fromTypeDTO(fdto.Return)
		if err != nil {
			return nil, fmt.Errorf("moduleio: function %q return type: %w", name, err)
		}
		body, err := fromBlockDTO(&fdto.Body)
		if err != nil {
			return nil, fmt.Errorf("moduleio: function %q body: %w", name, err)
		}
		pre, err := fromBlockDTO(fdto.Precondition)
		if err != nil {
			return nil, fmt.Errorf("moduleio: function %q precondition: %w", name, err)
		}
		post, err := fromBlockDTO(fdto.Postcondition)
		if err != nil {
			return nil, fmt.Errorf("moduleio: function %q postcondition: %w", name, err)
		}
		fn := &il.Function{
			Name:          fdto.Name,
			IsMethod:      fdto.IsMethod,
			Return:        ret,
			Body:          body,
			Precondition:  pre,
			Postcondition: post,
			Params:        make([]il.Param, len(fdto.Params)),
		}
		for i, p := range fdto.Params {
			pt, err := fromTypeDTO(p.Type)
			if err != nil {
				return nil, fmt.Errorf("moduleio: function %q param %q: %w", name, p.Name, err)
			}
			fn.Params[i] = il.Param{Name: p.Name, Type: pt}
		}
		if fdto.Receiver != nil {
			rt, err := fromTypeDTO(fdto.Receiver.Type)
			if err != nil {
				return nil, fmt.Errorf("moduleio: function %q receiver: %w", name, err)
			}
			fn.Receiver = &il.Param{Name: fdto.Receiver.Name, Type: rt}
		}
		mod.Functions[name] = fn
	}
	return mod, nil
}
