// Package moduleio implements a human-readable YAML dump/reload of a
// compiled il.Module, used for golden tests and the `whileyc -dump-il`
// debug flag — never a compiler input (spec.md §6 "IL output (produced)").
// Grounded on evaluator/builtins_yaml.go's yaml.Marshal/Unmarshal idiom and
// ext/config.go's struct-tag style, generalised from funxy's one
// hand-written Config shape to a full round-trip of the Type graph, IL
// Block and Value literal shapes none of which the teacher itself
// serialises.
package moduleio

import (
	"fmt"
	"math/big"

	"github.com/zimothy/Whiley/internal/types"
)

// fieldDTO mirrors types.Field: one (name, child-index) record pair.
type fieldDTO struct {
	Name  string `yaml:"name"`
	Child int    `yaml:"child"`
}

// nodeDTO mirrors types.Node with Kind/Leaf spelled out as their String()
// name instead of a bare int, so a dumped Module reads like the Type's own
// String() rendering rather than opaque enum numbers.
type nodeDTO struct {
	Kind string `yaml:"kind"`

	Leaf string `yaml:"leaf,omitempty"`

	Child int `yaml:"child,omitempty"`

	Key int `yaml:"key,omitempty"`
	Val int `yaml:"val,omitempty"`

	Children []int `yaml:"children,omitempty"`

	Ret      int   `yaml:"ret,omitempty"`
	Params   []int `yaml:"params,omitempty"`
	Receiver int   `yaml:"receiver,omitempty"`

	Fields []fieldDTO `yaml:"fields,omitempty"`
	Open   bool       `yaml:"open,omitempty"`

	NominalModule string `yaml:"nominal_module,omitempty"`
	NominalName   string `yaml:"nominal_name,omitempty"`

	Label string `yaml:"label,omitempty"`
}

// typeDTO mirrors types.Type: either a bare leaf kind name, or a non-empty
// node array rooted at index 0.
type typeDTO struct {
	Leaf  string    `yaml:"leaf,omitempty"`
	Nodes []nodeDTO `yaml:"nodes,omitempty"`
}

var nodeKindNames = buildNodeKindNames()

func buildNodeKindNames() map[string]types.NodeKind {
	out := make(map[string]types.NodeKind)
	for k := types.NLeaf; k <= types.NLabel; k++ {
		out[k.String()] = k
	}
	return out
}

var leafKindNames = buildLeafKindNames()

func buildLeafKindNames() map[string]types.LeafKind {
	out := make(map[string]types.LeafKind)
	for k := types.Void; k <= types.String; k++ {
		out[k.String()] = k
	}
	return out
}

// leafTypeByKind recovers the exported TXxx constant for a leaf kind, since
// types.Type's private "leaf" field can't be set directly from outside the
// package.
func leafTypeByKind(k types.LeafKind) (types.Type, error) {
	switch k {
	case types.Void:
		return types.TVoid, nil
	case types.Any:
		return types.TAny, nil
	case types.Null:
		return types.TNull, nil
	case types.Bool:
		return types.TBool, nil
	case types.Byte:
		return types.TByte, nil
	case types.Char:
		return types.TChar, nil
	case types.Int:
		return types.TInt, nil
	case types.Real:
		return types.TReal, nil
	case types.String:
		return types.TString, nil
	}
	return types.Type{}, fmt.Errorf("moduleio: unknown leaf kind %v", k)
}

func toTypeDTO(t types.Type) typeDTO {
	if t.IsLeaf() {
		return typeDTO{Leaf: t.LeafKind().String()}
	}
	nodes := make([]nodeDTO, len(t.Nodes))
	for i, n := range t.Nodes {
		nodes[i] = toNodeDTO(n)
	}
	return typeDTO{Nodes: nodes}
}

func toNodeDTO(n types.Node) nodeDTO {
	dto := nodeDTO{Kind: n.Kind.String()}
	switch n.Kind {
	case types.NLeaf:
		dto.Leaf = n.Leaf.String()
	case types.NSet, types.NList, types.NReference, types.NNegation, types.NProcess:
		dto.Child = n.Child
	case types.NDictionary:
		dto.Key = n.Key
		dto.Val = n.Val
	case types.NUnion, types.NIntersection, types.NTuple:
		dto.Children = n.Children
	case types.NFunction, types.NMethod:
		dto.Ret = n.Ret
		dto.Params = n.Params
		dto.Receiver = n.Receiver
	case types.NRecord:
		dto.Fields = make([]fieldDTO, len(n.Fields))
		for i, f := range n.Fields {
			dto.Fields[i] = fieldDTO{Name: f.Name, Child: f.Child}
		}
		dto.Open = n.Open
	case types.NNominal:
		dto.NominalModule = n.Nominal.Module
		dto.NominalName = n.Nominal.Name
	case types.NLabel:
		dto.Label = n.Label
	}
	return dto
}

func fromTypeDTO(dto typeDTO) (types.Type, error) {
	if len(dto.Nodes) == 0 {
		k, ok := leafKindNames[dto.Leaf]
		if !ok {
			return types.Type{}, fmt.Errorf("moduleio: unknown leaf type name %q", dto.Leaf)
		}
		return leafTypeByKind(k)
	}
	nodes := make([]types.Node, len(dto.Nodes))
	for i, nd := range dto.Nodes {
		n, err := fromNodeDTO(nd)
		if err != nil {
			return types.Type{}, err
		}
		nodes[i] = n
	}
	return types.Type{Nodes: nodes}, nil
}

func fromNodeDTO(dto nodeDTO) (types.Node, error) {
	kind, ok := nodeKindNames[dto.Kind]
	if !ok {
		return types.Node{}, fmt.Errorf("moduleio: unknown node kind %q", dto.Kind)
	}
	n := types.Node{Kind: kind}
	switch kind {
	case types.NLeaf:
		lk, ok := leafKindNames[dto.Leaf]
		if !ok {
			return types.Node{}, fmt.Errorf("moduleio: unknown leaf kind %q", dto.Leaf)
		}
		n.Leaf = lk
	case types.NSet, types.NList, types.NReference, types.NNegation, types.NProcess:
		n.Child = dto.Child
	case types.NDictionary:
		n.Key = dto.Key
		n.Val = dto.Val
	case types.NUnion, types.NIntersection, types.NTuple:
		n.Children = dto.Children
	case types.NFunction, types.NMethod:
		n.Ret = dto.Ret
		n.Params = dto.Params
		n.Receiver = dto.Receiver
	case types.NRecord:
		n.Fields = make([]types.Field, len(dto.Fields))
		for i, f := range dto.Fields {
			n.Fields[i] = types.Field{Name: f.Name, Child: f.Child}
		}
		n.Open = dto.Open
	case types.NNominal:
		n.Nominal = types.NominalName{Module: dto.NominalModule, Name: dto.NominalName}
	case types.NLabel:
		n.Label = dto.Label
	}
	return n, nil
}

// bigIntString/bigRatString/parseBigInt/parseBigRat are the Value DTO's
// textual encoding of arbitrary-precision numbers, since YAML scalars
// don't carry a native bignum type.
func bigIntString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseBigInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("moduleio: invalid integer literal %q", s)
	}
	return v, nil
}

func bigRatString(v *big.Rat) string {
	if v == nil {
		return "0"
	}
	return v.RatString()
}

func parseBigRat(s string) (*big.Rat, error) {
	v, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("moduleio: invalid rational literal %q", s)
	}
	return v, nil
}
