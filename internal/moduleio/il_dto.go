package moduleio

import (
	"fmt"

	"github.com/zimothy/Whiley/internal/il"
	"github.com/zimothy/Whiley/internal/source"
)

var opKindNames = buildOpKindNames()

func buildOpKindNames() map[string]il.OpKind {
	out := make(map[string]il.OpKind)
	for k := il.OpLoad; k <= il.OpProcLoad; k++ {
		out[k.String()] = k
	}
	return out
}

var binOpNames = buildBinOpNames()

func buildBinOpNames() map[string]il.BinOp {
	out := make(map[string]il.BinOp)
	for k := il.Add; k <= il.Shr; k++ {
		out[k.String()] = k
	}
	return out
}

var cmpOpNames = buildCmpOpNames()

func buildCmpOpNames() map[string]il.CmpOp {
	out := make(map[string]il.CmpOp)
	for k := il.CmpEq; k <= il.CmpGe; k++ {
		out[k.String()] = k
	}
	return out
}

type attributeDTO struct {
	File   string `yaml:"file,omitempty"`
	Line   int    `yaml:"line,omitempty"`
	Column int    `yaml:"column,omitempty"`
}

func toAttributeDTO(a source.Attribute) attributeDTO {
	return attributeDTO{File: a.File, Line: a.Line, Column: a.Column}
}

func fromAttributeDTO(dto attributeDTO) source.Attribute {
	return source.Attribute{File: dto.File, Line: dto.Line, Column: dto.Column}
}

type switchCaseDTO struct {
	Value valueDTO `yaml:"value"`
	Label string   `yaml:"label"`
}

type catchHandlerDTO struct {
	TypeName string `yaml:"type_name"`
	Label    string `yaml:"label"`
}

// opDTO mirrors il.Op: every field the op set actually uses, named instead
// of left as bare ints/enums, following the same flattening as nodeDTO and
// valueDTO.
type opDTO struct {
	Kind string `yaml:"kind"`

	Slot  int `yaml:"slot,omitempty"`
	Slot2 int `yaml:"slot2,omitempty"`

	Value *valueDTO `yaml:"value,omitempty"`

	TypeName string `yaml:"type_name,omitempty"`

	N int `yaml:"n,omitempty"`

	FieldName string   `yaml:"field_name,omitempty"`
	FieldPath []string `yaml:"field_path,omitempty"`
	Depth     int      `yaml:"depth,omitempty"`
	Index     int      `yaml:"index,omitempty"`

	Op2 string `yaml:"op2,omitempty"`

	Forward bool `yaml:"forward,omitempty"`

	Label   string `yaml:"label,omitempty"`
	Target  string `yaml:"target,omitempty"`
	Default string `yaml:"default,omitempty"`
	End     string `yaml:"end,omitempty"`

	Cmp string `yaml:"cmp,omitempty"`

	Cases    []switchCaseDTO   `yaml:"cases,omitempty"`
	Handlers []catchHandlerDTO `yaml:"handlers,omitempty"`

	Modified []int `yaml:"modified,omitempty"`

	Msg string `yaml:"msg,omitempty"`

	Name       string `yaml:"name,omitempty"`
	KeepResult bool   `yaml:"keep_result,omitempty"`
	Sync       bool   `yaml:"sync,omitempty"`
}

func toOpDTO(op il.Op) opDTO {
	dto := opDTO{
		Kind:       op.Kind.String(),
		Slot:       op.Slot,
		Slot2:      op.Slot2,
		TypeName:   op.TypeName,
		N:          op.N,
		FieldName:  op.FieldName,
		FieldPath:  op.FieldPath,
		Depth:      op.Depth,
		Index:      op.Index,
		Op2:        op.Op2.String(),
		Forward:    op.Forward,
		Label:      op.Label,
		Target:     op.Target,
		Default:    op.Default,
		End:        op.End,
		Cmp:        op.Cmp.String(),
		Modified:   op.Modified,
		Msg:        op.Msg,
		Name:       op.Name,
		KeepResult: op.KeepResult,
		Sync:       op.Sync,
	}
	if op.Kind == il.OpConst {
		v := toValueDTO(op.Value)
		dto.Value = &v
	}
	if len(op.Cases) > 0 {
		dto.Cases = make([]switchCaseDTO, len(op.Cases))
		for i, c := range op.Cases {
			dto.Cases[i] = switchCaseDTO{Value: toValueDTO(c.Value), Label: c.Label}
		}
	}
	if len(op.Handlers) > 0 {
		dto.Handlers = make([]catchHandlerDTO, len(op.Handlers))
		for i, h := range op.Handlers {
			dto.Handlers[i] = catchHandlerDTO{TypeName: h.TypeName, Label: h.Label}
		}
	}
	return dto
}

func fromOpDTO(dto opDTO) (il.Op, error) {
	kind, ok := opKindNames[dto.Kind]
	if !ok {
		return il.Op{}, fmt.Errorf("moduleio: unknown op kind %q", dto.Kind)
	}
	op := il.Op{
		Kind:       kind,
		Slot:       dto.Slot,
		Slot2:      dto.Slot2,
		TypeName:   dto.TypeName,
		N:          dto.N,
		FieldName:  dto.FieldName,
		FieldPath:  dto.FieldPath,
		Depth:      dto.Depth,
		Index:      dto.Index,
		Forward:    dto.Forward,
		Label:      dto.Label,
		Target:     dto.Target,
		Default:    dto.Default,
		End:        dto.End,
		Modified:   dto.Modified,
		Msg:        dto.Msg,
		Name:       dto.Name,
		KeepResult: dto.KeepResult,
		Sync:       dto.Sync,
	}
	if dto.Op2 != "" {
		b, ok := binOpNames[dto.Op2]
		if !ok {
			return il.Op{}, fmt.Errorf("moduleio: unknown binop %q", dto.Op2)
		}
		op.Op2 = b
	}
	if dto.Cmp != "" {
		c, ok := cmpOpNames[dto.Cmp]
		if !ok {
			return il.Op{}, fmt.Errorf("moduleio: unknown cmp op %q", dto.Cmp)
		}
		op.Cmp = c
	}
	if dto.Value != nil {
		v, err := fromValueDTO(*dto.Value)
		if err != nil {
			return il.Op{}, err
		}
		op.Value = v
	}
	if len(dto.Cases) > 0 {
		op.Cases = make([]il.SwitchCase, len(dto.Cases))
		for i, c := range dto.Cases {
			v, err := fromValueDTO(c.Value)
			if err != nil {
				return il.Op{}, err
			}
			op.Cases[i] = il.SwitchCase{Value: v, Label: c.Label}
		}
	}
	if len(dto.Handlers) > 0 {
		op.Handlers = make([]il.CatchHandler, len(dto.Handlers))
		for i, h := range dto.Handlers {
			op.Handlers[i] = il.CatchHandler{TypeName: h.TypeName, Label: h.Label}
		}
	}
	return op, nil
}

type entryDTO struct {
	Op      opDTO        `yaml:"op"`
	Attr    attributeDTO `yaml:"attr,omitempty"`
	Comment string       `yaml:"comment,omitempty"`
}

type blockDTO struct {
	NumSlots int        `yaml:"num_slots"`
	Entries  []entryDTO `yaml:"entries,omitempty"`
}

func toBlockDTO(b *il.Block) *blockDTO {
	if b == nil {
		return nil
	}
	dto := &blockDTO{NumSlots: b.NumSlots, Entries: make([]entryDTO, len(b.Entries))}
	for i, e := range b.Entries {
		dto.Entries[i] = entryDTO{Op: toOpDTO(e.Op), Attr: toAttributeDTO(e.Attr), Comment: e.Comment}
	}
	return dto
}

func fromBlockDTO(dto *blockDTO) (*il.Block, error) {
	if dto == nil {
		return nil, nil
	}
	b := &il.Block{NumSlots: dto.NumSlots, Entries: make([]il.Entry, len(dto.Entries))}
	for i, e := range dto.Entries {
		op, err := fromOpDTO(e.Op)
		if err != nil {
			return nil, err
		}
		b.Entries[i] = il.Entry{Op: op, Attr: fromAttributeDTO(e.Attr), Comment: e.Comment}
	}
	return b, nil
}
