package moduleio

import (
	"fmt"

	"github.com/zimothy/Whiley/internal/value"
)

// dictEntryDTO mirrors value.DictEntry.
type dictEntryDTO struct {
	Key   valueDTO `yaml:"key"`
	Value valueDTO `yaml:"value"`
}

// valueDTO mirrors the closed value.Value sum type of spec.md §6 with Kind
// spelled out by name (value.Kind.String()) and every per-kind payload
// flattened into one struct, the same flattening nodeDTO applies to
// types.Node.
type valueDTO struct {
	Kind string `yaml:"kind"`

	Bool bool   `yaml:"bool,omitempty"`
	Byte byte   `yaml:"byte,omitempty"`
	Char int32  `yaml:"char,omitempty"`
	Int  string `yaml:"int,omitempty"`
	Num  string `yaml:"num,omitempty"` // rational numerator/denominator, "n/d"
	Str  string `yaml:"str,omitempty"`

	Elements []valueDTO     `yaml:"elements,omitempty"` // list, set, tuple
	Entries  []dictEntryDTO `yaml:"entries,omitempty"`  // dict
	Fields   []fieldValDTO  `yaml:"fields,omitempty"`   // record, sorted by name

	FuncModule string   `yaml:"func_module,omitempty"`
	FuncName   string   `yaml:"func_name,omitempty"`
	FuncType   *typeDTO `yaml:"func_type,omitempty"`
}

type fieldValDTO struct {
	Name  string   `yaml:"name"`
	Value valueDTO `yaml:"value"`
}

func toValueDTO(v value.Value) valueDTO {
	switch vv := v.(type) {
	case value.NullValue:
		return valueDTO{Kind: value.Null.String()}
	case value.BoolValue:
		return valueDTO{Kind: value.Bool.String(), Bool: vv.Value}
	case value.ByteValue:
		return valueDTO{Kind: value.Byte.String(), Byte: vv.Value}
	case value.CharValue:
		return valueDTO{Kind: value.Char.String(), Char: vv.Value}
	case value.IntValue:
		return valueDTO{Kind: value.Integer.String(), Int: bigIntString(vv.Value)}
	case value.RatValue:
		return valueDTO{Kind: value.Rational.String(), Num: bigRatString(vv.Value)}
	case value.StringValue:
		return valueDTO{Kind: value.String.String(), Str: vv.Value}
	case value.ListValue:
		return valueDTO{Kind: value.List.String(), Elements: toValueDTOs(vv.Elements)}
	case value.SetValue:
		return valueDTO{Kind: value.Set.String(), Elements: toValueDTOs(vv.Elements)}
	case value.TupleValue:
		return valueDTO{Kind: value.Tuple.String(), Elements: toValueDTOs(vv.Elements)}
	case value.DictValue:
		entries := make([]dictEntryDTO, len(vv.Entries))
		for i, e := range vv.Entries {
			entries[i] = dictEntryDTO{Key: toValueDTO(e.Key), Value: toValueDTO(e.Value)}
		}
		return valueDTO{Kind: value.Dict.String(), Entries: entries}
	case value.RecordValue:
		names := make([]string, 0, len(vv.Fields))
		for n := range vv.Fields {
			names = append(names, n)
		}
		sortStrings(names)
		fields := make([]fieldValDTO, len(names))
		for i, n := range names {
			fields[i] = fieldValDTO{Name: n, Value: toValueDTO(vv.Fields[n])}
		}
		return valueDTO{Kind: value.Record.String(), Fields: fields}
	case value.FuncRefValue:
		dto := valueDTO{Kind: value.FuncRef.String(), FuncModule: vv.Module, FuncName: vv.Name}
		if vv.FunctionType != nil {
			t := toTypeDTO(*vv.FunctionType)
			dto.FuncType = &t
		}
		return dto
	}
	return valueDTO{Kind: "null"}
}

func toValueDTOs(vs []value.Value) []valueDTO {
	out := make([]valueDTO, len(vs))
	for i, v := range vs {
		out[i] = toValueDTO(v)
	}
	return out
}

func fromValueDTO(dto valueDTO) (value.Value, error) {
	switch dto.Kind {
	case "null":
		return value.NullValue{}, nil
	case "bool":
		return value.BoolValue{Value: dto.Bool}, nil
	case "byte":
		return value.ByteValue{Value: dto.Byte}, nil
	case "char":
		return value.CharValue{Value: dto.Char}, nil
	case "integer":
		i, err := parseBigInt(dto.Int)
		if err != nil {
			return nil, err
		}
		return value.IntValue{Value: i}, nil
	case "rational":
		r, err := parseBigRat(dto.Num)
		if err != nil {
			return nil, err
		}
		return value.RatValue{Value: r}, nil
	case "string":
		return value.StringValue{Value: dto.Str}, nil
	case "list":
		elems, err := fromValueDTOs(dto.Elements)
		if err != nil {
			return nil, err
		}
		return value.ListValue{Elements: elems}, nil
	case "set":
		elems, err := fromValueDTOs(dto.Elements)
		if err != nil {
			return nil, err
		}
		return value.SetValue{Elements: elems}, nil
	case "tuple":
		elems, err := fromValueDTOs(dto.Elements)
		if err != nil {
			return nil, err
		}
		return value.TupleValue{Elements: elems}, nil
	case "dict":
		entries := make([]value.DictEntry, len(dto.Entries))
		for i, e := range dto.Entries {
			k, err := fromValueDTO(e.Key)
			if err != nil {
				return nil, err
			}
			v, err := fromValueDTO(e.Value)
			if err != nil {
				return nil, err
			}
			entries[i] = value.DictEntry{Key: k, Value: v}
		}
		return value.DictValue{Entries: entries}, nil
	case "record":
		fields := make(map[string]value.Value, len(dto.Fields))
		for _, f := range dto.Fields {
			v, err := fromValueDTO(f.Value)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = v
		}
		return value.RecordValue{Fields: fields}, nil
	case "funcref":
		fr := value.FuncRefValue{Module: dto.FuncModule, Name: dto.FuncName}
		if dto.FuncType != nil {
			t, err := fromTypeDTO(*dto.FuncType)
			if err != nil {
				return nil, err
			}
			fr.FunctionType = &t
		}
		return fr, nil
	}
	return nil, fmt.Errorf("moduleio: unknown value kind %q", dto.Kind)
}

func fromValueDTOs(dtos []valueDTO) ([]value.Value, error) {
	out := make([]value.Value, len(dtos))
	for i, d := range dtos {
		v, err := fromValueDTO(d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// sortStrings is the same insertion sort types/build.go uses, kept local
// to avoid importing "sort" for one small, already-short slice.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
