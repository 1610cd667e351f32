package document

import "sort"

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindArray
	KindTable
	KindEntry
)

// Value is the payload written by File.Set. The zero Value is None, which
// deletes the addressed location.
type Value struct {
	kind  ValueKind
	str   string
	num   int64
	flt   float64
	flag  bool
	items []Value
	table map[string]Value
	entry Entry
}

// Scalar and array constructors.
func String(s string) Value   { return Value{kind: KindString, str: s} }
func Int(i int64) Value       { return Value{kind: KindInteger, num: i} }
func Float(f float64) Value   { return Value{kind: KindFloat, flt: f} }
func Bool(b bool) Value       { return Value{kind: KindBoolean, flag: b} }
func None() Value             { return Value{} }
func Array(vs ...Value) Value { return Value{kind: KindArray, items: vs} }

// Table builds a table value from its members.
func Table(members map[string]Value) Value {
	if members == nil {
		members = map[string]Value{}
	}
	return Value{kind: KindTable, table: members}
}

// FromEntry copies an existing entry, possibly from another document.
func FromEntry(e Entry) Value {
	if e == nil {
		return None()
	}
	return Value{kind: KindEntry, entry: e}
}

// Kind reports the variant.
func (v Value) Kind() ValueKind { return v.kind }

// IsNone reports whether v deletes its target.
func (v Value) IsNone() bool { return v.kind == KindNone }

// native renders the value as plain Go data (string, int64, float64, bool,
// []any, map[string]any). None and nested None members yield errNoneValue.
func (v Value) native() (any, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindInteger:
		return v.num, nil
	case KindFloat:
		return v.flt, nil
	case KindBoolean:
		return v.flag, nil
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			n, err := item.native()
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case KindTable:
		out := make(map[string]any, len(v.table))
		keys := make([]string, 0, len(v.table))
		for k := range v.table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n, err := v.table[k].native()
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case KindEntry:
		e, ok := v.entry.(*entry)
		if !ok {
			return nil, ErrForeignEntry
		}
		return e.node.native(), nil
	default:
		return nil, ErrNoneValue
	}
}
