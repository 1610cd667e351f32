package document

import (
	"bytes"
	"sort"

	"github.com/kingrea/gobi/internal/errs"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// treeFile is the value backend: the document is held as plain Go data.
// Mutations copy the containers along the replayed path, so entries handed
// out earlier keep seeing the tree as it was when they were read.
type treeFile struct {
	path   string
	format Format
	depth  int
	root   any
}

func parseTree(path string, data []byte, o options) (*treeFile, error) {
	var root any
	switch o.format {
	case FormatTOML:
		var table map[string]any
		if err := toml.Unmarshal(data, &table); err != nil {
			return nil, errs.Wrapf(ErrParse, "Could not parse '%s': %v", path, err)
		}
		root = table
	default:
		if len(bytes.TrimSpace(data)) > 0 {
			if err := yaml.Unmarshal(data, &root); err != nil {
				return nil, errs.Wrapf(ErrParse, "Could not parse '%s': %v", path, err)
			}
		}
	}
	if root == nil {
		root = map[string]any{}
	}
	return &treeFile{path: path, format: o.format, depth: o.depth, root: normalizeTree(root)}, nil
}

func (f *treeFile) Path() string { return f.path }
func (f *treeFile) Depth() int   { return f.depth }

func (f *treeFile) Data() Entry {
	return newEntry(treeNode{f.root}, nil, f)
}

func (f *treeFile) Set(e Entry, seg Segment, v Value) error {
	in, err := ownedBy(e, f)
	if err != nil {
		return err
	}
	var payload any
	if !v.IsNone() {
		payload, err = v.native()
		if err != nil {
			return err
		}
	}
	root, err := f.setIn(f.root, in.path, 0, seg, payload, v.IsNone())
	if err != nil {
		return err
	}
	f.root = root
	return nil
}

func (f *treeFile) setIn(cur any, p Path, depth int, seg Segment, payload any, del bool) (any, error) {
	if depth == len(p) {
		return f.apply(cur, p, seg, payload, del)
	}
	step := p[depth]
	if i, ok := step.AsIndex(); ok {
		items, isArr := cur.([]any)
		if !isArr || i < 0 || i >= len(items) {
			return nil, errs.Wrapf(ErrPathNotFound, "Path %s not found", describe(f, p[:depth+1]))
		}
		child, err := f.setIn(items[i], p, depth+1, seg, payload, del)
		if err != nil {
			return nil, err
		}
		out := append([]any(nil), items...)
		out[i] = child
		return out, nil
	}
	key, _ := step.AsKey()
	table, isTable := cur.(map[string]any)
	if !isTable {
		return nil, errs.Wrapf(ErrPathNotFound, "Path %s not found", describe(f, p[:depth+1]))
	}
	existing, found := table[key]
	if !found {
		return nil, errs.Wrapf(ErrPathNotFound, "Path %s not found", describe(f, p[:depth+1]))
	}
	child, err := f.setIn(existing, p, depth+1, seg, payload, del)
	if err != nil {
		return nil, err
	}
	out := copyTable(table)
	out[key] = child
	return out, nil
}

func (f *treeFile) apply(cur any, p Path, seg Segment, payload any, del bool) (any, error) {
	if i, ok := seg.AsIndex(); ok {
		items, isArr := cur.([]any)
		if !isArr {
			return nil, errs.Wrapf(ErrIndexOnValue, "%s at %s", ErrIndexOnValue.Msg, describe(f, p))
		}
		switch {
		case i < 0 || i > len(items) || (del && i == len(items)):
			return nil, errs.Wrapf(ErrOutOfBounds, "%s at %s", ErrOutOfBounds.Msg, describe(f, p))
		case del:
			out := make([]any, 0, len(items)-1)
			out = append(out, items[:i]...)
			return append(out, items[i+1:]...), nil
		case i == len(items):
			out := make([]any, len(items), len(items)+1)
			copy(out, items)
			return append(out, payload), nil
		default:
			out := append([]any(nil), items...)
			out[i] = payload
			return out, nil
		}
	}
	key, _ := seg.AsKey()
	table, isTable := cur.(map[string]any)
	if !isTable {
		return nil, errs.Wrapf(ErrKeyOnValue, "%s at %s", ErrKeyOnValue.Msg, describe(f, p))
	}
	out := copyTable(table)
	if del {
		delete(out, key)
	} else {
		out[key] = payload
	}
	return out, nil
}

func (f *treeFile) Drop(e Entry, seg Segment) error { return drop(f, e, seg) }
func (f *treeFile) Push(e Entry, v Value) error     { return push(f, e, v) }
func (f *treeFile) Pop(e Entry) (Entry, error)      { return pop(f, e) }

func (f *treeFile) Save() error {
	var (
		data []byte
		err  error
	)
	switch f.format {
	case FormatTOML:
		data, err = toml.Marshal(f.root)
	default:
		data, err = yaml.Marshal(f.root)
	}
	if err != nil {
		return errs.Newf(1, "Could not encode '%s': %v", f.path, err)
	}
	return writeFile(f.path, data)
}

func copyTable(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// normalizeTree folds the integer widths and map shapes produced by the
// decoders into int64 and map[string]any.
func normalizeTree(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeTree(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeTree(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeTree(item)
		}
		return out
	default:
		return v
	}
}

type treeNode struct {
	v any
}

func (n treeNode) kind() Type {
	switch n.v.(type) {
	case string:
		return TypeString
	case int64:
		return TypeInteger
	case float64:
		return TypeFloat
	case bool:
		return TypeBoolean
	case []any:
		return TypeArray
	case map[string]any:
		return TypeTable
	default:
		return TypeUnknown
	}
}

func (n treeNode) scalar() any { return n.v }

func (n treeNode) elems() []node {
	items, _ := n.v.([]any)
	out := make([]node, len(items))
	for i, item := range items {
		out[i] = treeNode{item}
	}
	return out
}

func (n treeNode) fields() ([]string, []node) {
	table, _ := n.v.(map[string]any)
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]node, len(keys))
	for i, k := range keys {
		vals[i] = treeNode{table[k]}
	}
	return keys, vals
}

func (n treeNode) native() any { return n.v }

func (n treeNode) decode(target any) error {
	data, err := yaml.Marshal(n.v)
	if err != nil {
		return errs.Newf(1, "Could not decode entry: %v", err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return errs.Newf(1, "Could not decode entry: %v", err)
	}
	return nil
}
