package document

// Type is the shape of a document node.
type Type int

const (
	TypeUnknown Type = iota
	TypeString
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeArray
	TypeTable
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeArray:
		return "array"
	case TypeTable:
		return "table"
	default:
		return "unknown"
	}
}

// Entry is a read-only view of one node. Every entry remembers the path from
// its document root; File mutations replay that path instead of holding on to
// the node itself. Accessors return false when the node has another type.
type Entry interface {
	Path() Path
	Type() Type
	AsString() (string, bool)
	AsInt() (int64, bool)
	AsFloat() (float64, bool)
	AsBool() (bool, bool)
	Len() (int, bool)
	Array() ([]Entry, bool)
	Table() (map[string]Entry, bool)
	// Keys lists table members in document order where the backend keeps
	// one, sorted otherwise.
	Keys() ([]string, bool)
	Get(seg Segment) (Entry, bool)
	// GetNested walks segs from this entry. An empty walk finds nothing.
	GetNested(segs ...Segment) (Entry, bool)
	// Contains reports whether a table has key. The second result is false
	// when the entry is not a table.
	Contains(key string) (bool, bool)
	// Decode fills target from the node using yaml struct tags.
	Decode(target any) error
}

// node is the backend-specific half of an entry.
type node interface {
	kind() Type
	scalar() any
	elems() []node
	fields() ([]string, []node)
	native() any
	decode(target any) error
}

type entry struct {
	node  node
	path  Path
	owner any
}

func newEntry(n node, path Path, owner any) *entry {
	return &entry{node: n, path: path, owner: owner}
}

func (e *entry) child(n node, seg Segment) *entry {
	return newEntry(n, e.path.Append(seg), e.owner)
}

func (e *entry) Path() Path {
	out := make(Path, len(e.path))
	copy(out, e.path)
	return out
}

func (e *entry) Type() Type { return e.node.kind() }

func (e *entry) AsString() (string, bool) {
	if e.node.kind() != TypeString {
		return "", false
	}
	s, ok := e.node.scalar().(string)
	return s, ok
}

func (e *entry) AsInt() (int64, bool) {
	if e.node.kind() != TypeInteger {
		return 0, false
	}
	i, ok := e.node.scalar().(int64)
	return i, ok
}

func (e *entry) AsFloat() (float64, bool) {
	if e.node.kind() != TypeFloat {
		return 0, false
	}
	f, ok := e.node.scalar().(float64)
	return f, ok
}

func (e *entry) AsBool() (bool, bool) {
	if e.node.kind() != TypeBoolean {
		return false, false
	}
	b, ok := e.node.scalar().(bool)
	return b, ok
}

func (e *entry) Len() (int, bool) {
	if e.node.kind() != TypeArray {
		return 0, false
	}
	return len(e.node.elems()), true
}

func (e *entry) Array() ([]Entry, bool) {
	if e.node.kind() != TypeArray {
		return nil, false
	}
	elems := e.node.elems()
	out := make([]Entry, len(elems))
	for i, n := range elems {
		out[i] = e.child(n, Index(i))
	}
	return out, true
}

func (e *entry) Table() (map[string]Entry, bool) {
	if e.node.kind() != TypeTable {
		return nil, false
	}
	keys, vals := e.node.fields()
	out := make(map[string]Entry, len(keys))
	for i, k := range keys {
		out[k] = e.child(vals[i], Key(k))
	}
	return out, true
}

func (e *entry) Keys() ([]string, bool) {
	if e.node.kind() != TypeTable {
		return nil, false
	}
	keys, _ := e.node.fields()
	return keys, true
}

func (e *entry) Get(seg Segment) (Entry, bool) {
	if i, ok := seg.AsIndex(); ok {
		if e.node.kind() != TypeArray {
			return nil, false
		}
		elems := e.node.elems()
		if i < 0 || i >= len(elems) {
			return nil, false
		}
		return e.child(elems[i], seg), true
	}
	if e.node.kind() != TypeTable {
		return nil, false
	}
	key, _ := seg.AsKey()
	keys, vals := e.node.fields()
	for i, k := range keys {
		if k == key {
			return e.child(vals[i], seg), true
		}
	}
	return nil, false
}

func (e *entry) GetNested(segs ...Segment) (Entry, bool) {
	if len(segs) == 0 {
		return nil, false
	}
	var cur Entry = e
	for _, seg := range segs {
		next, ok := cur.Get(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func (e *entry) Contains(key string) (bool, bool) {
	if e.node.kind() != TypeTable {
		return false, false
	}
	keys, _ := e.node.fields()
	for _, k := range keys {
		if k == key {
			return true, true
		}
	}
	return false, true
}

func (e *entry) Decode(target any) error {
	return e.node.decode(target)
}

// StringAt is a convenience for reading an optional string member.
func StringAt(e Entry, segs ...Segment) (string, bool) {
	if e == nil {
		return "", false
	}
	child, ok := e.GetNested(segs...)
	if !ok {
		return "", false
	}
	return child.AsString()
}

// StringList reads an array of strings; non-string members fail the read.
func StringList(e Entry) ([]string, bool) {
	if e == nil {
		return nil, false
	}
	items, ok := e.Array()
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.AsString()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
