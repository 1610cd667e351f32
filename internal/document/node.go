package document

import (
	"bytes"
	"strconv"

	"github.com/kingrea/gobi/internal/errs"
	"gopkg.in/yaml.v3"
)

// nodeFile is the layout-preserving backend built on yaml.Node. Comments,
// key order and scalar styles of untouched nodes survive Save.
type nodeFile struct {
	path  string
	depth int
	doc   *yaml.Node
}

func parseNodes(path string, data []byte, o options) (*nodeFile, error) {
	doc := &yaml.Node{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, errs.Wrapf(ErrParse, "Could not parse '%s': %v", path, err)
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc = &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	return &nodeFile{path: path, depth: o.depth, doc: doc}, nil
}

func (f *nodeFile) Path() string { return f.path }
func (f *nodeFile) Depth() int   { return f.depth }

func (f *nodeFile) root() *yaml.Node { return f.doc.Content[0] }

func (f *nodeFile) Data() Entry {
	return newEntry(yamlNode{f.root()}, nil, f)
}

func (f *nodeFile) Set(e Entry, seg Segment, v Value) error {
	in, err := ownedBy(e, f)
	if err != nil {
		return err
	}
	target := f.root()
	for i, step := range in.path {
		next, ok := yamlNode{target}.child(step)
		if !ok {
			return errs.Wrapf(ErrPathNotFound, "Path %s not found", describe(f, in.path[:i+1]))
		}
		target = next
	}
	target = resolveAlias(target)

	var payload *yaml.Node
	if !v.IsNone() {
		payload, err = toYAMLNode(v)
		if err != nil {
			return err
		}
	}

	if i, ok := seg.AsIndex(); ok {
		if target.Kind != yaml.SequenceNode {
			return errs.Wrapf(ErrIndexOnValue, "%s at %s", ErrIndexOnValue.Msg, describe(f, in.path))
		}
		n := len(target.Content)
		switch {
		case i < 0 || i > n || (payload == nil && i == n):
			return errs.Wrapf(ErrOutOfBounds, "%s at %s", ErrOutOfBounds.Msg, describe(f, in.path))
		case payload == nil:
			target.Content = append(target.Content[:i:i], target.Content[i+1:]...)
		case i == n:
			target.Content = append(target.Content, payload)
		default:
			keepComments(target.Content[i], payload)
			target.Content[i] = payload
		}
		return nil
	}

	key, _ := seg.AsKey()
	if target.Kind != yaml.MappingNode {
		return errs.Wrapf(ErrKeyOnValue, "%s at %s", ErrKeyOnValue.Msg, describe(f, in.path))
	}
	for i := 0; i+1 < len(target.Content); i += 2 {
		if target.Content[i].Value != key {
			continue
		}
		if payload == nil {
			target.Content = append(target.Content[:i:i], target.Content[i+2:]...)
			return nil
		}
		keepComments(target.Content[i+1], payload)
		target.Content[i+1] = payload
		return nil
	}
	if payload == nil {
		return nil
	}
	if target.Style&yaml.FlowStyle != 0 && payload.Kind != yaml.ScalarNode {
		payload.Style |= yaml.FlowStyle
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	target.Content = append(target.Content, keyNode, payload)
	return nil
}

func (f *nodeFile) Drop(e Entry, seg Segment) error { return drop(f, e, seg) }
func (f *nodeFile) Push(e Entry, v Value) error     { return push(f, e, v) }
func (f *nodeFile) Pop(e Entry) (Entry, error)      { return pop(f, e) }

func (f *nodeFile) Save() error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f.doc); err != nil {
		return errs.Newf(1, "Could not encode '%s': %v", f.path, err)
	}
	if err := enc.Close(); err != nil {
		return errs.Newf(1, "Could not encode '%s': %v", f.path, err)
	}
	return writeFile(f.path, buf.Bytes())
}

func keepComments(old, replacement *yaml.Node) {
	if replacement.HeadComment == "" {
		replacement.HeadComment = old.HeadComment
	}
	if replacement.LineComment == "" {
		replacement.LineComment = old.LineComment
	}
	if replacement.FootComment == "" {
		replacement.FootComment = old.FootComment
	}
}

func toYAMLNode(v Value) (*yaml.Node, error) {
	if v.kind == KindEntry {
		if in, ok := v.entry.(*entry); ok {
			if yn, ok := in.node.(yamlNode); ok {
				return cloneNode(yn.n), nil
			}
		}
	}
	native, err := v.native()
	if err != nil {
		return nil, err
	}
	out := &yaml.Node{}
	if err := out.Encode(native); err != nil {
		return nil, errs.Newf(1, "Could not encode value: %v", err)
	}
	// Empty containers come back in flow style; keep them block so members
	// added later are written one per line.
	if len(out.Content) == 0 && (out.Kind == yaml.MappingNode || out.Kind == yaml.SequenceNode) {
		out.Style &^= yaml.FlowStyle
	}
	return out, nil
}

func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	clone := *n
	if len(n.Content) > 0 {
		clone.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			clone.Content[i] = cloneNode(c)
		}
	}
	return &clone
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

type yamlNode struct {
	n *yaml.Node
}

func (y yamlNode) child(seg Segment) (*yaml.Node, bool) {
	n := resolveAlias(y.n)
	if i, ok := seg.AsIndex(); ok {
		if n.Kind != yaml.SequenceNode || i < 0 || i >= len(n.Content) {
			return nil, false
		}
		return n.Content[i], true
	}
	key, _ := seg.AsKey()
	if n.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1], true
		}
	}
	return nil, false
}

func (y yamlNode) kind() Type {
	n := resolveAlias(y.n)
	switch n.Kind {
	case yaml.SequenceNode:
		return TypeArray
	case yaml.MappingNode:
		return TypeTable
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!str":
			return TypeString
		case "!!int":
			return TypeInteger
		case "!!float":
			return TypeFloat
		case "!!bool":
			return TypeBoolean
		}
	}
	return TypeUnknown
}

func (y yamlNode) scalar() any {
	n := resolveAlias(y.n)
	switch y.kind() {
	case TypeString:
		return n.Value
	case TypeInteger:
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil
		}
		return i
	case TypeFloat:
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil
		}
		return f
	case TypeBoolean:
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			var decoded bool
			if n.Decode(&decoded) != nil {
				return nil
			}
			return decoded
		}
		return b
	}
	return nil
}

func (y yamlNode) elems() []node {
	n := resolveAlias(y.n)
	if n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]node, len(n.Content))
	for i, c := range n.Content {
		out[i] = yamlNode{c}
	}
	return out
}

func (y yamlNode) fields() ([]string, []node) {
	n := resolveAlias(y.n)
	if n.Kind != yaml.MappingNode {
		return nil, nil
	}
	keys := make([]string, 0, len(n.Content)/2)
	vals := make([]node, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
		vals = append(vals, yamlNode{n.Content[i+1]})
	}
	return keys, vals
}

func (y yamlNode) native() any {
	var out any
	if err := y.n.Decode(&out); err != nil {
		return nil
	}
	return normalizeTree(out)
}

func (y yamlNode) decode(target any) error {
	if err := y.n.Decode(target); err != nil {
		return errs.Newf(1, "Could not decode entry: %v", err)
	}
	return nil
}
