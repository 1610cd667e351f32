package document

import (
	"strconv"
	"strings"
)

// Segment addresses one step into a document tree: a table key or an array
// index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a segment selecting a table member.
func Key(name string) Segment {
	return Segment{key: name}
}

// Index returns a segment selecting an array element.
func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

// Keys converts dotted lookups like Keys("gobi", "help") into a path.
func Keys(names ...string) Path {
	p := make(Path, len(names))
	for i, name := range names {
		p[i] = Key(name)
	}
	return p
}

// AsKey returns the table key when the segment is a key.
func (s Segment) AsKey() (string, bool) {
	return s.key, !s.isIndex
}

// AsIndex returns the array index when the segment is an index.
func (s Segment) AsIndex() (int, bool) {
	return s.index, s.isIndex
}

func (s Segment) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.key
}

// Path is a sequence of segments relative to a document root.
type Path []Segment

// Append returns a new path extended by seg. The receiver is not modified.
func (p Path) Append(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if !seg.isIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}
