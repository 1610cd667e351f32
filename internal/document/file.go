// Package document reads and edits the structured files gobi is configured
// with.
//
// Two backends share the Entry and File contracts. Load parses into plain Go
// values and suits the read-mostly path taken on every invocation.
// LoadEditable keeps the yaml node tree so comments and key order survive a
// read-modify-write cycle. Entries never hold a mutable reference: File.Set
// replays the entry's path from the root at mutation time.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/gobi/internal/errs"
)

var (
	ErrPathNotFound = errs.New(1, "Path not found in document")
	ErrOutOfBounds  = errs.New(1, "Tried setting out of bounds index into array")
	ErrIndexOnValue = errs.New(1, "Tried setting an integer index on a non-array type")
	ErrKeyOnValue   = errs.New(1, "Tried setting a string key on a non-table type")
	ErrForeignEntry = errs.New(1, "Tried setting value of entry with an entry from another document")
	ErrEmptyArray   = errs.New(1, "Called pop on an empty array")
	ErrPopNonArray  = errs.New(1, "Called pop on a non-array type")
	ErrPushNonArray = errs.New(1, "Called push on a non-array type")
	ErrNoneValue    = errs.New(1, "Cannot store an empty value inside an array or table")
	ErrParse        = errs.New(1, "Could not parse document")
)

// File owns a document tree and the path it was loaded from.
type File interface {
	// Path is the file the document was read from and is saved to.
	Path() string
	// Depth counts how many includes led to this document. Top-level files
	// have depth 0.
	Depth() int
	Data() Entry
	// Set replays entry's path from the root and stores v at seg below it.
	// Index(len) appends to an array. None deletes the location.
	Set(e Entry, seg Segment, v Value) error
	Drop(e Entry, seg Segment) error
	Push(e Entry, v Value) error
	Pop(e Entry) (Entry, error)
	Save() error
}

// Format names an on-disk grammar.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DetectFormat picks a grammar from the file extension. YAML is the default;
// JSON documents parse as YAML.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

type options struct {
	depth  int
	format Format
}

// Option customises Load and Parse.
type Option func(*options)

// WithDepth records the include depth of the loaded document.
func WithDepth(depth int) Option {
	return func(o *options) { o.depth = depth }
}

func buildOptions(path string, opts []Option) options {
	o := options{format: DetectFormat(path)}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Load reads path into the value backend.
func Load(path string, opts ...Option) (File, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data, opts...)
}

// LoadEditable reads path into the layout-preserving backend. TOML files fall
// back to the value backend, which rewrites the whole file on Save.
func LoadEditable(path string, opts ...Option) (File, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseEditable(path, data, opts...)
}

// Parse decodes data into the value backend. path is only recorded for Save
// and for resolving relative paths.
func Parse(path string, data []byte, opts ...Option) (File, error) {
	o := buildOptions(path, opts)
	return parseTree(path, data, o)
}

// ParseEditable decodes data into the layout-preserving backend.
func ParseEditable(path string, data []byte, opts ...Option) (File, error) {
	o := buildOptions(path, opts)
	if o.format == FormatTOML {
		return parseTree(path, data, o)
	}
	return parseNodes(path, data, o)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrapf(ErrParse, "Could not read file '%s': %v", path, err)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Newf(1, "Could not write file '%s': %v", path, err)
	}
	return nil
}

// Dir returns the directory holding f.
func Dir(f File) string {
	return filepath.Dir(f.Path())
}

// lookup re-resolves p against the current root of f.
func lookup(f File, p Path) (Entry, error) {
	root := f.Data()
	if len(p) == 0 {
		return root, nil
	}
	e, ok := root.GetNested(p...)
	if !ok {
		return nil, errs.Wrapf(ErrPathNotFound, "Path '%s' not found in %s", p, f.Path())
	}
	return e, nil
}

// ownedBy checks e was produced by owner and returns its internal form.
func ownedBy(e Entry, owner any) (*entry, error) {
	in, ok := e.(*entry)
	if !ok || in.owner != owner {
		return nil, ErrForeignEntry
	}
	return in, nil
}

func drop(f File, e Entry, seg Segment) error {
	return f.Set(e, seg, None())
}

func push(f File, e Entry, v Value) error {
	if _, err := ownedBy(e, f); err != nil {
		return err
	}
	cur, err := lookup(f, e.Path())
	if err != nil {
		return err
	}
	n, ok := cur.Len()
	if !ok {
		return ErrPushNonArray
	}
	return f.Set(e, Index(n), v)
}

func pop(f File, e Entry) (Entry, error) {
	if _, err := ownedBy(e, f); err != nil {
		return nil, err
	}
	cur, err := lookup(f, e.Path())
	if err != nil {
		return nil, err
	}
	items, ok := cur.Array()
	if !ok {
		return nil, ErrPopNonArray
	}
	if len(items) == 0 {
		return nil, ErrEmptyArray
	}
	last := items[len(items)-1]
	if err := f.Set(e, Index(len(items)-1), None()); err != nil {
		return nil, err
	}
	return last, nil
}

func describe(f File, p Path) string {
	if len(p) == 0 {
		return fmt.Sprintf("root of %s", f.Path())
	}
	return fmt.Sprintf("'%s' in %s", p, f.Path())
}
