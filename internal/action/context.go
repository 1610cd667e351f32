package action

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/kingrea/gobi/internal/logging"
)

// Environment keys exported to child processes.
const (
	EnvFile        = "GOBI_FILE"
	EnvDir         = "GOBI_DIR"
	EnvAction      = "GOBI_ACTION"
	EnvActionFull  = "GOBI_ACTION_FULL"
	EnvProject     = "GOBI_PROJECT"
	EnvProjectList = "GOBI_PROJECT_LIST"
	EnvRunID       = "GOBI_RUN_ID"
)

// ProjectListSeparator joins nested project names in GOBI_PROJECT_LIST.
const ProjectListSeparator = ";"

// Context carries the dispatch state into every Run and Completion call. It
// is threaded explicitly instead of living in the process environment; Env
// renders it for leaf actions that spawn processes.
type Context struct {
	// File is the document the current action was created from.
	File string
	// Action and ActionFull are the subname and qualified name of the action
	// being dispatched.
	Action     string
	ActionFull string
	// Project is the project owning File, Chain every nested project that
	// led to it (root excluded).
	Project string
	Chain   []string
	RunID   string
	// Vars holds extra variables set by composing actions such as argparse.
	Vars map[string]string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    *logging.Logger
}

// NewContext returns a root context bound to the process streams.
func NewContext(log *logging.Logger) *Context {
	return &Context{
		RunID:  uuid.NewString(),
		Vars:   map[string]string{},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Log:    log,
	}
}

func (ctx *Context) clone() *Context {
	c := *ctx
	c.Chain = append([]string(nil), ctx.Chain...)
	c.Vars = make(map[string]string, len(ctx.Vars))
	for k, v := range ctx.Vars {
		c.Vars[k] = v
	}
	return &c
}

// Dir is the directory holding File.
func (ctx *Context) Dir() string {
	if ctx.File == "" {
		return ""
	}
	return filepath.Dir(ctx.File)
}

// WithProject enters a project. The root project ("gobi") resets the chain.
func (ctx *Context) WithProject(name, file string, root bool) *Context {
	c := ctx.clone()
	c.Project = name
	c.File = file
	if root {
		c.Chain = nil
	} else {
		c.Chain = append(c.Chain, name)
	}
	return c
}

// WithAction records the action about to be dispatched.
func (ctx *Context) WithAction(a Action) *Context {
	c := ctx.clone()
	c.Action = a.Subname()
	c.ActionFull = a.Name()
	return c
}

// WithVars returns a copy with vars added on top of the existing ones.
func (ctx *Context) WithVars(vars map[string]string) *Context {
	c := ctx.clone()
	for k, v := range vars {
		c.Vars[k] = v
	}
	return c
}

// WithIO returns a copy writing to the given streams. Nil streams are kept.
func (ctx *Context) WithIO(stdin io.Reader, stdout, stderr io.Writer) *Context {
	c := ctx.clone()
	if stdin != nil {
		c.Stdin = stdin
	}
	if stdout != nil {
		c.Stdout = stdout
	}
	if stderr != nil {
		c.Stderr = stderr
	}
	return c
}

// Env renders the context as environment variables.
func (ctx *Context) Env() map[string]string {
	env := make(map[string]string, len(ctx.Vars)+7)
	for k, v := range ctx.Vars {
		env[k] = v
	}
	if ctx.File != "" {
		env[EnvFile] = ctx.File
		env[EnvDir] = ctx.Dir()
	}
	if ctx.ActionFull != "" {
		env[EnvAction] = ctx.Action
		env[EnvActionFull] = ctx.ActionFull
	}
	if ctx.Project != "" {
		env[EnvProject] = ctx.Project
	}
	if len(ctx.Chain) > 0 {
		env[EnvProjectList] = strings.Join(ctx.Chain, ProjectListSeparator)
	}
	if ctx.RunID != "" {
		env[EnvRunID] = ctx.RunID
	}
	return env
}

// Environ merges Env over base (KEY=VALUE pairs, as from os.Environ) and
// drops inherited gobi keys the context does not set.
func (ctx *Context) Environ(base []string) []string {
	env := ctx.Env()
	out := make([]string, 0, len(base)+len(env))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, override := env[key]; override {
			continue
		}
		if strings.HasPrefix(key, "GOBI_") && isContextKey(key) {
			continue
		}
		out = append(out, kv)
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

func isContextKey(key string) bool {
	switch key {
	case EnvFile, EnvDir, EnvAction, EnvActionFull, EnvProject, EnvProjectList, EnvRunID:
		return true
	}
	return false
}
