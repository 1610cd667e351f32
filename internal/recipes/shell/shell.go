// Package shell generates actions that run a command through a shell.
//
// Each action writes its command to a temporary file and executes
// "<shell> <params...> <file> <args...>" in the configured working
// directory. The "gobi" entry of the section holds defaults shared by every
// action in the document; "command" cannot be defaulted.
package shell

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/render"
)

const (
	// RecipeName is the recipe name and the document section it reads.
	RecipeName = "shell"
	// DefaultsKey names the entry that supplies defaults.
	DefaultsKey = "gobi"

	defaultShell = "/bin/sh"
	defaultHelp  = "This shell action does not have a help message"
)

var (
	ErrInvalidConfig = errs.New(1, "Invalid shell config")
	ErrShellNotFound = errs.New(1, "Shell not found")
	ErrCwd           = errs.New(1, "Cwd does not exist")
	ErrCommand       = errs.New(1, "Command failed")
)

const recipeHelp = `Generate shell actions:

Shell actions write the 'command' parameter to a temporary file and run
'[shell] [params] [command file] [args]', where args are the arguments passed
on the command line.

[shell.<action name>.command] (required) : str
    command to run, rendered as a template over the environment

[shell.<action name>.shell] (optional) : str
    shell to use, defaults to /bin/sh

[shell.<action name>.extension] (optional) : str
    extension of the command file, defaults to ""

[shell.<action name>.params] (optional) : list[str]
    params passed to the shell before the command file

[shell.<action name>.env-file] (optional) : list[str]
    dotenv files loaded into the environment, relative to the gobi file

[shell.<action name>.eval-env] (optional) : dict[str, str]
    variables whose values are shell commands run from the directory of the
    gobi file; their trimmed output is the value

[shell.<action name>.env] (optional) : dict[str, str]
    variables to set; values are templates over the environment, e.g.
    "{{.HOME}}/bin"

[shell.<action name>.cwd] (optional) : str
    directory to run in, defaults to the current working directory

[shell.<action name>.completion] (optional) : str
    command printing completion candidates, one per line

[shell.<action name>.help] (optional) : str
    help text for the action

[shell.<action name>.priority] (optional) : bool
    whether the action wins subname ties, defaults to true

The action name 'gobi' is reserved for defaults shared by every action in
the file.`

// Config is the per-action configuration. Unset fields fall back to the
// defaults entry.
type Config struct {
	Shell      *string           `yaml:"shell"`
	Extension  *string           `yaml:"extension"`
	Params     []string          `yaml:"params"`
	EnvFiles   []string          `yaml:"env-file"`
	EvalEnv    map[string]string `yaml:"eval-env"`
	Env        map[string]string `yaml:"env"`
	Cwd        *string           `yaml:"cwd"`
	Help       *string           `yaml:"help"`
	Priority   *bool             `yaml:"priority"`
	Command    *string           `yaml:"command"`
	Completion *string           `yaml:"completion"`
}

// resolved is a Config with every default applied.
type resolved struct {
	shell      string
	extension  string
	params     []string
	envFiles   []string
	evalEnv    map[string]string
	env        map[string]string
	cwd        string
	command    string
	completion string
}

func pick(val, def *string, fallback string) string {
	switch {
	case val != nil:
		return *val
	case def != nil:
		return *def
	}
	return fallback
}

func resolve(cfg, def *Config) resolved {
	out := resolved{
		shell:     pick(cfg.Shell, def.Shell, defaultShell),
		extension: pick(cfg.Extension, def.Extension, ""),
		params:    cfg.Params,
		envFiles:  cfg.EnvFiles,
		evalEnv:   cfg.EvalEnv,
		env:       cfg.Env,
		cwd:       pick(cfg.Cwd, def.Cwd, ""),
		command:   pick(cfg.Command, nil, ""),
	}
	if out.params == nil {
		out.params = def.Params
	}
	if out.envFiles == nil {
		out.envFiles = def.EnvFiles
	}
	if out.evalEnv == nil {
		out.evalEnv = def.EvalEnv
	}
	if out.env == nil {
		out.env = def.Env
	}
	if cfg.Completion != nil {
		out.completion = *cfg.Completion
	}
	if out.cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			out.cwd = wd
		}
	}
	return out
}

// Action runs one configured command.
type Action struct {
	action.Base
	defaults *Config
	config   *Config
	file     string
}

// NewAction builds an action named recipeName.subname from cfg, falling back
// to defaults. file is the gobi file declaring it; relative paths resolve
// against its directory.
func NewAction(recipeName, subname string, defaults, cfg *Config, file string) *Action {
	if defaults == nil {
		defaults = &Config{}
	}
	priority := true
	if cfg.Priority != nil {
		priority = *cfg.Priority
	}
	help := defaultHelp
	switch {
	case cfg.Help != nil:
		help = *cfg.Help
	case defaults.Help != nil:
		help = *defaults.Help
	}
	return &Action{
		Base:     action.NewBase(recipeName+"."+subname, subname).WithHelp(help).WithPriority(priority),
		defaults: defaults,
		config:   cfg,
		file:     file,
	}
}

// Run implements action.Action.
func (a *Action) Run(ctx *action.Context, _ []action.Action, args []string) error {
	cfg := resolve(a.config, a.defaults)
	shell, cwd, env, err := a.setup(ctx, cfg)
	if err != nil {
		return err
	}
	command, err := render.String(cfg.command, env)
	if err != nil {
		return err
	}
	script, err := writeScript(command, cfg.extension)
	if err != nil {
		return err
	}
	defer os.Remove(script)

	cmd := exec.Command(shell, append(append(append([]string{}, cfg.params...), script), args...)...)
	cmd.Dir = cwd
	cmd.Env = environ(env)
	cmd.Stdin = ctx.Stdin
	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	ctx.Log.Info("shell %s: %s %s in %s", a.Name(), shell, strings.Join(cfg.params, " "), cwd)
	if err := cmd.Start(); err != nil {
		return errs.Newf(1, "Error starting up command: %v", err)
	}
	if err := cmd.Wait(); err != nil {
		return exitError(err, ErrCommand, "Command failed")
	}
	return nil
}

// Completion runs the configured completion command, or lists the working
// directory when there is none.
func (a *Action) Completion(ctx *action.Context, _ []action.Action, args []string) ([]string, error) {
	cfg := resolve(a.config, a.defaults)
	shell, cwd, env, err := a.setup(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.completion == "" {
		return listDir(cwd)
	}
	command, err := render.String(cfg.completion, env)
	if err != nil {
		return nil, err
	}
	out, err := capture(shell, cfg, command, cwd, env, args)
	if err != nil {
		return nil, exitError(err, ErrCommand, "Completion command failed with msg: '%s'", stderrOf(err))
	}
	var candidates []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			candidates = append(candidates, line)
		}
	}
	return candidates, nil
}

// setup locates the shell and builds the environment and working directory
// for a run. The environment is layered: process env, dispatch context,
// env files, eval-env, env.
func (a *Action) setup(ctx *action.Context, cfg resolved) (string, string, map[string]string, error) {
	shell, ok := which(cfg.shell)
	if !ok {
		return "", "", nil, errs.Wrapf(ErrShellNotFound, "Shell '%s' not found", cfg.shell)
	}
	dir := filepath.Dir(a.file)
	env := envMap(ctx.Environ(os.Environ()))

	if len(cfg.envFiles) > 0 {
		paths := make([]string, len(cfg.envFiles))
		for i, p := range cfg.envFiles {
			if !filepath.IsAbs(p) {
				p = filepath.Join(dir, p)
			}
			paths[i] = p
		}
		loaded, err := godotenv.Read(paths...)
		if err != nil {
			return "", "", nil, errs.Newf(1, "Error reading env file for '%s': %v", a.Subname(), err)
		}
		for k, v := range loaded {
			env[k] = v
		}
	}

	for _, key := range sortedKeys(cfg.evalEnv) {
		out, err := capture(shell, cfg, cfg.evalEnv[key], dir, env, nil)
		if err != nil {
			return "", "", nil, exitError(err, ErrCommand, "Eval-env command for '%s' failed with msg: '%s'", key, stderrOf(err))
		}
		env[key] = strings.TrimSpace(out)
	}

	for _, key := range sortedKeys(cfg.env) {
		value, err := render.String(cfg.env[key], env)
		if err != nil {
			return "", "", nil, err
		}
		env[key] = value
	}

	cwd, err := render.String(cfg.cwd, env)
	if err != nil {
		return "", "", nil, err
	}
	if info, err := os.Stat(cwd); err != nil || !info.IsDir() {
		return "", "", nil, errs.Wrapf(ErrCwd, "Cwd '%s' does not exist", cwd)
	}
	return shell, cwd, env, nil
}

type commandError struct {
	err    error
	stderr string
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

func stderrOf(err error) string {
	if ce, ok := err.(*commandError); ok {
		return ce.stderr
	}
	return err.Error()
}

// capture runs command and returns its stdout.
func capture(shell string, cfg resolved, command, dir string, env map[string]string, args []string) (string, error) {
	script, err := writeScript(command, cfg.extension)
	if err != nil {
		return "", err
	}
	defer os.Remove(script)

	cmd := exec.Command(shell, append(append(append([]string{}, cfg.params...), script), args...)...)
	cmd.Dir = dir
	cmd.Env = environ(env)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &commandError{err: err, stderr: stderr.String()}
	}
	return stdout.String(), nil
}

// exitError keeps the exit status of a failed process as the error code.
func exitError(err error, sentinel *errs.Error, format string, args ...any) error {
	wrapped := errs.Wrapf(sentinel, format, args...)
	if ce, ok := err.(*commandError); ok {
		err = ce.err
	}
	if exit, ok := err.(*exec.ExitError); ok && exit.ExitCode() > 0 {
		wrapped.Code = exit.ExitCode()
	}
	return wrapped
}

func writeScript(command, extension string) (string, error) {
	f, err := os.CreateTemp("", "gobi*"+extension)
	if err != nil {
		return "", errs.Newf(1, "Error creating command file: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(command); err != nil {
		os.Remove(f.Name())
		return "", errs.Newf(1, "Error writing command file: %v", err)
	}
	return f.Name(), nil
}

// which returns command itself when it names a file, else searches PATH.
func which(command string) (string, bool) {
	if info, err := os.Stat(command); err == nil && !info.IsDir() {
		return command, true
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return "", false
	}
	return path, true
}

func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Newf(1, "Error reading directory '%s': %v", dir, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out, nil
}

func envMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		out[k] = v
	}
	return out
}

func environ(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for _, k := range sortedKeys(env) {
		out = append(out, k+"="+env[k])
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Recipe reads the "shell" section.
type Recipe struct{}

func (Recipe) Name() string { return RecipeName }
func (Recipe) Help() string { return recipeHelp }

// CreateActions emits one action per entry of the section other than the
// defaults entry. Entries that fail to decode or lack a command are
// reported together.
func (Recipe) CreateActions(_ *recipe.Manager, doc document.File) ([]action.Action, error) {
	section, ok := doc.Data().Get(document.Key(RecipeName))
	if !ok {
		return nil, nil
	}
	table, ok := section.Table()
	if !ok {
		return nil, nil
	}
	defaults := &Config{}
	if def, ok := table[DefaultsKey]; ok && def.Type() == document.TypeTable {
		if err := def.Decode(defaults); err != nil {
			defaults = &Config{}
		}
	}
	keys, _ := section.Keys()
	var (
		out []action.Action
		c   errs.Collector
	)
	for _, name := range keys {
		if name == DefaultsKey {
			continue
		}
		cfg := &Config{}
		if err := table[name].Decode(cfg); err != nil || cfg.Command == nil {
			c.Add(errs.Wrapf(ErrInvalidConfig, "Invalid shell config for action '%s'", name))
			continue
		}
		out = append(out, NewAction(RecipeName, name, defaults, cfg, doc.Path()))
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Register installs the shell recipe.
func Register(m *recipe.Manager) error {
	return m.Register(Recipe{})
}
