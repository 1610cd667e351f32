package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/config"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/logging"
	"github.com/kingrea/gobi/internal/project"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/recipes"
	"github.com/kingrea/gobi/plugins"
)

const progName = "gobi"

// errUsage has already been reported to the user.
var errUsage = errs.New(1, "usage")

type streams struct {
	in       io.Reader
	out, err io.Writer
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	s := streams{in: stdin, out: stdout, err: stderr}
	root := &cobra.Command{
		Use:                progName + " <mode> [args]",
		Short:              "Config-driven task runner",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := ""
			if len(args) > 0 {
				mode = args[0]
			}
			fmt.Fprintf(stderr, "Unknown mode: %s\nUsage: %s <mode> [args]\n", mode, progName)
			return errUsage
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(runCmd(s), completionCmd(s))
	root.SetArgs(args)

	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 1
	}
	fmt.Fprintf(stderr, "Error: %s\n", err.Error())
	return errs.Code(err)
}

func runCmd(s streams) *cobra.Command {
	return &cobra.Command{
		Use:                "run [project...] <action> [args...]",
		Short:              "Run an action",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRoot(s, func(root *project.Action, ctx *action.Context) error {
				ctx.Log.Info("run: %v", args)
				err := root.Run(ctx, nil, args)
				if err != nil {
					ctx.Log.Error("run failed (code %d): %v", errs.Code(err), err)
				}
				return err
			})
		},
	}
}

func completionCmd(s streams) *cobra.Command {
	return &cobra.Command{
		Use:                "completion [project...] [action] [args...]",
		Short:              "Print completion candidates, one per line",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRoot(s, func(root *project.Action, ctx *action.Context) error {
				candidates, err := root.Completion(ctx, nil, args)
				if err != nil {
					return err
				}
				for _, c := range candidates {
					fmt.Fprintln(s.out, c)
				}
				return nil
			})
		},
	}
}

// withRoot boots the recipe manager and calls fn with the root project
// action and a context bound to s.
func withRoot(s streams, fn func(*project.Action, *action.Context) error) error {
	settings, err := config.New()
	if err != nil {
		return err
	}
	log := openLog(settings, s.err)
	defer log.Close()

	m, err := newManager(settings)
	if err != nil {
		log.Error("startup: %v", err)
		return err
	}
	log.Info("startup: core file %s, modules %v, recipes %v", settings.CoreFile, m.Modules(), m.Names())
	root := project.New("", settings.CoreFile, m)
	ctx := action.NewContext(log).WithIO(s.in, s.out, s.err)
	return fn(root, ctx)
}

func openLog(settings *config.Settings, stderr io.Writer) *logging.Logger {
	if !settings.LoggingEnabled() {
		return nil
	}
	log, err := logging.New(settings.LogFile)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
		return nil
	}
	return log
}

// newManager registers the project recipe, then the recipe module, then the
// scripted plugins.
func newManager(settings *config.Settings) (*recipe.Manager, error) {
	m := recipe.NewManager()
	m.SetMaxDepth(settings.MaxDepth)
	if err := project.Register(m); err != nil {
		return nil, err
	}
	if settings.BuiltinRecipes() {
		if err := recipes.RegisterBuiltins(m); err != nil {
			return nil, err
		}
	} else {
		if _, err := os.Stat(settings.RecipeModule); err != nil {
			return nil, errs.Newf(1, "Could not find %s", filepath.Base(settings.RecipeModule))
		}
		if err := m.LoadNativeModule(settings.RecipeModule); err != nil {
			return nil, err
		}
	}
	if err := plugins.RegisterDir(m, settings.PluginDir); err != nil {
		return nil, err
	}
	return m, nil
}
