package pick

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/tui"
)

type stub struct {
	action.Base
	ran *[]string
}

func (s stub) Run(ctx *action.Context, _ []action.Action, args []string) error {
	*s.ran = append(*s.ran, append([]string{ctx.ActionFull}, args...)...)
	return nil
}

func fixture(choose Chooser) (*Action, []action.Action, *[]string) {
	ran := &[]string{}
	p := NewAction(choose)
	return p, []action.Action{
		stub{action.NewBase("shell.build", "build").WithHelp("builds"), ran},
		stub{action.NewBase("shell.test", "test"), ran},
		p,
	}, ran
}

func TestChoicesSkipPicker(t *testing.T) {
	_, siblings, _ := fixture(nil)
	got := Choices(siblings)
	want := []tui.Choice{{Name: "build", Help: "builds"}, {Name: "test", Help: action.DefaultHelp}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRunChosenAction(t *testing.T) {
	var offered []tui.Choice
	p, siblings, ran := fixture(func(_ *action.Context, _ string, choices []tui.Choice) (string, bool, error) {
		offered = choices
		return "test", true, nil
	})
	if err := p.Run(action.NewContext(nil), siblings, []string{"-x"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(offered) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(offered))
	}
	if !reflect.DeepEqual(*ran, []string{"shell.test", "-x"}) {
		t.Fatalf("unexpected runs %v", *ran)
	}
}

func TestRunNothingChosen(t *testing.T) {
	p, siblings, ran := fixture(func(*action.Context, string, []tui.Choice) (string, bool, error) {
		return "", false, nil
	})
	if err := p.Run(action.NewContext(nil), siblings, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(*ran) != 0 {
		t.Fatalf("nothing should run, got %v", *ran)
	}
}

func TestRunPickerFailure(t *testing.T) {
	p, siblings, _ := fixture(func(*action.Context, string, []tui.Choice) (string, bool, error) {
		return "", false, errors.New("no tty")
	})
	if err := p.Run(action.NewContext(nil), siblings, nil); !errors.Is(err, ErrPicker) {
		t.Fatalf("expected picker error, got %v", err)
	}
}
