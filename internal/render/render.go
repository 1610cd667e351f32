// Package render expands text/template placeholders in configuration
// strings such as shell commands, env values and included files.
package render

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/kingrea/gobi/internal/errs"
)

// ErrTemplate marks a template that failed to parse or execute.
var ErrTemplate = errs.New(1, "Failed to render template")

// String renders tmpl against vars. Variables are referenced as {{.NAME}}
// and missing ones expand to the empty string. The env function looks a
// variable up by a computed name: {{env "HOME"}}. Text without "{{" is
// returned unchanged.
func String(tmpl string, vars map[string]string) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}
	if vars == nil {
		vars = map[string]string{}
	}
	funcs := template.FuncMap{
		"env": func(key string) string { return vars[key] },
	}
	return execute(tmpl, funcs, vars)
}

func execute(tmpl string, funcs template.FuncMap, data any) (string, error) {
	parsed, err := template.New("gobi").Option("missingkey=zero").Funcs(funcs).Parse(tmpl)
	if err != nil {
		return "", errs.Wrapf(ErrTemplate, "Failed to render template: %v", err)
	}
	var buf bytes.Buffer
	if err := parsed.Execute(&buf, data); err != nil {
		return "", errs.Wrapf(ErrTemplate, "Failed to render template: %v", err)
	}
	return buf.String(), nil
}
