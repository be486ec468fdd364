// Package template renders alert title and message templates. Templates
// use {{variable}} placeholders filled from a string context map.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/campushq/beacon/pkg/models"
)

// placeholderPattern matches {{ variable_name }} with optional inner
// whitespace. Variable names are word characters only.
var placeholderPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// RenderError reports a failed render, naming the first placeholder that
// had no value in the context.
type RenderError struct {
	Template string
	Variable string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template %q references undefined variable %q", e.Template, e.Variable)
}

// Render substitutes every {{variable}} placeholder in the template's
// title and message with values from ctx. Every placeholder must have a
// value; a missing one fails the whole render rather than emitting a
// half-filled alert. The template itself is never mutated.
func Render(tmpl *models.AlertTemplate, ctx map[string]string) (title, message string, err error) {
	title, err = renderString(tmpl.Name, tmpl.TitleTemplate, ctx)
	if err != nil {
		return "", "", err
	}
	message, err = renderString(tmpl.Name, tmpl.MessageTemplate, ctx)
	if err != nil {
		return "", "", err
	}
	return title, message, nil
}

// Variables returns the distinct placeholder names used by the template,
// in order of first appearance across title then message.
func Variables(tmpl *models.AlertTemplate) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, text := range []string{tmpl.TitleTemplate, tmpl.MessageTemplate} {
		for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
			name := match[1]
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

func renderString(templateName, text string, ctx map[string]string) (string, error) {
	var missing string
	rendered := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := ctx[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return match
		}
		return value
	})
	if missing != "" {
		return "", &RenderError{Template: templateName, Variable: missing}
	}
	return strings.TrimSpace(rendered), nil
}
