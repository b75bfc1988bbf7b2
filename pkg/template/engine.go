package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/fakereq/internal/matching"
)

// Engine processes templates with variable substitution.
// It is stateless and safe for concurrent use.
type Engine struct{}

// New creates a new template engine.
func New() *Engine {
	return &Engine{}
}

// templateRegex matches {{expression}} patterns with optional whitespace.
var templateRegex = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

// funcCallPattern matches upper(value), lower(value) and default(value, fallback).
var funcCallPattern = regexp.MustCompile(`^(\w+)\((.+)\)$`)

// Process evaluates a template string with the given context.
// It finds all {{expression}} patterns and replaces them with evaluated results.
func (e *Engine) Process(template string, ctx *Context) (string, error) {
	if strings.Contains(templateRegex.ReplaceAllString(template, ""), "{{") {
		return "", fmt.Errorf("unclosed template expression in %q", template)
	}

	result := templateRegex.ReplaceAllStringFunc(template, func(match string) string {
		inner := templateRegex.FindStringSubmatch(match)
		if len(inner) < 2 {
			return match
		}
		return e.evaluate(strings.TrimSpace(inner[1]), ctx)
	})

	return result, nil
}

// evaluate processes a single template expression and returns its value.
// Returns empty string for unknown expressions.
func (e *Engine) evaluate(expr string, ctx *Context) string {
	switch expr {
	case "now":
		return funcNow()
	case "uuid":
		return uuid.NewString()
	case "uuid.short":
		return funcUUIDShort()
	case "timestamp", "timestamp.unix":
		return strconv.FormatInt(time.Now().Unix(), 10)
	case "timestamp.unix_ms":
		return funcTimestampMilli()
	}

	if strings.HasPrefix(expr, "request.") {
		return e.evaluateRequest(expr[len("request."):], ctx)
	}

	if matches := funcCallPattern.FindStringSubmatch(expr); matches != nil {
		return e.evaluateFunc(matches[1], matches[2], ctx)
	}

	return ""
}

func (e *Engine) evaluateFunc(name, argsStr string, ctx *Context) string {
	switch name {
	case "upper":
		return strings.ToUpper(e.resolveValue(argsStr, ctx))
	case "lower":
		return strings.ToLower(e.resolveValue(argsStr, ctx))
	case "default":
		args := splitFuncArgs(argsStr)
		if len(args) < 2 {
			return ""
		}
		return funcDefault(e.resolveValue(args[0], ctx), parseStringArg(args[1]))
	}
	return ""
}

// evaluateRequest resolves request.* fields.
func (e *Engine) evaluateRequest(field string, ctx *Context) string {
	if ctx == nil {
		return ""
	}

	switch field {
	case "method":
		return ctx.Method
	case "path":
		return ctx.Path
	case "uri":
		return ctx.URI
	case "body":
		return string(ctx.Body)
	}

	if name, ok := strings.CutPrefix(field, "params."); ok {
		return ctx.param(name)
	}
	if name, ok := strings.CutPrefix(field, "query."); ok {
		return ctx.query(name)
	}
	if name, ok := strings.CutPrefix(field, "header."); ok {
		return ctx.header(name)
	}
	if path, ok := strings.CutPrefix(field, "json."); ok {
		return lookupJSON(path, ctx.Body)
	}

	return ""
}

// resolveValue treats quoted strings as literals and everything else as an
// expression.
func (e *Engine) resolveValue(ref string, ctx *Context) string {
	ref = strings.TrimSpace(ref)
	if unquoted := parseStringArg(ref); unquoted != ref {
		return unquoted
	}
	return e.evaluate(ref, ctx)
}

func lookupJSON(path string, body []byte) string {
	if !strings.HasPrefix(path, "$") {
		path = "$." + path
	}
	v, ok := matching.LookupJSONPath(path, body)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
