package matching

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Expr is a compiled boolean expression evaluated against request data.
type Expr struct {
	source  string
	program *vm.Program
}

// CompileExpr compiles an expr-lang expression that must yield a bool.
func CompileExpr(source string) (*Expr, error) {
	program, err := expr.Compile(source, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", source, err)
	}
	return &Expr{source: source, program: program}, nil
}

// String returns the expression source.
func (e *Expr) String() string {
	return e.source
}

// Eval runs the expression against env.
func (e *Expr) Eval(env map[string]interface{}) (bool, error) {
	result, err := expr.Run(e.program, env)
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", e.source, err)
	}
	b, _ := result.(bool)
	return b, nil
}
