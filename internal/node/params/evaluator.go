package params

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tombee/conductor-clappia/pkg/errors"
)

// Evaluator evaluates parameter expressions against an item environment.
// It caches compiled expressions for repeated evaluation across items.
type Evaluator struct {
	cache map[string]*vm.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new expression evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]*vm.Program),
	}
}

// Evaluate runs expression with env and returns its value.
//
// Example:
//
//	env := map[string]any{"json": map[string]any{"id": "S1"}, "index": 0}
//	v, err := eval.Evaluate(`json.id`, env)
func (e *Evaluator) Evaluate(expression string, env map[string]any) (any, error) {
	program, err := e.compile(expression)
	if err != nil {
		return nil, &errors.ValidationError{
			Field:      "expression",
			Message:    fmt.Sprintf("failed to compile expression %q: %s", expression, err.Error()),
			Suggestion: "check expression syntax; item fields are available as json.<field>",
		}
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, &errors.ValidationError{
			Field:      "expression",
			Message:    fmt.Sprintf("expression %q failed: %s", expression, err.Error()),
			Suggestion: "verify that the referenced item fields exist",
		}
	}
	return result, nil
}

// compile compiles an expression and caches the result.
func (e *Evaluator) compile(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	prog, err := expr.Compile(expression,
		// item data differs per call; variables are bound at run time
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[expression] = prog
	e.mu.Unlock()

	return prog, nil
}
