// Package binder implements the Argument Binder (C5, spec.md §4.5):
// mapping positional call arguments onto a FunctionExpression's declared
// parameters, respecting required/optional parity, and extending a
// cloned memory frame with the result.
package binder

import (
	"fmt"

	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/memory"
	"github.com/cadkit/kcl-core/internal/value"
)

// Bind extends callerMemory's clone with fn's parameters bound to args,
// per spec.md §4.5 steps 1–4. The source range for arity errors points
// at the function expression itself.
func Bind(fn *kclast.FunctionExpression, args []value.Value, callerMemory *memory.Memory) (*memory.Memory, error) {
	min, max := fn.MinMaxParams()
	n := len(args)
	if n > max {
		return nil, arityError(min, max, n, fn.Pos())
	}

	extended := callerMemory.Clone()
	for i, param := range fn.Params {
		var bound value.Value
		if i < n {
			bound = args[i]
		} else if param.Optional {
			bound = value.None(value.Metadata{Range: param.Range})
		} else {
			return nil, arityError(min, max, n, fn.Pos())
		}
		if err := extended.Add(param.Name, bound, param.Range); err != nil {
			return nil, err
		}
	}
	return extended, nil
}

func arityError(min, max, n int, rng kclast.SourceRange) error {
	var msg string
	if min == max {
		msg = fmt.Sprintf("Expected %d arguments, got %d", min, n)
	} else {
		msg = fmt.Sprintf("Expected %d-%d arguments, got %d", min, max, n)
	}
	return kclerrors.New(kclerrors.Semantic, msg, rng)
}
