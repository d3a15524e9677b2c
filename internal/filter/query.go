package filter

import (
	"context"

	"chatfilter/pkg/cel"
	pkgerrors "chatfilter/pkg/errors"
)

// Query filters listed rules with a CEL expression over the `rule` map.
type Query struct {
	evaluator *cel.Evaluator
}

func NewQuery(evaluator *cel.Evaluator) *Query {
	return &Query{evaluator: evaluator}
}

func (q *Query) Filter(ctx context.Context, rules []FilterRule, expression string) ([]FilterRule, error) {
	if expression == "" {
		return rules, nil
	}

	program, err := q.evaluator.CompileFilter(expression)
	if err != nil {
		return nil, pkgerrors.ErrValidation.WithCause(err).WithDetail("field", "filter")
	}

	out := make([]FilterRule, 0, len(rules))
	for i := range rules {
		ok, err := program.Match(ctx, rules[i].ToMap())
		if err != nil {
			return nil, pkgerrors.ErrValidation.WithCause(err).WithDetail("field", "filter")
		}
		if ok {
			out = append(out, rules[i])
		}
	}
	return out, nil
}
