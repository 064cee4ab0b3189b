package mcp

import (
	"encoding/json"
	"sync"

	"github.com/itchyny/gojq"

	"github.com/rendis/actionrules/pkg/schema"
)

// resultFilter applies jq expressions to tool results. Compiled queries are
// cached by expression text.
type resultFilter struct {
	mu    sync.RWMutex
	cache map[string]*gojq.Code
}

func newResultFilter() *resultFilter {
	return &resultFilter{cache: make(map[string]*gojq.Code)}
}

// Apply runs expression against v. v is first converted to plain JSON
// values, so structs and typed slices are seen the way clients see them.
// A single result is returned bare; several results come back as a slice.
func (f *resultFilter) Apply(expression string, v any) (any, error) {
	code, err := f.getOrCompile(expression)
	if err != nil {
		return nil, err
	}
	input, err := toJQValue(v)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeEvaluation, "serialize filter input").WithCause(err)
	}

	var results []any
	iter := code.Run(input)
	for {
		val, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := val.(error); isErr {
			return nil, schema.NewErrorf(schema.ErrCodeEvaluation,
				"jq runtime error in %q: %s", expression, err.Error()).
				WithCause(err).
				WithDetails(map[string]any{"expression": expression})
		}
		results = append(results, val)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

func (f *resultFilter) getOrCompile(expression string) (*gojq.Code, error) {
	f.mu.RLock()
	if code, ok := f.cache[expression]; ok {
		f.mu.RUnlock()
		return code, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if code, ok := f.cache[expression]; ok {
		return code, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"jq parse error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}
	code, err := gojq.Compile(query,
		gojq.WithEnvironLoader(func() []string { return nil }),
	)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"jq compile error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	f.cache[expression] = code
	return code, nil
}

// toJQValue round-trips v through JSON. gojq only accepts maps, slices,
// strings, bools, nil and float64/int numbers.
func toJQValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
