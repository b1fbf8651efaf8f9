package dispatch

import (
	"context"
	"strings"
)

// Refiner supplies the pieces of command refinement. Each accessor may do
// asynchronous work, such as a per-guild prefix lookup against a cache.
type Refiner interface {
	Prefix(ctx context.Context) (string, error)
	Aliases(ctx context.Context) ([]string, error)
	Filters(ctx context.Context) ([]Filter, error)
}

// Filter is one asynchronous predicate over a candidate invocation.
type Filter func(ctx context.Context, inv *Invocation) (bool, error)

// Invocation is a refined chat command.
type Invocation struct {
	Name string
	Args []string
}

// Refine turns raw message content into a command invocation: prefix match,
// alias match, then every filter in order with short-circuit on the first
// rejection. The boolean is false when the content is not a command.
func Refine(ctx context.Context, refiner Refiner, content string) (*Invocation, bool, error) {
	prefix, err := refiner.Prefix(ctx)
	if err != nil {
		return nil, false, err
	}
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return nil, false, nil
	}

	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return nil, false, nil
	}

	aliases, err := refiner.Aliases(ctx)
	if err != nil {
		return nil, false, err
	}
	name := ""
	for _, alias := range aliases {
		if strings.EqualFold(alias, fields[0]) {
			name = alias
			break
		}
	}
	if name == "" {
		return nil, false, nil
	}

	inv := &Invocation{Name: name, Args: fields[1:]}

	filters, err := refiner.Filters(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, filter := range filters {
		ok, err := filter(ctx, inv)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
	}

	return inv, true, nil
}
