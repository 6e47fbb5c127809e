// Package policyrole evaluates which institutional roles may authorize a
// digital seal. Policies are plain rego; deployments can override the
// embedded default with a bundle on disk.
package policyrole

import (
	"context"
	"errors"

	"github.com/open-policy-agent/opa/rego"
)

const (
	defaultQuery = "data.custodia.sealpolicy.allow"

	// Any non-empty role may seal unless a deployment ships its own policy.
	defaultPolicy = `package custodia.sealpolicy

default allow = false

allow {
	input.role != ""
}
`
)

type Engine struct {
	query rego.PreparedEvalQuery
}

type roleInput struct {
	Role string `json:"role"`
}

// NewEngine compiles the embedded default policy.
func NewEngine(ctx context.Context) (*Engine, error) {
	return newEngine(ctx, rego.Module("sealpolicy.rego", defaultPolicy))
}

// NewEngineFromPath compiles a policy bundle from disk; the bundle must
// define data.custodia.sealpolicy.allow.
func NewEngineFromPath(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return nil, errors.New("policy path is required")
	}
	return newEngine(ctx, rego.Load([]string{path}, nil))
}

func newEngine(ctx context.Context, source func(*rego.Rego)) (*Engine, error) {
	prepared, err := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		source,
	).PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Allow(ctx context.Context, role string) (bool, error) {
	if e == nil {
		return false, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(roleInput{Role: role}))
	if err != nil {
		return false, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, errors.New("seal policy must evaluate to a boolean")
	}
	return allowed, nil
}
