// Package security evaluates role-based policies for sensitive order
// operations. Policies are CEL expressions over the caller's role and
// the requested action, so deployments can tighten or relax the rules
// without a rebuild.
package security

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"bakehouse/internal/core/apperror"
)

// DefaultStatusPolicy is the stock rule: regular staff cannot change
// order status at all, and junior supervisors can do everything except
// cancel.
const DefaultStatusPolicy = `role != 'STAFF' && !(role == 'SUPERVISOR_JUNIOR' && target == 'CANCELLED')`

// DefaultDeletePolicy restricts order deletion to senior roles.
const DefaultDeletePolicy = `role == 'ADMIN' || role == 'SUPERVISOR_SENIOR'`

// Policy is a compiled CEL rule deciding whether a role may perform an
// action. Expressions see two string variables: role and target.
type Policy struct {
	program cel.Program
	expr    string
}

// CompilePolicy compiles a CEL expression into a reusable Policy.
// The expression must evaluate to bool.
func CompilePolicy(expr string) (*Policy, error) {
	env, err := cel.NewEnv(
		cel.Variable("role", cel.StringType),
		cel.Variable("target", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create policy env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile policy %q: %w", expr, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("policy %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build policy program: %w", err)
	}

	return &Policy{program: program, expr: expr}, nil
}

// MustCompilePolicy is CompilePolicy for built-in expressions.
func MustCompilePolicy(expr string) *Policy {
	p, err := CompilePolicy(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Allows reports whether role may perform the action on target.
func (p *Policy) Allows(role, target string) (bool, error) {
	out, _, err := p.program.Eval(map[string]any{
		"role":   role,
		"target": target,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate policy %q: %w", p.expr, err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("policy %q returned %T, want bool", p.expr, out.Value())
	}
	return allowed, nil
}

// Authorize returns a Forbidden error when the policy denies the action
// and wraps evaluation failures as internal errors.
func (p *Policy) Authorize(role, target string) error {
	allowed, err := p.Allows(role, target)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if !allowed {
		return apperror.NewForbidden("role is not allowed to perform this action").
			WithDetail("role", role).
			WithDetail("target", target)
	}
	return nil
}
