package goods_receipt

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"backoffice/internal/core/apperror"
)

// PricingRules are extra, operator-configured checks evaluated per item after
// ValidatePricing. Each rule is a CEL expression that must evaluate to true, e.g.
//
//	!hasMrp || salePrice >= mrp * 0.5
//
// Variables: salePrice, mrp, unitCost, marginPct, markupPct (double; 0 when absent),
// hasMrp, hasUnitCost (bool).
type PricingRules struct {
	rules []compiledRule
}

type compiledRule struct {
	expr    string
	program cel.Program
}

// NewPricingEnv declares the variables rules can reference.
func NewPricingEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("salePrice", cel.DoubleType),
		cel.Variable("mrp", cel.DoubleType),
		cel.Variable("unitCost", cel.DoubleType),
		cel.Variable("marginPct", cel.DoubleType),
		cel.Variable("markupPct", cel.DoubleType),
		cel.Variable("hasMrp", cel.BoolType),
		cel.Variable("hasUnitCost", cel.BoolType),
	)
}

// CompilePricingRules compiles ;-separated expressions. Empty input yields no rules.
func CompilePricingRules(source string) (*PricingRules, error) {
	env, err := NewPricingEnv()
	if err != nil {
		return nil, fmt.Errorf("pricing rules env: %w", err)
	}

	pr := &PricingRules{}
	for _, expr := range strings.Split(source, ";") {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile pricing rule %q: %w", expr, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("pricing rule %q must evaluate to bool, got %s", expr, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program pricing rule %q: %w", expr, err)
		}
		pr.rules = append(pr.rules, compiledRule{expr: expr, program: prg})
	}
	return pr, nil
}

// Len returns the number of compiled rules.
func (p *PricingRules) Len() int {
	if p == nil {
		return 0
	}
	return len(p.rules)
}

// Check evaluates every rule against every item. The first failing rule rejects the call.
func (p *PricingRules) Check(items []ItemInput) error {
	if p.Len() == 0 {
		return nil
	}
	for i := range items {
		vars := ruleVars(&items[i])
		for _, r := range p.rules {
			out, _, err := r.program.Eval(vars)
			if err != nil {
				return apperror.NewLineValidation(i+1, "salePrice", fmt.Sprintf("pricing rule %q failed to evaluate", r.expr)).
					WithCause(err)
			}
			ok, isBool := out.Value().(bool)
			if !isBool || !ok {
				return apperror.NewLineValidation(i+1, "salePrice", fmt.Sprintf("pricing rule violated: %s", r.expr)).
					WithDetail("rule", r.expr)
			}
		}
	}
	return nil
}

func ruleVars(it *ItemInput) map[string]any {
	vars := map[string]any{
		"salePrice":   0.0,
		"mrp":         0.0,
		"unitCost":    0.0,
		"marginPct":   0.0,
		"markupPct":   0.0,
		"hasMrp":      it.MRP != nil && it.MRP.IsPositive(),
		"hasUnitCost": it.UnitPrice != nil && it.UnitPrice.IsPositive(),
	}
	if it.SalePrice != nil {
		vars["salePrice"] = it.SalePrice.InexactFloat64()
	}
	if it.MRP != nil {
		vars["mrp"] = it.MRP.InexactFloat64()
	}
	if it.UnitPrice != nil {
		vars["unitCost"] = it.UnitPrice.InexactFloat64()
	}
	if it.MarginPct != nil {
		vars["marginPct"] = it.MarginPct.InexactFloat64()
	}
	if it.MarkupPct != nil {
		vars["markupPct"] = it.MarkupPct.InexactFloat64()
	}
	return vars
}
