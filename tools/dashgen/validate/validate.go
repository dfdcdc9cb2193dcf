// Package validate checks generated dashboards and rule files: every PromQL
// expression must parse and every metric it selects must be one the service
// exports.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/shopkeeper/tools/dashgen/rules"
)

// Result collects problems found by a validation pass.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found. Warnings do not fail validation.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// panelJSON is the subset of the Grafana panel model that carries queries.
type panelJSON struct {
	Title   string      `json:"title"`
	Type    string      `json:"type"`
	Panels  []panelJSON `json:"panels"`
	Targets []struct {
		RefID string `json:"refId"`
		Expr  string `json:"expr"`
	} `json:"targets"`
}

// Dashboard validates every query of dash, which must marshal to Grafana
// dashboard JSON. Panels without queries are reported as warnings.
func Dashboard(dash any, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.errorf("marshaling dashboard: %v", err)
		return res
	}
	var model struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(data, &model); err != nil {
		res.errorf("reading dashboard json: %v", err)
		return res
	}

	for _, p := range model.Panels {
		res.merge(panel(p, known))
	}
	return res
}

func panel(p panelJSON, known map[string]bool) Result {
	var res Result
	if p.Type == "row" {
		for _, inner := range p.Panels {
			res.merge(panel(inner, known))
		}
		return res
	}

	if len(p.Targets) == 0 {
		res.warnf("panel %q has no queries", p.Title)
	}
	for _, t := range p.Targets {
		where := fmt.Sprintf("panel %q query %s", p.Title, t.RefID)
		res.merge(Expr(where, t.Expr, known))
	}
	return res
}

// Rules validates the expressions of cr. Names recorded by cr count as
// known metrics for the other rules in it.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result

	all := make(map[string]bool, len(known))
	for name := range known {
		all[name] = true
	}
	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			if r.Record != "" {
				all[r.Record] = true
			}
		}
	}

	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			if name == "" {
				res.errorf("group %q has a rule with neither record nor alert", g.Name)
				continue
			}
			if r.Alert != "" && r.Labels["severity"] == "" {
				res.warnf("alert %s has no severity label", r.Alert)
			}
			res.merge(Expr(fmt.Sprintf("rule %s", name), r.Expr, all))
		}
	}
	return res
}

// Expr parses expr and checks that every selected metric is known. where
// prefixes the messages.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result
	if strings.TrimSpace(expr) == "" {
		res.errorf("%s: empty expression", where)
		return res
	}

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.errorf("%s: %v", where, err)
		return res
	}

	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok || vs.Name == "" {
			return nil
		}
		if !Known(vs.Name, known) {
			res.errorf("%s: unknown metric %s", where, vs.Name)
		}
		return nil
	})
	return res
}

// histogramSuffixes are the series a histogram exports beside its base name.
var histogramSuffixes = []string{"_bucket", "_sum", "_count"}

// Known reports whether name, or the histogram it is a series of, is in
// known.
func Known(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range histogramSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}
