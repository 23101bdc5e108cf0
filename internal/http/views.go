package http

import (
	"fmt"
	"html/template"
	"strings"

	"pharmacy-copilot/pkg"
)

var templateFuncs = template.FuncMap{
	"money": func(n pkg.Number) string { return fmt.Sprintf("$%g", float64(n)) },
	"num":   func(n pkg.Number) string { return fmt.Sprintf("%g", float64(n)) },
	"lower": strings.ToLower,
	"inc":   func(i int) int { return i + 1 },
	"priorityClass": func(p string) string {
		switch strings.ToLower(p) {
		case "high":
			return "warning-box"
		case "medium":
			return "insight-box"
		default:
			return "success-box"
		}
	},
}

// resultView is the data behind the results panel.  Exactly one of the
// record fields is set, matching Task.
type resultView struct {
	Task         pkg.TaskType
	Result       pkg.DispatchResult
	Context      pkg.TaskContext
	Insights     pkg.Insights
	Optimization *pkg.Optimization
	Message      *pkg.Message
	Triage       *pkg.Triage
}

func newResultView(res pkg.DispatchResult, ctx pkg.TaskContext) resultView {
	v := resultView{Task: res.Task, Result: res, Context: ctx}
	switch rec := res.Record.(type) {
	case pkg.Insights:
		v.Insights = rec
	case pkg.Optimization:
		v.Optimization = &rec
	case pkg.Message:
		v.Message = &rec
	case pkg.Triage:
		v.Triage = &rec
	}
	return v
}

// Flag reports a boolean form option; absent options count as set so the
// JSON API shows every panel by default.
func (v resultView) Flag(name string) bool {
	b, ok := v.Context[name].(bool)
	return !ok || b
}

// Field returns a context value with a placeholder.
func (v resultView) Field(name, placeholder string) string {
	return v.Context.String(name, placeholder)
}

// AIPowered reports whether the record came from a model reply.
func (v resultView) AIPowered() bool {
	return v.Result.Source == pkg.SourceModel
}
