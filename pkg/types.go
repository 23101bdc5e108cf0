package pkg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TaskType selects both the prompt template and the expected response shape.
type TaskType string

const (
	TaskPatientInsights      TaskType = "patient_insights"
	TaskScheduleOptimization TaskType = "schedule_optimization"
	TaskMessageGeneration    TaskType = "message_generation"
	TaskRequestTriage        TaskType = "request_triage"
)

// TaskTypes lists every supported task in dashboard order.
var TaskTypes = []TaskType{
	TaskPatientInsights,
	TaskScheduleOptimization,
	TaskMessageGeneration,
	TaskRequestTriage,
}

// Valid reports whether t is one of the four supported tasks.
func (t TaskType) Valid() bool {
	for _, known := range TaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Title is the human readable module name shown on the dashboard.
func (t TaskType) Title() string {
	switch t {
	case TaskPatientInsights:
		return "Patient Insights"
	case TaskScheduleOptimization:
		return "Schedule Optimizer"
	case TaskMessageGeneration:
		return "Message Generator"
	case TaskRequestTriage:
		return "Request Triage"
	default:
		return string(t)
	}
}

// TaskContext carries the form values for one request.  Values are scalars
// (string, number, bool) or lists of strings.
type TaskContext map[string]any

// String returns the value at key rendered as text, or placeholder when the
// key is absent or empty.
func (c TaskContext) String(key, placeholder string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return placeholder
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []string:
		s = strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprint(item))
		}
		s = strings.Join(parts, ", ")
	default:
		s = fmt.Sprint(t)
	}
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// Provider names one of the two hosted model backends.
type Provider string

const (
	ProviderPrimary   Provider = "primary"
	ProviderSecondary Provider = "secondary"
)

// DisplayName is the vendor label shown next to generated output.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderPrimary:
		return "OpenAI GPT-4"
	case ProviderSecondary:
		return "Google Gemini"
	default:
		return string(p)
	}
}

// Record is the normalized, shape-correct result of one task.
type Record interface {
	Task() TaskType
}

// Number is a float64 that also accepts numeric strings such as "$150",
// "85%" or "1,200" since models often quote amounts.
type Number float64

// A JSON null leaves n unchanged.
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("number: unsupported value %s", string(data))
	}
	f, err := parseLooseNumber(s)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

func parseLooseNumber(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("number: empty string")
	}
	token := strings.TrimPrefix(fields[0], "$")
	token = strings.TrimSuffix(token, "%")
	token = strings.ReplaceAll(token, ",", "")
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("number: %q is not numeric", s)
	}
	return f, nil
}

// Insight is one clinical recommendation for a patient.
type Insight struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Priority         string `json:"priority"`
	Impact           string `json:"impact"`
	RevenuePotential Number `json:"revenue_potential"`
	Reasoning        string `json:"reasoning"`
	Urgency          string `json:"urgency"`
}

// Insights is the patient_insights record: an ordered list of insights.
type Insights []Insight

func (Insights) Task() TaskType { return TaskPatientInsights }

// Recommendation is a single slot change proposed by the schedule optimizer.
type Recommendation struct {
	Day           string `json:"day"`
	Time          string `json:"time"`
	Action        string `json:"action"`
	RevenueImpact Number `json:"revenue_impact"`
	Reasoning     string `json:"reasoning"`
}

// UnmarshalJSON accepts "title" as an alias for "action".
func (r *Recommendation) UnmarshalJSON(data []byte) error {
	type plain Recommendation
	aux := struct {
		*plain
		Title string `json:"title"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.Action == "" {
		r.Action = aux.Title
	}
	return nil
}

// Optimization is the schedule_optimization record.
type Optimization struct {
	Recommendations    []Recommendation `json:"recommendations"`
	TotalRevenueImpact Number           `json:"total_revenue_impact"`
	TimeInvestment     Number           `json:"time_investment"`
	Reasoning          string           `json:"reasoning"`
}

func (Optimization) Task() TaskType { return TaskScheduleOptimization }

// Message is the message_generation record.
type Message struct {
	Content              string `json:"content"`
	GeneratedBy          string `json:"generated_by"`
	PersonalizationLevel string `json:"personalization_level"`
}

func (Message) Task() TaskType { return TaskMessageGeneration }

// SuggestedAction is a follow-up step proposed by triage.
type SuggestedAction struct {
	Action        string `json:"action"`
	Priority      string `json:"priority"`
	EstimatedTime string `json:"estimated_time"`
	Notes         string `json:"notes"`
}

// UnmarshalJSON also accepts a bare string, which models sometimes emit
// instead of an object.
func (a *SuggestedAction) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*a = SuggestedAction{
			Action:        text,
			Priority:      "Medium",
			EstimatedTime: "5-10 minutes",
			Notes:         "LLM-generated recommendation",
		}
		return nil
	}
	type plain SuggestedAction
	return json.Unmarshal(data, (*plain)(a))
}

// Triage is the request_triage record.
type Triage struct {
	Classification   string            `json:"classification"`
	Category         string            `json:"category"`
	Confidence       Number            `json:"confidence"`
	Urgency          string            `json:"urgency"`
	Sentiment        string            `json:"sentiment"`
	ResponseTime     string            `json:"response_time"`
	SuggestedActions []SuggestedAction `json:"suggested_actions"`
	Reasoning        string            `json:"reasoning"`
}

func (Triage) Task() TaskType { return TaskRequestTriage }

// Source tells whether a result came from a model reply or the fallback path.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// FallbackReason explains why no model output was used.
type FallbackReason string

const (
	ReasonNone         FallbackReason = ""
	ReasonDisabled     FallbackReason = "llm_disabled"
	ReasonNoCredential FallbackReason = "no_credential"
	ReasonCallFailed   FallbackReason = "call_failed"
	ReasonRenderFailed FallbackReason = "render_failed"
)

// DispatchResult is what the router hands back to callers: the record plus
// where it came from.
type DispatchResult struct {
	RequestID    string         `json:"request_id"`
	Task         TaskType       `json:"task"`
	Record       Record         `json:"record"`
	Source       Source         `json:"source"`
	Provider     Provider       `json:"provider"`
	Model        string         `json:"model"`
	Reason       FallbackReason `json:"fallback_reason,omitempty"`
	FallbackText string         `json:"fallback_text,omitempty"`
	Notice       string         `json:"notice,omitempty"`
	Duration     time.Duration  `json:"duration_ns"`
}

// ProviderStatus describes whether a provider can be called.
type ProviderStatus struct {
	Provider    Provider `json:"provider"`
	DisplayName string   `json:"display_name"`
	Model       string   `json:"model"`
	Ready       bool     `json:"ready"`
}

// Status summarises LLM readiness for the dashboard sidebar.
type Status struct {
	Enabled   bool             `json:"enabled"`
	Providers []ProviderStatus `json:"providers"`
}

// FallbackMode reports whether every task will use canned output.
func (s Status) FallbackMode() bool {
	if !s.Enabled {
		return true
	}
	for _, p := range s.Providers {
		if p.Ready {
			return false
		}
	}
	return true
}
