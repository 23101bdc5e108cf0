package core

// prompts.go holds the task prompt templates.  Keeping them in one file makes
// them easy to tweak without touching the router.

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"pharmacy-copilot/pkg"
)

const patientInsightsPrompt = `As a clinical pharmacist, analyze this patient data and provide intelligent recommendations:

Patient: {{ .name | default "Unknown" }}
Age: {{ value_or . "age" 45 }}
Conditions: {{ list_of .conditions }}
Recent Services: {{ list_of .services }}
Insurance: {{ .insurance | default "Unknown" }}
Last Visit: {{ .last_visit | default "Unknown" }}

Provide 3-5 clinical recommendations as a JSON array of objects with these fields:
- title: Recommendation title
- description: Detailed explanation
- priority: "high", "medium", or "low"
- impact: Clinical impact description
- revenue_potential: Estimated revenue in dollars, as a number
- reasoning: Why this recommendation is important
- urgency: Timeline for action

Focus on evidence-based medicine, revenue opportunities, and patient safety.`

const scheduleOptimizationPrompt = `As a pharmacy operations manager, analyze this schedule optimization request:

Target Service: {{ .target_service | default "Unknown" }}
Minimum Slots: {{ value_or . "min_slots" 2 }}
Revenue Threshold: ${{ value_or . "revenue_threshold" 100 }}
Priority: {{ .priority | default "Maximize Revenue" }}

Provide optimization recommendations in JSON format:
{
    "recommendations": [
        {
            "day": "Day of week",
            "time": "Time slot",
            "action": "Specific action",
            "revenue_impact": 0,
            "reasoning": "Strategic reasoning"
        }
    ],
    "total_revenue_impact": 0,
    "time_investment": 0,
    "reasoning": "Overall strategy explanation"
}

Amounts are dollars and time_investment is hours, all as numbers.
Focus on maximizing revenue while maintaining patient care quality.`

const messageGenerationPrompt = `As a pharmacy communication specialist, create a personalized patient message:

Message Type: {{ .message_type | default "General" }}
Patient Name: {{ .patient_name | default "Patient" }}
Urgency: {{ .urgency | default "Medium" }}
Channel: {{ .communication_channel | default "Email" }}
Tone: {{ .tone | default "Professional" }}
Context: {{ .context | default "No additional context" }}
{{- if eq (toString .include_personalization) "false" }}
Keep the message generic; do not reference personal details beyond the name.
{{- end }}

Create a personalized, professional message that:
1. Addresses the patient by name
2. Explains the clinical importance
3. Provides clear next steps
4. Maintains appropriate tone for urgency level
5. Includes contact information

Make it warm, professional, and actionable.`

const requestTriagePrompt = `As a pharmacy triage specialist, analyze this patient message:

Message: "{{ .message_text | default "" }}"

Provide analysis in JSON format:
{
    "classification": "intent_category",
    "category": "Human readable category",
    "confidence": 0,
    "urgency": "High/Medium/Low",
    "sentiment": "Positive/Negative/Neutral",
    "response_time": "recommended response time",
    "suggested_actions": [
        {
            "action": "action description",
            "priority": "High/Medium/Low",
            "estimated_time": "time estimate",
            "notes": "additional notes"
        }
    ],
    "reasoning": "explanation of analysis"
}

confidence is a percentage between 0 and 100, as a number.
Focus on patient safety, appropriate urgency assessment, and actionable recommendations.`

// Prompts renders the prompt for each task type.
type Prompts struct {
	templates map[pkg.TaskType]*template.Template
}

// NewPrompts parses the built-in templates.
func NewPrompts() (*Prompts, error) {
	sources := map[pkg.TaskType]string{
		pkg.TaskPatientInsights:      patientInsightsPrompt,
		pkg.TaskScheduleOptimization: scheduleOptimizationPrompt,
		pkg.TaskMessageGeneration:    messageGenerationPrompt,
		pkg.TaskRequestTriage:        requestTriagePrompt,
	}
	funcs := sprig.TxtFuncMap()
	funcs["list_of"] = listOf
	funcs["value_or"] = valueOr
	p := &Prompts{templates: make(map[pkg.TaskType]*template.Template, len(sources))}
	for task, src := range sources {
		tmpl, err := template.New(string(task)).Funcs(funcs).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s prompt: %w", task, err)
		}
		p.templates[task] = tmpl
	}
	return p, nil
}

// MustPrompts is NewPrompts for package-level initialisation.
func MustPrompts() *Prompts {
	p, err := NewPrompts()
	if err != nil {
		panic(err)
	}
	return p
}

// Render substitutes ctx into the template for task.
func (p *Prompts) Render(task pkg.TaskType, ctx pkg.TaskContext) (string, error) {
	tmpl, ok := p.templates[task]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	if ctx == nil {
		ctx = pkg.TaskContext{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(ctx)); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", task, err)
	}
	return buf.String(), nil
}

// valueOr returns ctx[key], or placeholder only when the key is absent or
// nil.  Unlike sprig's default it keeps 0 and false.
func valueOr(ctx map[string]any, key string, placeholder any) any {
	if v, ok := ctx[key]; ok && v != nil {
		return v
	}
	return placeholder
}

// listOf joins list values with ", ".  A scalar is rendered as-is.
func listOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
