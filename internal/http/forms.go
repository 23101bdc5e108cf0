package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"pharmacy-copilot/pkg"
)

// fieldKind selects the widget used for a form field and how its value is
// converted into the task context.
type fieldKind string

const (
	kindSelect      fieldKind = "select"
	kindMultiSelect fieldKind = "multiselect"
	kindSlider      fieldKind = "slider"
	kindText        fieldKind = "text"
	kindTextArea    fieldKind = "textarea"
	kindCheckbox    fieldKind = "checkbox"
	kindDate        fieldKind = "date"
)

type field struct {
	Name     string
	Label    string
	Kind     fieldKind
	Options  []string
	Defaults []string
	Min, Max int
	Value    string
	Checked  bool
	Hint     string
}

// IsDefault reports whether option is preselected.
func (f field) IsDefault(option string) bool {
	for _, d := range f.Defaults {
		if d == option {
			return true
		}
	}
	return option == f.Value
}

type form struct {
	Task    pkg.TaskType
	Button  string
	Fields  []field
	Samples []string
}

func forms() map[pkg.TaskType]form {
	lastVisit := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	return map[pkg.TaskType]form{
		pkg.TaskPatientInsights: {
			Task:   pkg.TaskPatientInsights,
			Button: "Generate Patient Insights",
			Fields: []field{
				{Name: "name", Label: "Patient Name", Kind: kindSelect, Options: []string{"John Smith", "Sarah Johnson", "Michael Chen", "Emily Davis", "Robert Wilson"}},
				{Name: "age", Label: "Age", Kind: kindSlider, Min: 18, Max: 85, Value: "45"},
				{Name: "conditions", Label: "Chronic Conditions", Kind: kindMultiSelect, Options: []string{"Diabetes", "Hypertension", "Asthma", "Heart Disease", "Arthritis", "None"}, Defaults: []string{"Diabetes", "Hypertension"}},
				{Name: "last_visit", Label: "Last Visit", Kind: kindDate, Value: lastVisit},
				{Name: "services", Label: "Recent Services", Kind: kindMultiSelect, Options: []string{"Medication Review", "Flu Shot", "Blood Pressure Check", "Diabetes Screening", "None"}, Defaults: []string{"Medication Review"}},
				{Name: "insurance", Label: "Insurance", Kind: kindSelect, Options: []string{"Blue Cross", "Aetna", "Medicare", "Medicaid", "Self-pay"}},
			},
		},
		pkg.TaskScheduleOptimization: {
			Task:   pkg.TaskScheduleOptimization,
			Button: "Optimize Schedule",
			Fields: []field{
				{Name: "target_service", Label: "Target High-Value Service", Kind: kindSelect, Options: []string{"Shingles Vaccine", "Diabetes Medication Review", "Blood Pressure Monitoring", "Flu Shot", "Medication Therapy Management"}},
				{Name: "min_slots", Label: "Minimum slots to optimize", Kind: kindSlider, Min: 1, Max: 5, Value: "2"},
				{Name: "revenue_threshold", Label: "Revenue threshold ($)", Kind: kindSlider, Min: 50, Max: 200, Value: "100"},
				{Name: "priority", Label: "Optimization Priority", Kind: kindSelect, Options: []string{"Maximize Revenue", "Improve Patient Flow", "Balance Both"}},
			},
		},
		pkg.TaskMessageGeneration: {
			Task:   pkg.TaskMessageGeneration,
			Button: "Generate Message",
			Fields: []field{
				{Name: "message_type", Label: "Message Type", Kind: kindSelect, Options: []string{"Follow-up Reminder", "Appointment Invitation", "Medication Review", "Vaccination Reminder", "General Health Check"}},
				{Name: "patient_name", Label: "Patient Name", Kind: kindText, Value: "John Smith"},
				{Name: "urgency", Label: "Urgency Level", Kind: kindSelect, Options: []string{"Low", "Medium", "High"}, Value: "Medium"},
				{Name: "communication_channel", Label: "Channel", Kind: kindSelect, Options: []string{"Email", "SMS", "Phone Call"}},
				{Name: "include_personalization", Label: "Include personalization", Kind: kindCheckbox, Checked: true},
				{Name: "tone", Label: "Tone", Kind: kindSelect, Options: []string{"Professional", "Friendly", "Urgent", "Informative"}},
				{Name: "context", Label: "Additional context or specific details", Kind: kindTextArea, Hint: "e.g., Patient is due for diabetes medication review, last visit was 3 months ago..."},
			},
		},
		pkg.TaskRequestTriage: {
			Task:   pkg.TaskRequestTriage,
			Button: "Analyze Message",
			Fields: []field{
				{Name: "message_text", Label: "Patient Message", Kind: kindTextArea, Hint: "Enter or paste patient message here..."},
				{Name: "include_sentiment", Label: "Include sentiment analysis", Kind: kindCheckbox, Checked: true},
				{Name: "include_urgency", Label: "Include urgency assessment", Kind: kindCheckbox, Checked: true},
				{Name: "suggest_actions", Label: "Suggest next actions", Kind: kindCheckbox, Checked: true},
				{Name: "auto_route", Label: "Auto-route to appropriate team", Kind: kindCheckbox},
			},
			Samples: []string{
				"I need to refill my blood pressure medication",
				"Can I schedule an appointment for a flu shot?",
				"I'm having side effects from my new medication",
				"What time do you close on Saturdays?",
				"I need help understanding my insurance coverage",
				"Can you check if my prescription is ready?",
				"I want to discuss switching my diabetes medication",
			},
		},
	}
}

// contextFromForm converts submitted form values into a task context using
// the field kinds of f.  Unchecked checkboxes are false; sliders that do not
// parse are left out so the prompt placeholder applies.
func contextFromForm(f form, values url.Values) pkg.TaskContext {
	ctx := pkg.TaskContext{}
	for _, fd := range f.Fields {
		raw := values[fd.Name]
		switch fd.Kind {
		case kindCheckbox:
			ctx[fd.Name] = len(raw) > 0 && isTruthy(raw[0])
		case kindMultiSelect:
			items := make([]string, 0, len(raw))
			for _, v := range raw {
				if v = strings.TrimSpace(v); v != "" {
					items = append(items, v)
				}
			}
			ctx[fd.Name] = items
		case kindSlider:
			if len(raw) == 0 {
				continue
			}
			if n, err := strconv.Atoi(strings.TrimSpace(raw[0])); err == nil {
				ctx[fd.Name] = n
			}
		default:
			if len(raw) == 0 {
				continue
			}
			if v := strings.TrimSpace(raw[0]); v != "" {
				ctx[fd.Name] = v
			}
		}
	}
	return ctx
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
