package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-copilot/pkg"
)

func validRecords() map[pkg.TaskType]pkg.Record {
	return map[pkg.TaskType]pkg.Record{
		pkg.TaskPatientInsights: pkg.Insights{
			{
				Title:            "A1C Testing",
				Description:      "Quarterly A1C test for diabetes control.",
				Priority:         "high",
				Impact:           "Better glycemic control",
				RevenuePotential: 45,
				Reasoning:        "ADA guidelines",
				Urgency:          "within 2 weeks",
			},
			{
				Title:            "Flu Shot",
				Description:      "Seasonal influenza vaccination.",
				Priority:         "low",
				Impact:           "Prevents influenza",
				RevenuePotential: 30.5,
				Reasoning:        "CDC recommendation",
				Urgency:          "this season",
			},
		},
		pkg.TaskScheduleOptimization: pkg.Optimization{
			Recommendations: []pkg.Recommendation{{
				Day:           "Tuesday",
				Time:          "2:00 PM",
				Action:        "Book shingles vaccine",
				RevenueImpact: 120,
				Reasoning:     "Open afternoon slot",
			}},
			TotalRevenueImpact: 120,
			TimeInvestment:     0.5,
			Reasoning:          "Fill open slots",
		},
		pkg.TaskMessageGeneration: pkg.Message{
			Content:              "Dear John, please call us.",
			GeneratedBy:          "Google Gemini",
			PersonalizationLevel: "high",
		},
		pkg.TaskRequestTriage: pkg.Triage{
			Classification: "refill_request",
			Category:       "Medication Refill",
			Confidence:     92,
			Urgency:        "Medium",
			Sentiment:      "Neutral",
			ResponseTime:   "1-2 hours",
			SuggestedActions: []pkg.SuggestedAction{{
				Action:        "Process refill",
				Priority:      "High",
				EstimatedTime: "5 minutes",
				Notes:         "Check remaining refills",
			}},
			Reasoning: "Explicit refill request",
		},
	}
}

func TestNormalize_EmptyReturnsDefaults(t *testing.T) {
	t.Run("Should return the insights default", func(t *testing.T) {
		rec := Normalize(pkg.TaskPatientInsights, "")
		insights, ok := rec.(pkg.Insights)
		require.True(t, ok)
		require.Len(t, insights, 1)
		assert.Equal(t, "Medication Review Due", insights[0].Title)
		assert.Equal(t, pkg.Number(95), insights[0].RevenuePotential)
		assert.Equal(t, "high", insights[0].Priority)
	})
	t.Run("Should return the optimization default", func(t *testing.T) {
		rec := Normalize(pkg.TaskScheduleOptimization, "")
		opt, ok := rec.(pkg.Optimization)
		require.True(t, ok)
		assert.Equal(t, pkg.Number(150), opt.TotalRevenueImpact)
		assert.Equal(t, pkg.Number(1.0), opt.TimeInvestment)
		require.Len(t, opt.Recommendations, 1)
		assert.Equal(t, "Schedule high-value service", opt.Recommendations[0].Action)
	})
	t.Run("Should return the message default", func(t *testing.T) {
		rec := Normalize(pkg.TaskMessageGeneration, "   ")
		msg, ok := rec.(pkg.Message)
		require.True(t, ok)
		assert.Equal(t, FallbackText(pkg.TaskMessageGeneration), msg.Content)
		assert.NotEmpty(t, msg.GeneratedBy)
		assert.NotEmpty(t, msg.PersonalizationLevel)
	})
	t.Run("Should return the triage default", func(t *testing.T) {
		rec := Normalize(pkg.TaskRequestTriage, "")
		tr, ok := rec.(pkg.Triage)
		require.True(t, ok)
		assert.Equal(t, "general_question", tr.Classification)
		assert.Contains(t, []pkg.Number{75, 80, 85}, tr.Confidence)
		assert.Equal(t, "Medium", tr.Urgency)
		assert.Len(t, tr.SuggestedActions, 1)
	})
}

func TestNormalize_RoundTrip(t *testing.T) {
	for task, want := range validRecords() {
		t.Run(string(task), func(t *testing.T) {
			data, err := json.Marshal(want)
			require.NoError(t, err)
			assert.Equal(t, want, Normalize(task, string(data)))
		})
	}
}

func TestNormalize_IsPure(t *testing.T) {
	inputs := []string{"", "no json", "```json\n{bad\n```", `{"classification":"x","confidence":"90%"}`}
	for _, task := range pkg.TaskTypes {
		for _, in := range inputs {
			assert.Equal(t, Normalize(task, in), Normalize(task, in), "task=%s input=%q", task, in)
		}
	}
}

func TestNormalize_Insights(t *testing.T) {
	t.Run("Should wrap a fenced single record into a list", func(t *testing.T) {
		raw := "Here is my recommendation:\n```json\n{\"title\":\"X\",\"priority\":\"high\"}\n```"
		rec := Normalize(pkg.TaskPatientInsights, raw)
		assert.Equal(t, pkg.Insights{{
			Title:       "X",
			Description: "X",
			Priority:    "high",
			Impact:      "High clinical impact",
			Reasoning:   "Clinical guideline",
			Urgency:     "Routine",
		}}, rec)
	})
	t.Run("Should read a bare array surrounded by prose", func(t *testing.T) {
		raw := `Recommendations: [{"title":"A","priority":"medium","revenue_potential":"$120"}] Thanks.`
		rec := Normalize(pkg.TaskPatientInsights, raw)
		require.IsType(t, pkg.Insights{}, rec)
		insights := rec.(pkg.Insights)
		require.Len(t, insights, 1)
		assert.Equal(t, "A", insights[0].Title)
		assert.Equal(t, pkg.Number(120), insights[0].RevenuePotential)
	})
	t.Run("Should coerce unknown priorities to medium", func(t *testing.T) {
		rec := Normalize(pkg.TaskPatientInsights, `[{"title":"A","priority":"URGENT"},{"title":"B","priority":" Low "}]`)
		insights := rec.(pkg.Insights)
		assert.Equal(t, "medium", insights[0].Priority)
		assert.Equal(t, "low", insights[1].Priority)
	})
	t.Run("Should fall back on an empty list", func(t *testing.T) {
		rec := Normalize(pkg.TaskPatientInsights, `[]`)
		assert.Equal(t, parseDefault(pkg.TaskPatientInsights), rec)
	})
	t.Run("Should fall back on wrong field types", func(t *testing.T) {
		rec := Normalize(pkg.TaskPatientInsights, `[{"title":42}]`)
		assert.Equal(t, parseDefault(pkg.TaskPatientInsights), rec)
	})
}

func TestNormalize_MalformedFenceReturnsDefault(t *testing.T) {
	raw := "```json\n{\"classification\": \"refill\", \n```\n{\"classification\":\"ignored\"}"
	for _, task := range pkg.TaskTypes {
		t.Run(string(task), func(t *testing.T) {
			assert.Equal(t, parseDefault(task), Normalize(task, raw))
		})
	}
}

func TestNormalize_FencedNullReturnsDefault(t *testing.T) {
	for _, task := range pkg.TaskTypes {
		t.Run(string(task), func(t *testing.T) {
			assert.Equal(t, parseDefault(task), Normalize(task, "```json\nnull\n```"))
		})
	}
	_, err := Parse(pkg.TaskRequestTriage, "```json\n\"refill\"\n```")
	assert.ErrorIs(t, err, ErrWrongShape)
}

func TestNormalize_BackfillsPartialRecords(t *testing.T) {
	t.Run("Should fill triage fields the reply left out", func(t *testing.T) {
		tr := Normalize(pkg.TaskRequestTriage, `{"classification":"refill"}`).(pkg.Triage)
		assert.Equal(t, pkg.Triage{
			Classification:   "refill",
			Category:         "General Question",
			Confidence:       75,
			Urgency:          "Medium",
			Sentiment:        "Neutral",
			ResponseTime:     "2-4 hours",
			SuggestedActions: []pkg.SuggestedAction{},
			Reasoning:        "Standard analysis",
		}, tr)
	})
	t.Run("Should keep an explicit zero confidence and treat null as missing", func(t *testing.T) {
		tr := Normalize(pkg.TaskRequestTriage, `{"confidence":0,"urgency":null}`).(pkg.Triage)
		assert.Equal(t, pkg.Number(0), tr.Confidence)
		assert.Equal(t, "Medium", tr.Urgency)

		tr = Normalize(pkg.TaskRequestTriage, `{"confidence":null}`).(pkg.Triage)
		assert.Equal(t, pkg.Number(75), tr.Confidence)
	})
	t.Run("Should fill suggested action fields", func(t *testing.T) {
		tr := Normalize(pkg.TaskRequestTriage, `{"suggested_actions":[{"action":"Call back"}]}`).(pkg.Triage)
		require.Len(t, tr.SuggestedActions, 1)
		assert.Equal(t, pkg.SuggestedAction{
			Action:        "Call back",
			Priority:      "Medium",
			EstimatedTime: "5-10 minutes",
			Notes:         "Standard action",
		}, tr.SuggestedActions[0])
	})
	t.Run("Should never leave list fields null", func(t *testing.T) {
		opt := Normalize(pkg.TaskScheduleOptimization, `{"total_revenue_impact":40}`).(pkg.Optimization)
		assert.NotNil(t, opt.Recommendations)
		assert.Empty(t, opt.Recommendations)
		assert.Equal(t, "Strategic optimization", opt.Reasoning)

		data, err := json.Marshal(Normalize(pkg.TaskRequestTriage, `{}`))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"suggested_actions":[]`)
	})
	t.Run("Should fill recommendation fields", func(t *testing.T) {
		opt := Normalize(pkg.TaskScheduleOptimization, `{"recommendations":[{"revenue_impact":60}]}`).(pkg.Optimization)
		require.Len(t, opt.Recommendations, 1)
		assert.Equal(t, pkg.Recommendation{
			Day:           "General",
			Time:          "N/A",
			Action:        "Optimize slot",
			RevenueImpact: 60,
			Reasoning:     "Strategic optimization",
		}, opt.Recommendations[0])
	})
	t.Run("Should fill insight fields by priority", func(t *testing.T) {
		insights := Normalize(pkg.TaskPatientInsights, `[{"title":"BP check","priority":"low"}]`).(pkg.Insights)
		assert.Equal(t, "Low clinical impact", insights[0].Impact)
		assert.Equal(t, "General wellness", insights[0].Reasoning)
	})
}

func TestNormalize_FirstSpanOnly(t *testing.T) {
	raw := `{"classification":"first","confidence":60} {"classification":"second","confidence":99}`
	rec := Normalize(pkg.TaskRequestTriage, raw)
	tr, ok := rec.(pkg.Triage)
	require.True(t, ok)
	assert.Equal(t, "first", tr.Classification)
	assert.Equal(t, pkg.Number(60), tr.Confidence)
}

func TestNormalize_Triage(t *testing.T) {
	t.Run("Should accept percentages and string actions", func(t *testing.T) {
		raw := `{"classification":"side_effect","confidence":"85%","suggested_actions":["Call the patient"]}`
		tr := Normalize(pkg.TaskRequestTriage, raw).(pkg.Triage)
		assert.Equal(t, pkg.Number(85), tr.Confidence)
		require.Len(t, tr.SuggestedActions, 1)
		assert.Equal(t, "Call the patient", tr.SuggestedActions[0].Action)
		assert.Equal(t, "Medium", tr.SuggestedActions[0].Priority)
	})
	t.Run("Should fall back on a non numeric confidence", func(t *testing.T) {
		rec := Normalize(pkg.TaskRequestTriage, `{"classification":"x","confidence":"very"}`)
		assert.Equal(t, parseDefault(pkg.TaskRequestTriage), rec)
	})
	t.Run("Should fall back when there is no JSON", func(t *testing.T) {
		tr := Normalize(pkg.TaskRequestTriage, "The patient wants a refill.").(pkg.Triage)
		assert.Equal(t, pkg.Number(80), tr.Confidence)
		assert.Equal(t, "LLM message analysis", tr.Reasoning)
	})
}

func TestNormalize_Optimization(t *testing.T) {
	t.Run("Should accept title as an action alias", func(t *testing.T) {
		raw := "```json\n{\"recommendations\":[{\"day\":\"Friday\",\"title\":\"Add MTM slot\",\"revenue_impact\":\"$75\"}],\"total_revenue_impact\":75,\"time_investment\":\"2 hours\"}\n```"
		opt := Normalize(pkg.TaskScheduleOptimization, raw).(pkg.Optimization)
		require.Len(t, opt.Recommendations, 1)
		assert.Equal(t, "Add MTM slot", opt.Recommendations[0].Action)
		assert.Equal(t, pkg.Number(75), opt.Recommendations[0].RevenueImpact)
		assert.Equal(t, pkg.Number(2), opt.TimeInvestment)
	})
	t.Run("Should fall back when the fence holds an array", func(t *testing.T) {
		rec := Normalize(pkg.TaskScheduleOptimization, "```json\n[1,2]\n```")
		assert.Equal(t, parseDefault(pkg.TaskScheduleOptimization), rec)
	})
}

func TestNormalize_Message(t *testing.T) {
	t.Run("Should use prose verbatim as content", func(t *testing.T) {
		msg := Normalize(pkg.TaskMessageGeneration, "  Dear Sarah,\n\nYour review is due.  ").(pkg.Message)
		assert.Equal(t, "Dear Sarah,\n\nYour review is due.", msg.Content)
		assert.Equal(t, "LLM Assistant", msg.GeneratedBy)
		assert.Equal(t, "high", msg.PersonalizationLevel)
	})
	t.Run("Should read an envelope and fill missing fields", func(t *testing.T) {
		msg := Normalize(pkg.TaskMessageGeneration, `{"content":"Hi John"}`).(pkg.Message)
		assert.Equal(t, pkg.Message{Content: "Hi John", GeneratedBy: "LLM Assistant", PersonalizationLevel: "high"}, msg)
	})
	t.Run("Should keep prose that merely contains braces", func(t *testing.T) {
		raw := "Dear {name}, see you soon."
		msg := Normalize(pkg.TaskMessageGeneration, raw).(pkg.Message)
		assert.Equal(t, raw, msg.Content)
	})
}

func TestParse_UnknownTask(t *testing.T) {
	_, err := Parse(pkg.TaskType("bogus"), "{}")
	assert.ErrorIs(t, err, ErrUnknownTask)
	assert.Nil(t, Normalize(pkg.TaskType("bogus"), "{}"))
}
