package core

import "pharmacy-copilot/pkg"

// Field defaults for records the model returned only partially.  They are
// the labels the dashboard showed for absent keys.
const (
	defaultTriageConfidence pkg.Number = 75
	defaultActionPriority              = "Medium"
	defaultActionTime                  = "5-10 minutes"
)

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func fillInsight(in pkg.Insight) pkg.Insight {
	in.Priority = normalizePriority(in.Priority)
	in.Title = orDefault(in.Title, "Clinical Recommendation")
	in.Description = orDefault(in.Description, in.Title)
	in.Urgency = orDefault(in.Urgency, "Routine")
	switch in.Priority {
	case "high":
		in.Impact = orDefault(in.Impact, "High clinical impact")
		in.Reasoning = orDefault(in.Reasoning, "Clinical guideline")
	case "medium":
		in.Impact = orDefault(in.Impact, "Moderate clinical impact")
		in.Reasoning = orDefault(in.Reasoning, "Preventive care")
	default:
		in.Impact = orDefault(in.Impact, "Low clinical impact")
		in.Reasoning = orDefault(in.Reasoning, "General wellness")
	}
	return in
}

func fillOptimization(in pkg.Optimization) pkg.Optimization {
	recs := make([]pkg.Recommendation, 0, len(in.Recommendations))
	for _, r := range in.Recommendations {
		r.Day = orDefault(r.Day, "General")
		r.Time = orDefault(r.Time, "N/A")
		r.Action = orDefault(r.Action, "Optimize slot")
		r.Reasoning = orDefault(r.Reasoning, "Strategic optimization")
		recs = append(recs, r)
	}
	in.Recommendations = recs
	in.Reasoning = orDefault(in.Reasoning, "Strategic optimization")
	return in
}

func fillTriage(in pkg.Triage) pkg.Triage {
	in.Classification = orDefault(in.Classification, "general_question")
	in.Category = orDefault(in.Category, "General Question")
	in.Urgency = orDefault(in.Urgency, "Medium")
	in.Sentiment = orDefault(in.Sentiment, "Neutral")
	in.ResponseTime = orDefault(in.ResponseTime, "2-4 hours")
	in.Reasoning = orDefault(in.Reasoning, "Standard analysis")
	actions := make([]pkg.SuggestedAction, 0, len(in.SuggestedActions))
	for _, a := range in.SuggestedActions {
		a.Action = orDefault(a.Action, "Review request")
		a.Priority = orDefault(a.Priority, defaultActionPriority)
		a.EstimatedTime = orDefault(a.EstimatedTime, defaultActionTime)
		a.Notes = orDefault(a.Notes, "Standard action")
		actions = append(actions, a)
	}
	in.SuggestedActions = actions
	return in
}
