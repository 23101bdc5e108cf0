package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pharmacy-copilot/pkg"
)

var (
	// ErrUnknownTask is returned for a task type outside the supported four.
	ErrUnknownTask = errors.New("unknown task type")
	// ErrNoSpan means the reply holds neither a fenced block nor a balanced span.
	ErrNoSpan = errors.New("no JSON found in reply")
	// ErrEmptyReply means the model returned only whitespace.
	ErrEmptyReply = errors.New("empty reply")
	// ErrNoRecords means the reply decoded to an empty insights list.
	ErrNoRecords = errors.New("reply contained no records")
	// ErrWrongShape means the extracted JSON is not an object (or list, for
	// insights), for example a fenced null.
	ErrWrongShape = errors.New("reply has the wrong JSON shape")
)

// Normalize turns raw model text into a record of the shape task expects.
// It never fails: anything Parse rejects is replaced by the shape's default.
func Normalize(task pkg.TaskType, raw string) pkg.Record {
	rec, err := Parse(task, raw)
	if err != nil {
		return parseDefault(task)
	}
	return rec
}

// Parse is Normalize with the failure reason made explicit.
func Parse(task pkg.TaskType, raw string) (pkg.Record, error) {
	switch task {
	case pkg.TaskPatientInsights:
		return parseInsights(raw)
	case pkg.TaskScheduleOptimization:
		var out pkg.Optimization
		if err := decodeObject(raw, &out); err != nil {
			return nil, err
		}
		return fillOptimization(out), nil
	case pkg.TaskMessageGeneration:
		return parseMessage(raw)
	case pkg.TaskRequestTriage:
		// seeded so an explicit 0 confidence survives decoding
		out := pkg.Triage{Confidence: defaultTriageConfidence}
		if err := decodeObject(raw, &out); err != nil {
			return nil, err
		}
		return fillTriage(out), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
}

func decodeObject(raw string, dst any) error {
	text, ok := ExtractJSON(raw, '{')
	if !ok {
		return ErrNoSpan
	}
	if !strings.HasPrefix(text, "{") {
		return ErrWrongShape
	}
	if err := json.Unmarshal([]byte(text), dst); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

func parseInsights(raw string) (pkg.Record, error) {
	text, ok := ExtractJSON(raw, '{', '[')
	if !ok {
		return nil, ErrNoSpan
	}
	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		return nil, ErrWrongShape
	}
	var out pkg.Insights
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &out); err != nil {
			return nil, fmt.Errorf("decode insights: %w", err)
		}
	} else {
		var single pkg.Insight
		if err := json.Unmarshal([]byte(text), &single); err != nil {
			return nil, fmt.Errorf("decode insight: %w", err)
		}
		out = pkg.Insights{single}
	}
	if len(out) == 0 {
		return nil, ErrNoRecords
	}
	for i := range out {
		out[i] = fillInsight(out[i])
	}
	return out, nil
}

// parseMessage accepts either a JSON envelope with a content field or plain
// prose, which becomes the content verbatim.  A fenced JSON block must decode
// to an envelope.
func parseMessage(raw string) (pkg.Record, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyReply
	}
	if body, ok := FencedJSON(trimmed); ok {
		var env pkg.Message
		if err := json.Unmarshal([]byte(body), &env); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		if strings.TrimSpace(env.Content) == "" {
			return nil, ErrEmptyReply
		}
		return withMessageDefaults(env), nil
	}
	if span, ok := ScanSpan(trimmed, '{'); ok {
		text := span.Text(trimmed)
		var env pkg.Message
		if err := json.Unmarshal([]byte(text), &env); err == nil && strings.TrimSpace(env.Content) != "" {
			return withMessageDefaults(env), nil
		}
	}
	return withMessageDefaults(pkg.Message{Content: trimmed}), nil
}

func withMessageDefaults(m pkg.Message) pkg.Message {
	if m.GeneratedBy == "" {
		m.GeneratedBy = "LLM Assistant"
	}
	if m.PersonalizationLevel == "" {
		m.PersonalizationLevel = "high"
	}
	return m
}

func normalizePriority(p string) string {
	switch v := strings.ToLower(strings.TrimSpace(p)); v {
	case "high", "medium", "low":
		return v
	default:
		return "medium"
	}
}
