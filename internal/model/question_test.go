package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRedact_StripsCorrectnessFlags(t *testing.T) {
	q := Question{
		ID:    uuid.New(),
		Type:  QuestionTypeMCQ,
		Body:  "Pick one",
		Marks: 5,
		Options: []Option{
			{ID: "a", Text: "A", IsCorrect: false},
			{ID: "b", Text: "B", IsCorrect: true},
		},
	}

	safe := q.Redact()
	if len(safe.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(safe.Options))
	}

	raw, err := json.Marshal(safe)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "is_correct") {
		t.Fatalf("redacted question leaks correctness flag: %s", raw)
	}
}

func TestRedact_FillBlankDropsExpectedAnswer(t *testing.T) {
	q := Question{
		ID:      uuid.New(),
		Type:    QuestionTypeFillBlank,
		Body:    "Capital of France?",
		Marks:   4,
		Options: []Option{{ID: "1", Text: "Paris"}},
	}

	safe := q.Redact()
	if len(safe.Options) != 0 {
		t.Fatalf("fill_blank redaction must drop options, got %v", safe.Options)
	}

	raw, err := json.Marshal(safe)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "Paris") {
		t.Fatalf("redacted fill_blank leaks expected answer: %s", raw)
	}
}
