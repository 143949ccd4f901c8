// Package grading scores a completed set of responses against their question
// definitions. It is free of side effects; the session service owns writing
// results back.
package grading

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/dmathstuition/cbt-platform/internal/model"
)

// GradedResponse is the grading outcome for a single response.
type GradedResponse struct {
	ResponseID   uuid.UUID
	QuestionID   uuid.UUID
	Correct      bool
	MarksAwarded int
}

// Outcome is the aggregate result of a submitted attempt.
type Outcome struct {
	Score      int     `json:"score"`
	TotalMarks int     `json:"total_marks"`
	PassMark   float64 `json:"pass_mark"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

// Grade scores each response against its question and returns the per-response
// outcomes plus the total marks awarded. Responses whose question is missing
// from the set are skipped. Marks are all-or-nothing; there is no partial
// credit.
func Grade(responses []model.Response, questions []model.Question) ([]GradedResponse, int) {
	byID := make(map[uuid.UUID]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	graded := make([]GradedResponse, 0, len(responses))
	total := 0

	for _, r := range responses {
		q, ok := byID[r.QuestionID]
		if !ok {
			continue
		}

		correct := isCorrect(r.Answer, q)
		marks := 0
		if correct {
			marks = q.Marks
		}
		total += marks

		graded = append(graded, GradedResponse{
			ResponseID:   r.ID,
			QuestionID:   r.QuestionID,
			Correct:      correct,
			MarksAwarded: marks,
		})
	}

	return graded, total
}

// isCorrect applies the per-type correctness rule. A question with no option
// flagged correct grades as incorrect rather than erroring.
func isCorrect(a model.Answer, q model.Question) bool {
	switch q.Type {
	case model.QuestionTypeMCQ, model.QuestionTypeTrueFalse:
		if a.SelectedID == "" {
			return false
		}
		for _, o := range q.Options {
			if o.IsCorrect {
				return a.SelectedID == o.ID
			}
		}
		return false

	case model.QuestionTypeFillBlank:
		if len(q.Options) == 0 {
			return false
		}
		expected := strings.TrimSpace(q.Options[0].Text)
		given := strings.TrimSpace(a.Text)
		if expected == "" || given == "" {
			return false
		}
		return strings.EqualFold(given, expected)
	}

	return false
}

// Evaluate turns a raw score into a pass/fail verdict against the exam's
// marking scheme. A zero-total-marks exam defines the percentage as 0, so
// the attempt fails. The pass boundary is inclusive.
func Evaluate(score int, exam *model.Exam) Outcome {
	o := Outcome{
		Score:      score,
		TotalMarks: exam.TotalMarks,
		PassMark:   exam.PassMark,
	}

	if exam.TotalMarks > 0 {
		pct := float64(score) / float64(exam.TotalMarks) * 100
		o.Percentage = math.Round(pct*100) / 100
	}
	o.Passed = exam.TotalMarks > 0 && o.Percentage >= exam.PassMark

	return o
}
