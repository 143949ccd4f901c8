package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dmathstuition/cbt-platform/internal/model"
)

func TestOverrideStatus(t *testing.T) {
	exam := &model.Exam{
		ID:       uuid.New(),
		SchoolID: testSchoolID,
		Title:    "Chemistry Final",
		Status:   model.ExamStatusActive,
	}
	registry := &fakeExamRegistry{exams: map[uuid.UUID]*model.Exam{exam.ID: exam}}
	svc := NewExamService(registry, zerolog.Nop())

	updated, err := svc.OverrideStatus(context.Background(), exam.ID, testSchoolID, model.ExamStatusCompleted)
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if updated.Status != model.ExamStatusCompleted {
		t.Fatalf("status = %s, want completed", updated.Status)
	}

	if _, err := svc.OverrideStatus(context.Background(), exam.ID, testSchoolID, model.ExamStatus("archived")); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("unknown status: expected ErrValidation, got %v", err)
	}
	if _, err := svc.OverrideStatus(context.Background(), uuid.New(), testSchoolID, model.ExamStatusDraft); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("unknown exam: expected ErrNotFound, got %v", err)
	}
}

func TestListAvailable(t *testing.T) {
	active := &model.Exam{ID: uuid.New(), SchoolID: testSchoolID, Status: model.ExamStatusActive}
	scheduled := &model.Exam{ID: uuid.New(), SchoolID: testSchoolID, Status: model.ExamStatusScheduled}
	draft := &model.Exam{ID: uuid.New(), SchoolID: testSchoolID, Status: model.ExamStatusDraft}
	foreign := &model.Exam{ID: uuid.New(), SchoolID: 999, Status: model.ExamStatusActive}

	registry := &fakeExamRegistry{exams: map[uuid.UUID]*model.Exam{
		active.ID: active, scheduled.ID: scheduled, draft.ID: draft, foreign.ID: foreign,
	}}
	svc := NewExamService(registry, zerolog.Nop())

	exams, err := svc.ListAvailable(context.Background(), testSchoolID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(exams) != 2 {
		t.Fatalf("expected 2 available exams, got %d", len(exams))
	}
	for _, e := range exams {
		if e.Status == model.ExamStatusDraft || e.SchoolID != testSchoolID {
			t.Fatalf("unexpected exam in list: %+v", e)
		}
	}

	empty, err := svc.ListAvailable(context.Background(), 12345)
	if err != nil {
		t.Fatalf("list empty school: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected non-nil empty slice, got %#v", empty)
	}
}
