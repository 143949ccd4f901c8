package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dmathstuition/cbt-platform/internal/config"
)

// ResultNotification is the payload enqueued when a session is submitted.
type ResultNotification struct {
	SessionID  string  `json:"session_id"`
	ExamID     string  `json:"exam_id"`
	ExamTitle  string  `json:"exam_title"`
	StudentID  int     `json:"student_id"`
	Score      int     `json:"score"`
	TotalMarks int     `json:"total_marks"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

// Notifier delivers a graded result to the student. Transport and formatting
// (email, push) live behind this interface, outside the core.
type Notifier interface {
	NotifyResult(ctx context.Context, n *ResultNotification) error
}

// LogNotifier is the default Notifier: it records the delivery in the log.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "log_notifier").Logger()}
}

func (n *LogNotifier) NotifyResult(_ context.Context, r *ResultNotification) error {
	n.log.Info().
		Str("exam_title", r.ExamTitle).
		Int("student_id", r.StudentID).
		Int("score", r.Score).
		Int("total_marks", r.TotalMarks).
		Bool("passed", r.Passed).
		Msg("Exam result ready for delivery")
	return nil
}

// NotifyWorker consumes the result notification queue and hands each payload
// to the Notifier. Delivery is at-least-once: a failed delivery is pushed
// back onto the queue.
type NotifyWorker struct {
	rdb      *redis.Client
	notifier Notifier
	log      zerolog.Logger
}

// NewNotifyWorker creates a new NotifyWorker.
func NewNotifyWorker(rdb *redis.Client, notifier Notifier, log zerolog.Logger) *NotifyWorker {
	return &NotifyWorker{
		rdb:      rdb,
		notifier: notifier,
		log:      log.With().Str("component", "notify_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.log.Info().Msg("NotifyWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("NotifyWorker stopping...")
			// Deliver remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("NotifyWorker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *NotifyWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.ResultNotificationsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var n ResultNotification
	if err := json.Unmarshal([]byte(result[1]), &n); err != nil {
		w.log.Error().Err(err).Msg("Invalid notification payload")
		return
	}

	if err := w.notifier.NotifyResult(ctx, &n); err != nil {
		w.log.Error().Err(err).
			Str("session_id", n.SessionID).
			Msg("Delivery failed, requeueing")
		w.rdb.RPush(ctx, config.WorkerKey.ResultNotificationsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

// drain delivers all remaining queued notifications before shutdown.
func (w *NotifyWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.ResultNotificationsQueue).Result()
		if err != nil {
			break
		}

		var n ResultNotification
		if err := json.Unmarshal([]byte(result), &n); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.notifier.NotifyResult(ctx, &n); err != nil {
			w.log.Error().Err(err).Msg("Drain delivery error")
			w.rdb.RPush(ctx, config.WorkerKey.ResultNotificationsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining notifications")
	}
}
