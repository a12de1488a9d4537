package inference

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/menumetrics/menupricer/internal/models"
)

// Store persists inference log rows.
type Store interface {
	CreateInferenceLog(ctx context.Context, log models.InferenceLog) error
}

// Call describes one outbound model call to be recorded.
type Call struct {
	RequestID        string
	Model            string
	Operation        string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Latency          time.Duration
	Err              error
}

// Recorder writes model-call audit rows to the database.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a Recorder backed by the given store.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
	}
}

// Record persists a call asynchronously so auditing can never block or fail
// the request path.
func (r *Recorder) Record(call Call) {
	row := models.InferenceLog{
		ID:               uuid.NewString(),
		RequestID:        call.RequestID,
		Model:            call.Model,
		Operation:        call.Operation,
		PromptTokens:     call.PromptTokens,
		CompletionTokens: call.CompletionTokens,
		TotalTokens:      call.TotalTokens,
		LatencyMs:        int(call.Latency.Milliseconds()),
		Status:           "success",
	}
	if call.Err != nil {
		row.Status = "error"
		msg := call.Err.Error()
		row.ErrorMessage = &msg
	}

	go func() {
		if err := r.store.CreateInferenceLog(context.Background(), row); err != nil {
			r.logger.Error("failed to record inference call", "error", err, "operation", call.Operation)
		}
	}()
}
