package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/internal/observability"
)

// ReceiptWriter stores the receipt document of a change.
type ReceiptWriter interface {
	PutReceipt(ctx context.Context, c *models.StatusChange) (string, error)
}

// ChangeWriter appends a change to the audit log. It reports false when the change
// was already recorded.
type ChangeWriter interface {
	InsertStatusChange(ctx context.Context, c *models.StatusChange) (bool, error)
}

// Recorder persists accepted status updates: receipt first, then the log row that
// points at it, so a logged change always has its receipt.
type Recorder struct {
	receipts ReceiptWriter
	log      ChangeWriter
}

func NewRecorder(receipts ReceiptWriter, log ChangeWriter) *Recorder {
	return &Recorder{receipts: receipts, log: log}
}

// Record is safe to call again for a redelivered change.
func (r *Recorder) Record(ctx context.Context, change models.StatusChange) error {
	key, err := r.receipts.PutReceipt(ctx, &change)
	if err != nil {
		observability.AuditEventsProcessed.WithLabelValues("error").Inc()
		return fmt.Errorf("store receipt %s: %w", change.ID, err)
	}
	change.ReceiptKey = key

	inserted, err := r.log.InsertStatusChange(ctx, &change)
	if err != nil {
		observability.AuditEventsProcessed.WithLabelValues("error").Inc()
		return fmt.Errorf("record change %s: %w", change.ID, err)
	}
	if !inserted {
		observability.AuditEventsProcessed.WithLabelValues("duplicate").Inc()
		slog.Debug("status change already recorded", "change_id", change.ID)
		return nil
	}

	observability.AuditEventsProcessed.WithLabelValues("recorded").Inc()
	slog.Info("status change recorded",
		"change_id", change.ID,
		"model_id", change.ModelID,
		"subparts", len(change.Subparts),
		"receipt", key,
	)
	return nil
}
