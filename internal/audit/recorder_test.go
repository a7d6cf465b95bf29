package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/your-org/partsboard/internal/models"
)

type mockReceipts struct{ mock.Mock }

func (m *mockReceipts) PutReceipt(ctx context.Context, c *models.StatusChange) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

type mockLog struct{ mock.Mock }

func (m *mockLog) InsertStatusChange(ctx context.Context, c *models.StatusChange) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}

func newChange() models.StatusChange {
	return models.StatusChange{
		ID:          uuid.New(),
		CustomerID:  4,
		ModelID:     int64(gofakeit.Number(1, 1000)),
		Person:      gofakeit.Name(),
		Reason:      gofakeit.Sentence(4),
		Recipients:  []string{gofakeit.Email()},
		Subparts:    []models.SubpartStatus{{ID: 1, InUse: models.InUseOff}},
		SubmittedAt: time.Now().UTC(),
	}
}

func TestRecorder_Record(t *testing.T) {
	t.Parallel()

	errStore := errors.New("store unavailable")

	type deps struct {
		receipts *mockReceipts
		log      *mockLog
	}

	tests := []struct {
		name    string
		setup   func(d deps, change models.StatusChange)
		wantErr error
	}{
		{
			name: "receipt then log row",
			setup: func(d deps, change models.StatusChange) {
				d.receipts.On("PutReceipt", mock.Anything, mock.Anything).Return("receipts/key.json", nil)
				d.log.On("InsertStatusChange", mock.Anything, mock.MatchedBy(func(c *models.StatusChange) bool {
					return c.ID == change.ID && c.ReceiptKey == "receipts/key.json"
				})).Return(true, nil)
			},
		},
		{
			name: "redelivery is not an error",
			setup: func(d deps, _ models.StatusChange) {
				d.receipts.On("PutReceipt", mock.Anything, mock.Anything).Return("receipts/key.json", nil)
				d.log.On("InsertStatusChange", mock.Anything, mock.Anything).Return(false, nil)
			},
		},
		{
			name: "receipt failure skips the log",
			setup: func(d deps, _ models.StatusChange) {
				d.receipts.On("PutReceipt", mock.Anything, mock.Anything).Return("", errStore)
			},
			wantErr: errStore,
		},
		{
			name: "log failure",
			setup: func(d deps, _ models.StatusChange) {
				d.receipts.On("PutReceipt", mock.Anything, mock.Anything).Return("receipts/key.json", nil)
				d.log.On("InsertStatusChange", mock.Anything, mock.Anything).Return(false, errStore)
			},
			wantErr: errStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := deps{receipts: &mockReceipts{}, log: &mockLog{}}
			change := newChange()
			tt.setup(d, change)

			err := NewRecorder(d.receipts, d.log).Record(context.Background(), change)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			d.receipts.AssertExpectations(t)
			d.log.AssertExpectations(t)
		})
	}
}
