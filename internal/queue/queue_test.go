package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/partsboard/internal/models"
)

func TestStatusSubject(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "parts.status.42", StatusSubject(42))
}

func TestDecodeStatusChange(t *testing.T) {
	t.Parallel()

	change := models.StatusChange{
		ID:       uuid.New(),
		ModelID:  42,
		Reason:   "부품 상태 수정",
		Subparts: []models.SubpartStatus{{ID: 1, InUse: 0}},
	}
	data, err := json.Marshal(change)
	require.NoError(t, err)

	got, err := DecodeStatusChange(data)
	require.NoError(t, err)
	assert.Equal(t, change.ID, got.ID)
	assert.Equal(t, change.Subparts, got.Subparts)

	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{"},
		{name: "no model", data: `{"subparts":[{"id":1,"inUse":1}]}`},
		{name: "no subparts", data: `{"model_id":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeStatusChange([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

// settledMsg records how a message was settled. Methods settle never calls panic
// through the nil embedded interface.
type settledMsg struct {
	jetstream.Msg
	data    []byte
	ackErr  error
	settled []string
}

func (m *settledMsg) Data() []byte    { return m.data }
func (m *settledMsg) Subject() string { return "parts.status.42" }

func (m *settledMsg) Ack() error {
	m.settled = append(m.settled, "ack")
	return m.ackErr
}

func (m *settledMsg) Nak() error {
	m.settled = append(m.settled, "nak")
	return m.ackErr
}

func (m *settledMsg) Term() error {
	m.settled = append(m.settled, "term")
	return m.ackErr
}

func TestSettle(t *testing.T) {
	t.Parallel()

	valid, err := json.Marshal(models.StatusChange{
		ID:       uuid.New(),
		ModelID:  42,
		Subparts: []models.SubpartStatus{{ID: 1, InUse: 1}},
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		data       []byte
		handlerErr error
		ackErr     error
		wantCalled bool
		want       []string
	}{
		{name: "recorded is acked", data: valid, wantCalled: true, want: []string{"ack"}},
		{name: "malformed is terminated", data: []byte("{"), want: []string{"term"}},
		{name: "handler failure is redelivered", data: valid, handlerErr: errors.New("minio down"), wantCalled: true, want: []string{"nak"}},
		{name: "failed ack is tolerated", data: valid, ackErr: errors.New("connection closed"), wantCalled: true, want: []string{"ack"}},
		{name: "handler reporting malformed is terminated", data: valid, handlerErr: ErrMalformed, wantCalled: true, want: []string{"term"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := &settledMsg{data: tt.data, ackErr: tt.ackErr}
			called := false
			handler := func(_ context.Context, change models.StatusChange) error {
				called = true
				assert.Equal(t, int64(42), change.ModelID)
				return tt.handlerErr
			}

			settle(context.Background(), msg, handler, 0)

			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.want, msg.settled)
		})
	}
}
