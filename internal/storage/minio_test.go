package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/your-org/partsboard/internal/models"
)

func TestReceiptKey(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("0b6c3a8e-4f38-4a3e-9f57-3a3f3f6f2b11")
	key := ReceiptKey(&models.StatusChange{ID: id, ModelID: 42})
	assert.Equal(t, "receipts/42/0b6c3a8e-4f38-4a3e-9f57-3a3f3f6f2b11.json", key)
}
