package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/pkg/dto"
)

// HistoryStore is the audit log written by the auditor.
type HistoryStore interface {
	ListStatusChanges(ctx context.Context, modelID *int64, limit, offset int) ([]models.StatusChange, int, error)
	GetStatusChange(ctx context.Context, id uuid.UUID) (*models.StatusChange, error)
}

// ReceiptStore holds the JSON receipt of each audited change.
type ReceiptStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	ListReceipts(ctx context.Context, modelID int64) ([]string, error)
}

type HistoryHandler struct {
	db       HistoryStore
	receipts ReceiptStore
}

func NewHistoryHandler(db HistoryStore, receipts ReceiptStore) *HistoryHandler {
	return &HistoryHandler{db: db, receipts: receipts}
}

func (h *HistoryHandler) List(c *gin.Context) {
	modelID, err := idQuery(c, "modelId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid modelId"})
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := (intQuery(c, "page", 1) - 1) * limit

	changes, total, err := h.db.ListStatusChanges(c.Request.Context(), modelID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusChangeListResponse{Changes: nonNil(changes), Total: total})
}

func (h *HistoryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid change id"})
		return
	}
	change, err := h.db.GetStatusChange(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, change)
}

// Receipt streams the stored receipt JSON of one change.
func (h *HistoryHandler) Receipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid change id"})
		return
	}
	change, err := h.db.GetStatusChange(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if change.ReceiptKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not stored"})
		return
	}

	data, err := h.receipts.GetObject(c.Request.Context(), change.ReceiptKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// Receipts lists the receipt object keys stored for one model.
func (h *HistoryHandler) Receipts(c *gin.Context) {
	modelID, err := idQuery(c, "modelId")
	if err != nil || modelID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "modelId is required"})
		return
	}
	keys, err := h.receipts.ListReceipts(c.Request.Context(), *modelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": nonNil(keys), "total": len(keys)})
}
