package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/partsboard/internal/auth"
	"github.com/your-org/partsboard/internal/remote"
	"github.com/your-org/partsboard/internal/upstream"
	"github.com/your-org/partsboard/pkg/dto"
)

// ProxyHandler forwards the dashboard's reads and its one write to the backend
// with the caller's token, reshaping list envelopes for the browser.
type ProxyHandler struct {
	backend remote.Source
}

func NewProxyHandler(backend remote.Source) *ProxyHandler {
	return &ProxyHandler{backend: backend}
}

func (h *ProxyHandler) Customers(c *gin.Context) {
	resp, err := h.backend.ListCustomers(c.Request.Context(), auth.TokenFrom(c),
		intQuery(c, "page", 1), intQuery(c, "limit", 10))
	if err != nil {
		upstreamError(c, err, "Failed to fetch customer data")
		return
	}
	total := resp.Total
	if total == 0 {
		total = len(resp.Customers)
	}
	c.JSON(http.StatusOK, dto.CustomerListResponse{Customers: nonNil(resp.Customers), Total: total})
}

func (h *ProxyHandler) Contacts(c *gin.Context) {
	customerID, err := idQuery(c, "customerId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customerId"})
		return
	}
	contacts, err := h.backend.ListContacts(c.Request.Context(), auth.TokenFrom(c), customerID)
	if err != nil {
		upstreamError(c, err, "Failed to fetch contact list")
		return
	}
	c.JSON(http.StatusOK, dto.ContactListResponse{Contacts: nonNil(contacts)})
}

func (h *ProxyHandler) Inspections(c *gin.Context) {
	customerID, err := idQuery(c, "customerId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customerId"})
		return
	}
	resp, err := h.backend.ListInspections(c.Request.Context(), auth.TokenFrom(c), upstream.InspectionQuery{
		CustomerID: customerID,
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", 10),
		Search:     c.Query("search"),
	})
	if err != nil {
		upstreamError(c, err, "Failed to fetch inspection data")
		return
	}
	c.JSON(http.StatusOK, dto.InspectionListResponse{Inspections: nonNil(resp.Items), Total: resp.Total})
}

func (h *ProxyHandler) Models(c *gin.Context) {
	inspectionID, err := idQuery(c, "inspectionId")
	if err != nil || inspectionID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inspectionId is required"})
		return
	}
	resp, err := h.backend.ListModels(c.Request.Context(), auth.TokenFrom(c), *inspectionID,
		intQuery(c, "page", 1), intQuery(c, "limit", 10))
	if err != nil {
		upstreamError(c, err, "Failed to fetch models data")
		return
	}
	c.JSON(http.StatusOK, dto.ModelListResponse{Models: nonNil(resp.Items), Total: resp.Total})
}

func (h *ProxyHandler) Subparts(c *gin.Context) {
	modelID, err := idQuery(c, "modelId")
	if err != nil || modelID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "modelId is required"})
		return
	}
	resp, err := h.backend.ListSubparts(c.Request.Context(), auth.TokenFrom(c), *modelID,
		intQuery(c, "page", 1), intQuery(c, "limit", 10))
	if err != nil {
		upstreamError(c, err, "Failed to fetch subparts data")
		return
	}
	c.JSON(http.StatusOK, dto.SubpartListResponse{Items: nonNil(resp.Items), Total: resp.Total})
}

// UpdateSubpartsStatus passes the backend's answer through unchanged.
func (h *ProxyHandler) UpdateSubpartsStatus(c *gin.Context) {
	var req dto.UpdateSubpartsStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.backend.UpdateSubpartsStatus(c.Request.Context(), auth.TokenFrom(c), req)
	if err != nil {
		upstreamError(c, err, "Failed to update subparts status")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// upstreamError keeps the backend's status for rejections and hides transport
// failures behind msg.
func upstreamError(c *gin.Context, err error, msg string) {
	var se *upstream.StatusError
	if errors.As(err, &se) || errors.Is(err, upstream.ErrUnauthorized) {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	slog.Error("upstream call failed", "path", c.FullPath(), "error", err)
	c.JSON(statusOf(err), gin.H{"error": msg})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

var _ remote.Source = (*upstream.Client)(nil)
