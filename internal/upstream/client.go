package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/partsboard/internal/config"
	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/internal/observability"
	"github.com/your-org/partsboard/pkg/dto"
)

// ErrUnauthorized is returned without touching the network when no token is available.
var ErrUnauthorized = errors.New("authorization token is required")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned %d", e.Code)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Code, e.Message)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

type InspectionQuery struct {
	CustomerID *int64
	Page       int
	Limit      int
	Search     string
}

// Client talks to the parts-history backend.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.UpstreamConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/v1/auth/login", nil, "", req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.BearerToken() == "" {
		return nil, fmt.Errorf("login: %w", ErrUnauthorized)
	}
	return &resp, nil
}

func (c *Client) ListCustomers(ctx context.Context, token string, page, limit int) (*dto.CustomerListResponse, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	q := pageQuery(page, limit)

	var resp dto.CustomerListResponse
	if err := c.do(ctx, "customers", http.MethodGet, "/v1/customer", q, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	if resp.Customers == nil {
		return nil, fmt.Errorf("list customers: invalid response format")
	}
	if resp.Total == 0 {
		resp.Total = len(resp.Customers)
	}
	return &resp, nil
}

// ListContacts returns the notification contacts; a nil customerID lists all of them.
func (c *Client) ListContacts(ctx context.Context, token string, customerID *int64) ([]models.CustomerContact, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	q := url.Values{}
	if customerID != nil {
		q.Set("customerId", strconv.FormatInt(*customerID, 10))
	}

	var contacts []models.CustomerContact
	if err := c.do(ctx, "contacts", http.MethodGet, "/v1/customer/contactList", q, token, nil, &contacts); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if contacts == nil {
		contacts = []models.CustomerContact{}
	}
	return contacts, nil
}

func (c *Client) ListInspections(ctx context.Context, token string, query InspectionQuery) (*dto.ItemsResponse[models.Inspection], error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	q := pageQuery(query.Page, query.Limit)
	if query.CustomerID != nil {
		q.Set("customerId", strconv.FormatInt(*query.CustomerID, 10))
	}
	if query.Search != "" {
		q.Set("search", query.Search)
	}

	var resp dto.ItemsResponse[models.Inspection]
	if err := c.do(ctx, "inspections", http.MethodGet, "/v1/parts-history", q, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	return &resp, nil
}

func (c *Client) ListModels(ctx context.Context, token string, inspectionID int64, page, limit int) (*dto.ItemsResponse[models.Model], error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	path := fmt.Sprintf("/v1/parts-history/inspection/%d/models", inspectionID)

	var resp dto.ItemsResponse[models.Model]
	if err := c.do(ctx, "models", http.MethodGet, path, pageQuery(page, limit), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return &resp, nil
}

func (c *Client) ListSubparts(ctx context.Context, token string, modelID int64, page, limit int) (*dto.ItemsResponse[models.Subpart], error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	path := fmt.Sprintf("/v1/parts-history/model/%d/subparts", modelID)

	var resp dto.ItemsResponse[models.Subpart]
	if err := c.do(ctx, "subparts", http.MethodGet, path, pageQuery(page, limit), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list subparts: %w", err)
	}
	return &resp, nil
}

// UpdateSubpartsStatus sends one bulk status write. It is never retried here.
func (c *Client) UpdateSubpartsStatus(ctx context.Context, token string, req dto.UpdateSubpartsStatusRequest) (*dto.UpdateSubpartsStatusResponse, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	var resp dto.UpdateSubpartsStatusResponse
	if err := c.do(ctx, "update_subparts", http.MethodPost, "/v1/parts-history/subparts", nil, token, req, &resp); err != nil {
		return nil, fmt.Errorf("update subparts status: %w", err)
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, resource, method, path string, query url.Values, token string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		observability.UpstreamRequestDuration.WithLabelValues(resource, outcome).Observe(time.Since(start).Seconds())
	}()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func pageQuery(page, limit int) url.Values {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
