package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/your-org/partsboard/internal/cache"
	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/internal/upstream"
	"github.com/your-org/partsboard/pkg/dto"
)

var (
	// ErrQueryDisabled is returned by dependent queries whose parent id is not selected yet.
	ErrQueryDisabled = errors.New("query disabled: parent id not selected")
	// ErrUpdateRejected is returned when the backend answers a write without success.
	ErrUpdateRejected = errors.New("update rejected by backend")
)

const (
	resCustomers   = "customers"
	resContacts    = "contacts"
	resInspections = "inspections"
	resModels      = "models"
	resSubparts    = "subparts"
)

// Source is the backend the store reads through. *upstream.Client satisfies it.
type Source interface {
	ListCustomers(ctx context.Context, token string, page, limit int) (*dto.CustomerListResponse, error)
	ListContacts(ctx context.Context, token string, customerID *int64) ([]models.CustomerContact, error)
	ListInspections(ctx context.Context, token string, query upstream.InspectionQuery) (*dto.ItemsResponse[models.Inspection], error)
	ListModels(ctx context.Context, token string, inspectionID int64, page, limit int) (*dto.ItemsResponse[models.Model], error)
	ListSubparts(ctx context.Context, token string, modelID int64, page, limit int) (*dto.ItemsResponse[models.Subpart], error)
	UpdateSubpartsStatus(ctx context.Context, token string, req dto.UpdateSubpartsStatusRequest) (*dto.UpdateSubpartsStatusResponse, error)
}

type InspectionParams struct {
	CustomerID *int64
	Page       int
	Limit      int
	Search     string
}

// Store wraps every read resource in a cached query and owns the one mutation.
// A store belongs to one token; callers holding different tokens use different stores.
type Store struct {
	src   Source
	cache *cache.Cache
	token func() string
}

func NewStore(src Source, token func() string) *Store {
	return &Store{src: src, cache: cache.New(), token: token}
}

func (s *Store) Customers(ctx context.Context, page, limit int) (models.Page[models.Customer], error) {
	page, limit = normalize(page, limit)
	key := customersKey(page, limit)
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (models.Page[models.Customer], error) {
		resp, err := s.src.ListCustomers(ctx, s.token(), page, limit)
		if err != nil {
			return models.Page[models.Customer]{}, err
		}
		return newPage(resp.Customers, resp.Total, page, limit), nil
	})
}

// Contacts lists notification contacts; a nil customerID lists every contact.
func (s *Store) Contacts(ctx context.Context, customerID *int64) ([]models.CustomerContact, error) {
	key := contactsKey(customerID)
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]models.CustomerContact, error) {
		return s.src.ListContacts(ctx, s.token(), customerID)
	})
}

func (s *Store) Inspections(ctx context.Context, p InspectionParams) (models.Page[models.Inspection], error) {
	p.Page, p.Limit = normalize(p.Page, p.Limit)
	key := inspectionsKey(p)
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (models.Page[models.Inspection], error) {
		resp, err := s.src.ListInspections(ctx, s.token(), upstream.InspectionQuery{
			CustomerID: p.CustomerID,
			Page:       p.Page,
			Limit:      p.Limit,
			Search:     p.Search,
		})
		if err != nil {
			return models.Page[models.Inspection]{}, err
		}
		return newPage(resp.Items, resp.Total, p.Page, p.Limit), nil
	})
}

// Models is gated on the selected inspection.
func (s *Store) Models(ctx context.Context, inspectionID *int64, page, limit int) (models.Page[models.Model], error) {
	if inspectionID == nil {
		return models.Page[models.Model]{}, ErrQueryDisabled
	}
	id := *inspectionID
	page, limit = normalize(page, limit)
	key := modelsKey(id, page, limit)
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (models.Page[models.Model], error) {
		resp, err := s.src.ListModels(ctx, s.token(), id, page, limit)
		if err != nil {
			return models.Page[models.Model]{}, err
		}
		return newPage(resp.Items, resp.Total, page, limit), nil
	})
}

// Subparts is gated on the selected model.
func (s *Store) Subparts(ctx context.Context, modelID *int64, page, limit int) (models.Page[models.Subpart], error) {
	if modelID == nil {
		return models.Page[models.Subpart]{}, ErrQueryDisabled
	}
	id := *modelID
	page, limit = normalize(page, limit)
	key := subpartsKey(id, page, limit)
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (models.Page[models.Subpart], error) {
		resp, err := s.src.ListSubparts(ctx, s.token(), id, page, limit)
		if err != nil {
			return models.Page[models.Subpart]{}, err
		}
		return newPage(resp.Items, resp.Total, page, limit), nil
	})
}

// UpdateSubpartsStatus issues exactly one write. On success every cached subpart
// page of the model is dropped so the next read returns server truth; nothing is merged
// locally. On failure the cache is left alone.
func (s *Store) UpdateSubpartsStatus(ctx context.Context, req dto.UpdateSubpartsStatusRequest) (*dto.UpdateSubpartsStatusResponse, error) {
	resp, err := s.src.UpdateSubpartsStatus(ctx, s.token(), req)
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.Success {
		msg := "no message"
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		return nil, fmt.Errorf("update subparts status: %w: %s", ErrUpdateRejected, msg)
	}

	dropped := s.cache.Invalidate(cache.ScopePrefix(resSubparts, cache.ID("modelId", req.ModelID)))
	slog.Debug("subpart queries invalidated", "model_id", req.ModelID, "keys", dropped)
	return resp, nil
}

// The *State methods report a query's {data, loading, error} without fetching.

func (s *Store) CustomersState(page, limit int) cache.State[models.Page[models.Customer]] {
	page, limit = normalize(page, limit)
	return cache.StateOf[models.Page[models.Customer]](s.cache, customersKey(page, limit))
}

func (s *Store) ContactsState(customerID *int64) cache.State[[]models.CustomerContact] {
	return cache.StateOf[[]models.CustomerContact](s.cache, contactsKey(customerID))
}

func (s *Store) InspectionsState(p InspectionParams) cache.State[models.Page[models.Inspection]] {
	p.Page, p.Limit = normalize(p.Page, p.Limit)
	return cache.StateOf[models.Page[models.Inspection]](s.cache, inspectionsKey(p))
}

func (s *Store) ModelsState(inspectionID int64, page, limit int) cache.State[models.Page[models.Model]] {
	page, limit = normalize(page, limit)
	return cache.StateOf[models.Page[models.Model]](s.cache, modelsKey(inspectionID, page, limit))
}

func (s *Store) SubpartsState(modelID int64, page, limit int) cache.State[models.Page[models.Subpart]] {
	page, limit = normalize(page, limit)
	return cache.StateOf[models.Page[models.Subpart]](s.cache, subpartsKey(modelID, page, limit))
}

// CachedModels returns the last fetched model page, if any.
func (s *Store) CachedModels(inspectionID int64, page, limit int) (models.Page[models.Model], bool) {
	page, limit = normalize(page, limit)
	return cache.Peek[models.Page[models.Model]](s.cache, modelsKey(inspectionID, page, limit))
}

// CachedSubparts returns the last fetched subpart page, if any.
func (s *Store) CachedSubparts(modelID int64, page, limit int) (models.Page[models.Subpart], bool) {
	page, limit = normalize(page, limit)
	return cache.Peek[models.Page[models.Subpart]](s.cache, subpartsKey(modelID, page, limit))
}

// CachedContacts returns the last fetched contact list, if any.
func (s *Store) CachedContacts(customerID *int64) ([]models.CustomerContact, bool) {
	return cache.Peek[[]models.CustomerContact](s.cache, contactsKey(customerID))
}

// InvalidateAll drops every cached query.
func (s *Store) InvalidateAll() int {
	return s.cache.Invalidate("")
}

func customersKey(page, limit int) cache.Key {
	return cache.NewKey(resCustomers, cache.Param{}, cache.Int("page", page), cache.Int("limit", limit))
}

func contactsKey(customerID *int64) cache.Key {
	if customerID == nil {
		return cache.NewKey(resContacts, cache.Param{})
	}
	return cache.NewKey(resContacts, cache.ID("customerId", *customerID))
}

func inspectionsKey(p InspectionParams) cache.Key {
	scope := cache.Param{}
	if p.CustomerID != nil {
		scope = cache.ID("customerId", *p.CustomerID)
	}
	return cache.NewKey(resInspections, scope,
		cache.Int("page", p.Page), cache.Int("limit", p.Limit), cache.String("search", p.Search))
}

func modelsKey(inspectionID int64, page, limit int) cache.Key {
	return cache.NewKey(resModels, cache.ID("inspectionId", inspectionID), cache.Int("page", page), cache.Int("limit", limit))
}

func subpartsKey(modelID int64, page, limit int) cache.Key {
	return cache.NewKey(resSubparts, cache.ID("modelId", modelID), cache.Int("page", page), cache.Int("limit", limit))
}

func normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func newPage[T any](items []T, total, page, limit int) models.Page[T] {
	if items == nil {
		items = []T{}
	}
	return models.Page[T]{Items: items, Pagination: models.NewPagination(total, page, limit)}
}
