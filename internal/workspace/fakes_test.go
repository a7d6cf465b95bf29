package workspace

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/your-org/partsboard/internal/debounce"
	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/internal/upstream"
	"github.com/your-org/partsboard/pkg/dto"
)

// fakeBackend is an in-memory parts-history backend that applies status writes.
type fakeBackend struct {
	mu          sync.Mutex
	customers   []models.Customer
	contacts    []models.CustomerContact
	inspections []models.Inspection
	models      map[int64][]models.Model
	subparts    map[int64][]models.Subpart
	calls       map[string]int
	updates     []dto.UpdateSubpartsStatusRequest
	failModels  error
	failUpdate  error
	rejectWith  string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		customers: []models.Customer{{ID: 4, Name: "Hanbit Motors"}},
		contacts: []models.CustomerContact{
			{ID: 1, CustomerID: 4, Person: "Lee", PersonEmail: "lee@example.com", IsMain: 1},
			{ID: 2, CustomerID: 4, Person: "Park", PersonEmail: "park@example.com", IsMain: 0},
		},
		inspections: []models.Inspection{
			{ID: 1, Name: "Engine line", CustomerID: 4, ModelCount: 1},
			{ID: 2, Name: "Gearbox line", CustomerID: 4, ModelCount: 0},
		},
		models: map[int64][]models.Model{
			1: {{ID: 10, Name: "EG-10", CustomerID: 4, Status: "active", SubpartCount: 2}},
		},
		subparts: map[int64][]models.Subpart{
			10: {
				{ID: 100, ModelID: 10, CustomerID: 4, Name: "Bolt", InUse: 1},
				{ID: 101, ModelID: 10, CustomerID: 4, Name: "Nut", InUse: 0},
			},
		},
		calls: map[string]int{},
	}
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) ListCustomers(_ context.Context, token string, page, limit int) (*dto.CustomerListResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["customers"]++
	if token == "" {
		return nil, upstream.ErrUnauthorized
	}
	return &dto.CustomerListResponse{Customers: f.customers, Total: len(f.customers)}, nil
}

func (f *fakeBackend) ListContacts(_ context.Context, _ string, customerID *int64) ([]models.CustomerContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["contacts"]++
	var out []models.CustomerContact
	for _, c := range f.contacts {
		if customerID == nil || c.CustomerID == *customerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListInspections(_ context.Context, _ string, q upstream.InspectionQuery) (*dto.ItemsResponse[models.Inspection], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["inspections"]++
	return &dto.ItemsResponse[models.Inspection]{Items: f.inspections, Total: len(f.inspections)}, nil
}

func (f *fakeBackend) ListModels(_ context.Context, _ string, inspectionID int64, _, _ int) (*dto.ItemsResponse[models.Model], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["models"]++
	if f.failModels != nil {
		return nil, f.failModels
	}
	items := f.models[inspectionID]
	return &dto.ItemsResponse[models.Model]{Items: items, Total: len(items)}, nil
}

func (f *fakeBackend) ListSubparts(_ context.Context, _ string, modelID int64, _, _ int) (*dto.ItemsResponse[models.Subpart], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["subparts"]++
	items := append([]models.Subpart(nil), f.subparts[modelID]...)
	return &dto.ItemsResponse[models.Subpart]{Items: items, Total: len(items)}, nil
}

func (f *fakeBackend) UpdateSubpartsStatus(_ context.Context, _ string, req dto.UpdateSubpartsStatusRequest) (*dto.UpdateSubpartsStatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	if f.rejectWith != "" {
		return &dto.UpdateSubpartsStatusResponse{Success: false, Message: f.rejectWith}, nil
	}
	f.updates = append(f.updates, req)
	for _, s := range req.Subparts {
		for i := range f.subparts[req.ModelID] {
			if f.subparts[req.ModelID][i].ID == s.ID {
				f.subparts[req.ModelID][i].InUse = s.InUse
			}
		}
	}
	return &dto.UpdateSubpartsStatusResponse{Success: true, Message: "updated"}, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	changes []models.StatusChange
	err     error
}

func (n *fakeNotifier) PublishStatusChange(_ context.Context, c models.StatusChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
	return n.err
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) debounce.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

var errBackend = errors.New("backend unavailable")
