package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/your-org/partsboard/internal/config"
	"github.com/your-org/partsboard/internal/debounce"
	"github.com/your-org/partsboard/internal/editflow"
	"github.com/your-org/partsboard/internal/listview"
	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/internal/observability"
	"github.com/your-org/partsboard/internal/remote"
	"github.com/your-org/partsboard/internal/selection"
)

// ChangeNotifier is told about every accepted status update.
type ChangeNotifier interface {
	PublishStatusChange(ctx context.Context, change models.StatusChange) error
}

// Session is the authenticated operator a workspace belongs to.
type Session struct {
	ID    string
	Token string
	User  models.User
	IP    string
}

// Workspace is one operator's dashboard: drill-down selection, cached backend
// data, URL view state, search debounce and the edit flow.
type Workspace struct {
	session  Session
	cfg      config.DashboardConfig
	remote   *remote.Store
	sel      *selection.Store
	flow     *editflow.Flow
	notifier ChangeNotifier
	search   *debounce.Debouncer[string]
	now      func() time.Time

	mu          sync.Mutex
	view        listview.ViewState
	searchInput string
	modelPage   int
}

type Option func(*Workspace)

func WithScheduler(s debounce.Scheduler) Option {
	return func(w *Workspace) {
		w.search = debounce.New(w.cfg.SearchDebounce, s, w.promoteSearch)
	}
}

func WithNotifier(n ChangeNotifier) Option {
	return func(w *Workspace) { w.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

func New(sess Session, src remote.Source, cfg config.DashboardConfig, opts ...Option) *Workspace {
	w := &Workspace{
		session:   sess,
		cfg:       cfg,
		sel:       selection.NewStore(selection.New(cfg.DefaultReason)),
		now:       time.Now,
		view:      listview.DefaultViewState().WithLimit(cfg.DefaultLimit),
		modelPage: 1,
	}
	w.remote = remote.NewStore(src, func() string { return w.session.Token })
	w.flow = editflow.New(w.sel, w.remote)
	w.search = debounce.New(cfg.SearchDebounce, debounce.RealScheduler{}, w.promoteSearch)
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workspace) ID() string { return w.session.ID }

func (w *Workspace) Session() Session { return w.session }

func (w *Workspace) State() selection.State { return w.sel.Snapshot() }

// Close drops a pending search promotion so nothing fires after teardown.
func (w *Workspace) Close() {
	w.search.Close()
}

func (w *Workspace) Query() listview.ViewState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// SetQuery replaces the view state, typically from a shared link.
func (w *Workspace) SetQuery(v listview.ViewState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.view = v
	w.searchInput = v.Search
}

// UpdateQuery applies filter, page size and page changes. Changing the filter or the
// page size lands on page 1 whatever page was asked for.
func (w *Workspace) UpdateQuery(customerID *string, limit, page, modelPage *int) (listview.ViewState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := w.view
	reset := false
	if customerID != nil {
		v, err := next.WithCustomer(*customerID)
		if err != nil {
			return w.view, fmt.Errorf("customerId %q: %w", *customerID, models.ErrInvalidArgument)
		}
		next, reset = v, true
	}
	if limit != nil {
		next, reset = next.WithLimit(*limit), true
	}
	if page != nil && !reset {
		next = next.WithPage(*page)
	}
	if modelPage != nil {
		w.modelPage = max(*modelPage, 1)
	}
	w.view = next
	return next, nil
}

// TypeSearch filters the loaded page at once and promotes the term to the server
// query after the quiet period.
func (w *Workspace) TypeSearch(value string) {
	w.mu.Lock()
	w.searchInput = value
	w.mu.Unlock()
	w.search.Trigger(value)
}

func (w *Workspace) promoteSearch(term string) {
	w.mu.Lock()
	w.view = w.view.WithSearch(term)
	w.mu.Unlock()
	observability.SearchPromotions.Inc()
	slog.Debug("search promoted", "workspace", w.session.ID, "search", term)
}

func (w *Workspace) SelectInspection(id *int64) selection.State {
	before := w.sel.Snapshot()
	st := w.sel.Apply(selection.SelectInspection(id))
	if !sameID(before.SelectedInspection, id) {
		w.mu.Lock()
		w.modelPage = 1
		w.mu.Unlock()
	}
	return st
}

func (w *Workspace) SelectModel(id *int64) selection.State {
	return w.sel.Apply(selection.SelectModel(id))
}

// OpenModelDetail shows the model as it appears on the loaded page.
func (w *Workspace) OpenModelDetail(ctx context.Context, id int64) (selection.State, error) {
	st := w.sel.Snapshot()
	page, err := w.remote.Models(ctx, st.SelectedInspection, w.currentModelPage(), w.cfg.ModelPageLimit)
	if err != nil {
		return st, err
	}
	m, ok := lo.Find(page.Items, func(m models.Model) bool { return m.ID == id })
	if !ok {
		return st, fmt.Errorf("model %d: %w", id, models.ErrNotFound)
	}
	return w.sel.Apply(selection.OpenModelDetail(m)), nil
}

// OpenSubpartDetail shows the subpart as it appears on the loaded page.
func (w *Workspace) OpenSubpartDetail(ctx context.Context, id int64) (selection.State, error) {
	st := w.sel.Snapshot()
	page, err := w.remote.Subparts(ctx, st.SelectedModel, 1, w.cfg.SubpartPageLimit)
	if err != nil {
		return st, err
	}
	sp, ok := lo.Find(page.Items, func(sp models.Subpart) bool { return sp.ID == id })
	if !ok {
		return st, fmt.Errorf("subpart %d: %w", id, models.ErrNotFound)
	}
	return w.sel.Apply(selection.OpenSubpartDetail(sp)), nil
}

// Toggle sets or flips a flag. Switching an edit mode on goes through BeginEdit so the
// pending set and recipients are seeded, and opening a confirm dialog goes through
// Confirm so it only opens over real changes.
func (w *Workspace) Toggle(ctx context.Context, f selection.Flag, explicit *bool) (selection.State, error) {
	st := w.sel.Snapshot()
	on := !st.Flag(f)
	if explicit != nil {
		on = *explicit
	}
	if !on || st.Flag(f) {
		return w.sel.Apply(selection.Toggle(f, explicit)), nil
	}

	switch f {
	case selection.FlagEditMode:
		return w.BeginEdit(ctx, editflow.ScopeList)
	case selection.FlagSubpartDetailEdit:
		return w.BeginEdit(ctx, editflow.ScopeDetail)
	case selection.FlagConfirm:
		return w.Confirm(ctx, editflow.ScopeList)
	case selection.FlagSubpartConfirm:
		return w.Confirm(ctx, editflow.ScopeDetail)
	}
	return w.sel.Apply(selection.Toggle(f, explicit)), nil
}

// BeginEdit enters edit mode for scope, loading the subparts and contacts it seeds from.
func (w *Workspace) BeginEdit(ctx context.Context, scope editflow.Scope) (selection.State, error) {
	st := w.sel.Snapshot()

	var loaded []models.Subpart
	if scope == editflow.ScopeList {
		page, err := w.remote.Subparts(ctx, st.SelectedModel, 1, w.cfg.SubpartPageLimit)
		if err != nil {
			return st, fmt.Errorf("load subparts: %w", err)
		}
		loaded = page.Items
	}

	var contacts []models.CustomerContact
	if customerID, ok := w.customerID(st); ok {
		c, err := w.remote.Contacts(ctx, &customerID)
		if err != nil {
			// Recipients can still be picked by hand.
			slog.Warn("load contacts failed", "workspace", w.session.ID, "customer_id", customerID, "error", err)
		}
		contacts = c
	}
	return w.flow.Begin(scope, loaded, contacts)
}

func (w *Workspace) Stage(id int64, inUse int) (selection.State, error) {
	return w.flow.Stage(id, inUse)
}

// Contact adds or removes one recipient.
func (w *Workspace) Contact(email string, remove bool) selection.State {
	if remove {
		return w.sel.Apply(selection.RemoveContact(email))
	}
	return w.sel.Apply(selection.AddContact(email))
}

func (w *Workspace) SetReason(scope editflow.Scope, reason string) selection.State {
	return w.sel.Apply(editflow.SetReason(scope, reason))
}

func (w *Workspace) Confirm(ctx context.Context, scope editflow.Scope) (selection.State, error) {
	server, err := w.serverSnapshot(ctx, scope)
	if err != nil {
		return w.sel.Snapshot(), err
	}
	return w.flow.Confirm(scope, server)
}

func (w *Workspace) Cancel(scope editflow.Scope) selection.State {
	return w.flow.Cancel(scope)
}

// Submit sends the pending changes of scope. After the backend accepts them the
// change is published for auditing; a publish failure does not undo the update.
func (w *Workspace) Submit(ctx context.Context, scope editflow.Scope) (*editflow.Result, error) {
	st := w.sel.Snapshot()
	server, err := w.serverSnapshot(ctx, scope)
	if err != nil {
		return nil, err
	}

	target := editflow.Target{
		Actor: editflow.Actor{
			UserID: w.session.User.ID,
			Person: w.session.User.Name,
			IP:     w.session.IP,
		},
	}
	if st.SelectedModel != nil {
		target.ModelID = *st.SelectedModel
	}
	if scope == editflow.ScopeDetail && st.SubpartDetail != nil {
		target.ModelID = st.SubpartDetail.ModelID
	}
	if customerID, ok := w.customerID(st); ok {
		target.CustomerID = customerID
	}

	res, err := w.flow.Submit(ctx, scope, server, target)
	if err != nil {
		return nil, err
	}

	if w.notifier != nil {
		change := NewStatusChange(res, w.now())
		if err := w.notifier.PublishStatusChange(ctx, change); err != nil {
			slog.Error("publish status change failed", "change_id", change.ID, "model_id", change.ModelID, "error", err)
		}
	}
	return res, nil
}

// Refresh drops every cached query of this workspace.
func (w *Workspace) Refresh() int {
	on, off := true, false
	w.sel.Apply(selection.Toggle(selection.FlagRefreshing, &on))
	defer w.sel.Apply(selection.Toggle(selection.FlagRefreshing, &off))
	return w.remote.InvalidateAll()
}

// NewStatusChange builds the audit record of an accepted update.
func NewStatusChange(res *editflow.Result, at time.Time) models.StatusChange {
	req := res.Request
	return models.StatusChange{
		ID:          uuid.New(),
		CustomerID:  req.CustomerID,
		ModelID:     req.ModelID,
		UserID:      req.UserID,
		Person:      req.Person,
		IP:          req.IP,
		Reason:      req.Reason,
		Recipients:  req.MailSendAddress,
		Subparts:    req.Subparts,
		SubmittedAt: at.UTC(),
	}
}

// serverSnapshot is what staged values are diffed against: the freshest subpart page
// for the list, and for the detail dialog the cached record when present.
func (w *Workspace) serverSnapshot(ctx context.Context, scope editflow.Scope) ([]models.Subpart, error) {
	st := w.sel.Snapshot()

	if scope == editflow.ScopeDetail {
		if st.SubpartDetail == nil {
			return nil, editflow.ErrNoSubpart
		}
		detail := *st.SubpartDetail
		if page, ok := w.remote.CachedSubparts(detail.ModelID, 1, w.cfg.SubpartPageLimit); ok {
			if sp, found := lo.Find(page.Items, func(sp models.Subpart) bool { return sp.ID == detail.ID }); found {
				return []models.Subpart{sp}, nil
			}
		}
		return []models.Subpart{detail}, nil
	}

	page, err := w.remote.Subparts(ctx, st.SelectedModel, 1, w.cfg.SubpartPageLimit)
	if err != nil {
		return nil, fmt.Errorf("load subparts: %w", err)
	}
	return page.Items, nil
}

// customerID finds the customer owning the selected model.
func (w *Workspace) customerID(st selection.State) (int64, bool) {
	if st.SubpartDetail != nil && st.SubpartDetail.CustomerID != 0 {
		return st.SubpartDetail.CustomerID, true
	}
	if st.SelectedModel == nil {
		return 0, false
	}
	if st.ModelDetail != nil && st.ModelDetail.ID == *st.SelectedModel {
		return st.ModelDetail.CustomerID, true
	}
	if st.SelectedInspection != nil {
		if page, ok := w.remote.CachedModels(*st.SelectedInspection, w.currentModelPage(), w.cfg.ModelPageLimit); ok {
			if m, found := lo.Find(page.Items, func(m models.Model) bool { return m.ID == *st.SelectedModel }); found {
				return m.CustomerID, true
			}
		}
	}
	if page, ok := w.remote.CachedSubparts(*st.SelectedModel, 1, w.cfg.SubpartPageLimit); ok && len(page.Items) > 0 {
		return page.Items[0].CustomerID, true
	}
	return 0, false
}

func (w *Workspace) currentModelPage() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.modelPage
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
