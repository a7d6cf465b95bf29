package workspace

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/your-org/partsboard/internal/cache"
	"github.com/your-org/partsboard/internal/editflow"
	"github.com/your-org/partsboard/internal/listview"
	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/internal/remote"
	"github.com/your-org/partsboard/internal/selection"
	"github.com/your-org/partsboard/pkg/dto"
)

// section resolves one query. With wait it fetches; otherwise it reports what the
// cache holds and starts a background fetch when nothing is there yet.
func section[T any](ctx context.Context, wait bool, state func() cache.State[T], fetch func(context.Context) (T, error)) (T, bool, error) {
	if wait {
		v, err := fetch(ctx)
		return v, false, err
	}
	st := state()
	if st.HasData {
		return st.Data, false, nil
	}
	if !st.IsLoading {
		bg := context.WithoutCancel(ctx)
		go func() { _, _ = fetch(bg) }()
	}
	return st.Data, true, st.Err
}

// View composes the dashboard. Sections load independently and a failing section
// reports its own error without failing the others.
func (w *Workspace) View(ctx context.Context, wait bool) dto.WorkspaceView {
	st := w.sel.Snapshot()

	w.mu.Lock()
	query := w.view
	searchInput := w.searchInput
	modelPage := w.modelPage
	w.mu.Unlock()

	var (
		customers      models.Page[models.Customer]
		customersErr   error
		inspections    models.Page[models.Inspection]
		inspLoading    bool
		inspErr        error
		modelList      models.Page[models.Model]
		modelsLoading  bool
		modelsErr      error
		subparts       models.Page[models.Subpart]
		subpartLoading bool
		subpartErr     error
		contacts       []models.CustomerContact
	)

	params := remote.InspectionParams{
		CustomerID: query.CustomerID,
		Page:       query.Page,
		Limit:      query.Limit,
		Search:     query.Search,
	}

	var g errgroup.Group
	g.Go(func() error {
		customers, _, customersErr = section(ctx, wait,
			func() cache.State[models.Page[models.Customer]] {
				return w.remote.CustomersState(1, w.cfg.CustomerLimit)
			},
			func(ctx context.Context) (models.Page[models.Customer], error) {
				return w.remote.Customers(ctx, 1, w.cfg.CustomerLimit)
			})
		return nil
	})
	g.Go(func() error {
		inspections, inspLoading, inspErr = section(ctx, wait,
			func() cache.State[models.Page[models.Inspection]] { return w.remote.InspectionsState(params) },
			func(ctx context.Context) (models.Page[models.Inspection], error) {
				return w.remote.Inspections(ctx, params)
			})
		return nil
	})
	if st.SelectedInspection != nil {
		inspectionID := *st.SelectedInspection
		g.Go(func() error {
			modelList, modelsLoading, modelsErr = section(ctx, wait,
				func() cache.State[models.Page[models.Model]] {
					return w.remote.ModelsState(inspectionID, modelPage, w.cfg.ModelPageLimit)
				},
				func(ctx context.Context) (models.Page[models.Model], error) {
					return w.remote.Models(ctx, &inspectionID, modelPage, w.cfg.ModelPageLimit)
				})
			return nil
		})
	}
	if st.SelectedModel != nil {
		modelID := *st.SelectedModel
		g.Go(func() error {
			subparts, subpartLoading, subpartErr = section(ctx, wait,
				func() cache.State[models.Page[models.Subpart]] {
					return w.remote.SubpartsState(modelID, 1, w.cfg.SubpartPageLimit)
				},
				func(ctx context.Context) (models.Page[models.Subpart], error) {
					return w.remote.Subparts(ctx, &modelID, 1, w.cfg.SubpartPageLimit)
				})
			return nil
		})
	}
	_ = g.Wait()

	if st.Editing() {
		if customerID, ok := w.customerID(st); ok {
			contacts, _ = w.remote.CachedContacts(&customerID)
		}
	}

	view := dto.WorkspaceView{
		Query:       QueryDTO(query),
		Customers:   nonNil(customers.Items),
		CustomerErr: errString(customersErr),
		Breadcrumb:  listview.Breadcrumb(inspections.Items, modelList.Items, st.SelectedInspection, st.SelectedModel),
		Inspections: dto.InspectionSection{
			Loading:    inspLoading,
			Error:      errString(inspErr),
			SearchTerm: searchInput,
			Rows: listview.InspectionRows(
				listview.FilterInspections(inspections.Items, searchInput),
				customers.Items,
				st.SelectedInspection,
			),
			Pager: listview.NewPager(pagination(inspections.Pagination, query.Page, query.Limit)),
		},
		Dialogs:    dialogs(st),
		Refreshing: st.Refreshing,
	}

	if st.SelectedInspection != nil {
		view.Models = &dto.ModelSection{
			Visible:  st.ModelListVisible,
			FullView: st.ModelFullView,
			Loading:  modelsLoading,
			Error:    errString(modelsErr),
			Rows:     listview.ModelRows(modelList.Items, st.SelectedModel),
			Pager:    listview.NewPager(pagination(modelList.Pagination, modelPage, w.cfg.ModelPageLimit)),
		}
	}
	if st.SelectedModel != nil {
		view.Subparts = &dto.SubpartSection{
			Visible:  st.SubpartListVisible,
			FullView: st.SubpartFullView,
			Loading:  subpartLoading,
			Error:    errString(subpartErr),
			Total:    subparts.Pagination.Total,
			Rows: listview.SubpartRows(subparts.Items, listview.SubpartOptions{
				FullView: st.SubpartFullView,
				EditMode: st.EditMode,
				Edited:   st.EditedSubparts,
			}),
		}
	}

	view.Edit = editSection(st, subparts.Items, contacts)
	if st.SubpartDetail != nil {
		view.Dialogs.SubpartDetailInUse = st.SubpartDetail.InUse
		if v, ok := st.EditedSubparts[st.SubpartDetail.ID]; ok && st.SubpartDetailEditMode {
			view.Dialogs.SubpartDetailInUse = v
		}
	}
	return view
}

func ChangeDTOs(changes []editflow.Change) []dto.Change {
	return lo.Map(changes, func(c editflow.Change, _ int) dto.Change {
		return dto.Change{
			ID:          c.Subpart.ID,
			Name:        c.Subpart.Name,
			From:        c.From,
			To:          c.To,
			Description: editflow.DescribeChange(c),
		}
	})
}

// QueryDTO renders the URL view state.
func QueryDTO(v listview.ViewState) dto.ViewQuery {
	return dto.ViewQuery{
		CustomerID: v.CustomerParam(),
		Page:       v.Page,
		Limit:      v.Limit,
		Search:     v.Search,
		RawQuery:   v.Encode(),
	}
}

func editSection(st selection.State, loaded []models.Subpart, contacts []models.CustomerContact) dto.EditSection {
	scope, ok := editflow.ActiveScope(st)
	if !ok {
		return dto.EditSection{
			Phase:       string(editflow.PhaseIdle),
			Changes:     []dto.Change{},
			Recipients:  []dto.Recipient{},
			ContactPool: []dto.Recipient{},
			Reason:      st.ModificationReason,
		}
	}

	server := loaded
	if scope == editflow.ScopeDetail && st.SubpartDetail != nil {
		server = []models.Subpart{*st.SubpartDetail}
		if sp, found := lo.Find(loaded, func(sp models.Subpart) bool { return sp.ID == st.SubpartDetail.ID }); found {
			server = []models.Subpart{sp}
		}
	}

	changes := editflow.Changes(st, server)
	person := lo.SliceToMap(contacts, func(c models.CustomerContact) (string, string) { return c.PersonEmail, c.Person })

	return dto.EditSection{
		Scope:    string(scope),
		Phase:    string(editflow.CurrentPhase(st, scope)),
		Changes:  ChangeDTOs(changes),
		CanSave:  editflow.CanSave(st, scope, server),
		Updating: st.Updating,
		Recipients: lo.Map(st.SelectedContacts, func(email string, _ int) dto.Recipient {
			return dto.Recipient{Email: email, Person: person[email]}
		}),
		Reason: editflow.Reason(st, scope),
		ContactPool: lo.FilterMap(contacts, func(c models.CustomerContact, _ int) (dto.Recipient, bool) {
			return dto.Recipient{Email: c.PersonEmail, Person: c.Person}, c.PersonEmail != ""
		}),
	}
}

func dialogs(st selection.State) dto.Dialogs {
	d := dto.Dialogs{
		ConfirmOpen:         st.ConfirmOpen,
		SubpartConfirmOpen:  st.SubpartConfirmOpen,
		SubpartDetailEditOn: st.SubpartDetailEditMode,
	}
	if st.ModelDetailOpen {
		d.ModelDetail = st.ModelDetail
	}
	if st.SubpartDetailOpen {
		d.SubpartDetail = st.SubpartDetail
	}
	return d
}

// pagination keeps the pager meaningful while a page has not loaded yet.
func pagination(p models.Pagination, page, limit int) models.Pagination {
	if p.ItemsPerPage == 0 {
		return models.NewPagination(0, page, limit)
	}
	return p
}

func errString(err error) string {
	if err == nil || errors.Is(err, remote.ErrQueryDisabled) {
		return ""
	}
	return err.Error()
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
