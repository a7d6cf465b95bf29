package editflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/internal/observability"
	"github.com/your-org/partsboard/internal/selection"
	"github.com/your-org/partsboard/pkg/dto"
)

var (
	ErrSubmitInFlight = errors.New("a status update is already in flight")
	ErrReasonRequired = errors.New("modification reason is required")
	ErrNoChanges      = errors.New("no subpart status changed")
	ErrNotEditing     = errors.New("edit mode is not active")
	ErrNotConfirming  = errors.New("changes have not been confirmed")
	ErrNoSubpart      = errors.New("no subpart selected")
	ErrNoModel        = errors.New("no model selected")
)

// Scope tells the bulk list edit apart from the single subpart edit.
type Scope string

const (
	ScopeList   Scope = "list"
	ScopeDetail Scope = "detail"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeList, ScopeDetail:
		return Scope(s), nil
	}
	return "", fmt.Errorf("unknown edit scope %q: %w", s, models.ErrInvalidArgument)
}

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseEditing    Phase = "editing"
	PhaseConfirming Phase = "confirming"
	PhaseSubmitting Phase = "submitting"
)

// Writer performs the bulk status update.
type Writer interface {
	UpdateSubpartsStatus(ctx context.Context, req dto.UpdateSubpartsStatusRequest) (*dto.UpdateSubpartsStatusResponse, error)
}

// Change is one staged value that differs from what the server last reported.
type Change struct {
	Subpart models.Subpart
	From    int
	To      int
}

// Actor is who submits an update.
type Actor struct {
	UserID int64
	Person string
	IP     string
}

// Target identifies the model the update applies to.
type Target struct {
	CustomerID int64
	ModelID    int64
	Actor      Actor
}

type Result struct {
	Request  dto.UpdateSubpartsStatusRequest
	Response *dto.UpdateSubpartsStatusResponse
	Changes  []Change
}

// Flow drives both edit scopes against one selection store.
type Flow struct {
	store  *selection.Store
	writer Writer
}

func New(store *selection.Store, writer Writer) *Flow {
	return &Flow{store: store, writer: writer}
}

// Begin enters edit mode. The list scope seeds the pending set from every loaded
// subpart, the detail scope from the subpart shown in the dialog. Both scopes select
// the customer's main contacts as recipients.
func (f *Flow) Begin(scope Scope, loaded []models.Subpart, contacts []models.CustomerContact) (selection.State, error) {
	mains := MainContacts(contacts)

	switch scope {
	case ScopeList:
		if f.store.Snapshot().SelectedModel == nil {
			return f.store.Snapshot(), ErrNoModel
		}
		seed := lo.SliceToMap(loaded, func(sp models.Subpart) (int64, int) { return sp.ID, sp.InUse })
		on := true
		return f.store.Apply(
			selection.ResetEditState(),
			selection.Toggle(selection.FlagEditMode, &on),
			selection.SetEditedSubparts(seed),
			selection.SetContacts(mains),
		), nil

	case ScopeDetail:
		detail := f.store.Snapshot().SubpartDetail
		if detail == nil {
			return f.store.Snapshot(), ErrNoSubpart
		}
		on := true
		return f.store.Apply(
			selection.ResetEditState(),
			selection.Toggle(selection.FlagSubpartDetailEdit, &on),
			selection.SetEditedSubparts(map[int64]int{detail.ID: detail.InUse}),
			selection.SetContacts(mains),
		), nil
	}
	return f.store.Snapshot(), fmt.Errorf("begin edit: %w", models.ErrInvalidArgument)
}

// Stage records a proposed value for one subpart. Edits are locked while an update
// is in flight.
func (f *Flow) Stage(id int64, inUse int) (selection.State, error) {
	if inUse != models.InUseOn && inUse != models.InUseOff {
		return f.store.Snapshot(), fmt.Errorf("inUse must be 0 or 1: %w", models.ErrInvalidArgument)
	}
	st, ok := f.store.TryApply(func(s selection.State) bool {
		return s.Editing() && !s.Updating
	}, selection.StageSubpart(id, inUse))
	switch {
	case ok:
		return st, nil
	case st.Updating:
		return st, ErrSubmitInFlight
	}
	return st, ErrNotEditing
}

// Confirm opens the confirmation dialog when something changed. A detail edit with
// nothing changed just leaves edit mode.
func (f *Flow) Confirm(scope Scope, server []models.Subpart) (selection.State, error) {
	st := f.store.Snapshot()
	if !editing(st, scope) {
		return st, ErrNotEditing
	}

	if len(Changes(st, server)) == 0 {
		if scope == ScopeDetail {
			return f.store.Apply(selection.ResetEditState()), nil
		}
		return st, ErrNoChanges
	}

	on := true
	return f.store.Apply(selection.Toggle(confirmFlag(scope), &on)), nil
}

// Cancel returns to idle from editing or confirming.
func (f *Flow) Cancel(scope Scope) selection.State {
	off := false
	return f.store.Apply(
		selection.Toggle(confirmFlag(scope), &off),
		selection.ResetEditState(),
	)
}

// Submit sends the diff as one update. It is only reachable from the confirm dialog
// and only one submit runs at a time. On failure the pending set, recipients, reason
// and dialogs are kept and only the busy flag clears.
func (f *Flow) Submit(ctx context.Context, scope Scope, server []models.Subpart, target Target) (*Result, error) {
	st := f.store.Snapshot()
	switch CurrentPhase(st, scope) {
	case PhaseIdle:
		return nil, ErrNotEditing
	case PhaseSubmitting:
		return nil, ErrSubmitInFlight
	case PhaseEditing:
		return nil, ErrNotConfirming
	}

	reason := strings.TrimSpace(Reason(st, scope))
	if reason == "" {
		return nil, ErrReasonRequired
	}
	changes := Changes(st, server)
	if len(changes) == 0 {
		return nil, ErrNoChanges
	}
	if target.ModelID == 0 {
		return nil, ErrNoModel
	}

	next, ok := f.store.TryApply(func(s selection.State) bool {
		return CurrentPhase(s, scope) == PhaseConfirming
	}, selection.SetUpdating(true))
	if !ok {
		if next.Updating {
			return nil, ErrSubmitInFlight
		}
		return nil, ErrNotConfirming
	}

	ip := target.Actor.IP
	if ip == "" {
		ip = "0.0.0.0"
	}
	req := dto.UpdateSubpartsStatusRequest{
		CustomerID:      target.CustomerID,
		ModelID:         target.ModelID,
		UserID:          target.Actor.UserID,
		Person:          target.Actor.Person,
		IP:              ip,
		Reason:          reason,
		MailSendAddress: append([]string{}, st.SelectedContacts...),
		Subparts: lo.Map(changes, func(c Change, _ int) models.SubpartStatus {
			return models.SubpartStatus{ID: c.Subpart.ID, InUse: c.To}
		}),
	}

	resp, err := f.writer.UpdateSubpartsStatus(ctx, req)
	if err != nil {
		f.store.Apply(selection.SetUpdating(false))
		observability.StatusUpdates.WithLabelValues(string(scope), "error").Inc()
		slog.Warn("subpart status update failed", "scope", scope, "model_id", target.ModelID, "error", err)
		return nil, fmt.Errorf("submit %s edit: %w", scope, err)
	}

	off := false
	done := []selection.Transition{
		selection.SetUpdating(false),
		selection.Toggle(selection.FlagConfirm, &off),
		selection.Toggle(selection.FlagSubpartConfirm, &off),
		selection.Toggle(selection.FlagSaveDialog, &off),
		selection.ResetEditState(),
	}
	if scope == ScopeDetail {
		done = append(done, selection.Toggle(selection.FlagSubpartDetail, &off))
	}
	f.store.Apply(done...)

	observability.StatusUpdates.WithLabelValues(string(scope), "ok").Inc()
	slog.Info("subpart status updated",
		"scope", scope,
		"model_id", target.ModelID,
		"changed", len(changes),
		"recipients", len(req.MailSendAddress),
	)
	return &Result{Request: req, Response: resp, Changes: changes}, nil
}

// Changes recomputes the diff between staged values and the server snapshot, in
// server order. Staged ids the snapshot does not contain are ignored.
func Changes(st selection.State, server []models.Subpart) []Change {
	return lo.FilterMap(server, func(sp models.Subpart, _ int) (Change, bool) {
		v, ok := st.EditedSubparts[sp.ID]
		if !ok || v == sp.InUse {
			return Change{}, false
		}
		return Change{Subpart: sp, From: sp.InUse, To: v}, true
	})
}

// CanSave is the save guard: enabled only with at least one real change and no
// update in flight.
func CanSave(st selection.State, scope Scope, server []models.Subpart) bool {
	return editing(st, scope) && !st.Updating && len(Changes(st, server)) > 0
}

// CurrentPhase reports where the edit lifecycle of scope is.
func CurrentPhase(st selection.State, scope Scope) Phase {
	switch {
	case st.Updating && editing(st, scope):
		return PhaseSubmitting
	case st.Flag(confirmFlag(scope)) && editing(st, scope):
		return PhaseConfirming
	case editing(st, scope):
		return PhaseEditing
	}
	return PhaseIdle
}

// ActiveScope is the scope currently editing, the detail edit taking precedence.
func ActiveScope(st selection.State) (Scope, bool) {
	switch {
	case st.SubpartDetailEditMode:
		return ScopeDetail, true
	case st.EditMode:
		return ScopeList, true
	}
	return "", false
}

func Reason(st selection.State, scope Scope) string {
	if scope == ScopeDetail {
		return st.SubpartReason
	}
	return st.ModificationReason
}

// SetReason returns the transition that writes the reason of scope.
func SetReason(scope Scope, reason string) selection.Transition {
	if scope == ScopeDetail {
		return selection.SetSubpartReason(reason)
	}
	return selection.SetModificationReason(reason)
}

// DescribeChange renders one change as "Name: 사용중 → 미사용중".
func DescribeChange(c Change) string {
	return fmt.Sprintf("%s: %s → %s", c.Subpart.Name, models.InUseLabel(c.From), models.InUseLabel(c.To))
}

// MainContacts returns the emails of contacts flagged as main, without duplicates.
func MainContacts(contacts []models.CustomerContact) []string {
	emails := lo.FilterMap(contacts, func(c models.CustomerContact, _ int) (string, bool) {
		return c.PersonEmail, c.IsMain == 1 && c.PersonEmail != ""
	})
	return lo.Uniq(emails)
}

func editing(st selection.State, scope Scope) bool {
	if scope == ScopeDetail {
		return st.SubpartDetailEditMode
	}
	return st.EditMode
}

func confirmFlag(scope Scope) selection.Flag {
	if scope == ScopeDetail {
		return selection.FlagSubpartConfirm
	}
	return selection.FlagConfirm
}
