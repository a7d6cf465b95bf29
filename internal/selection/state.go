package selection

import (
	"maps"
	"slices"

	"github.com/your-org/partsboard/internal/models"
)

// DefaultReason is the bulk modification reason a fresh edit starts with.
const DefaultReason = "부품 상태 수정"

// State is where an operator currently is in the inspection, model, subpart drill-down,
// plus the in-progress edit. It is a value: transitions return a new State.
type State struct {
	SelectedInspection *int64
	SelectedModel      *int64
	ModelDetail        *models.Model
	SubpartDetail      *models.Subpart

	ModelDetailOpen    bool
	SubpartDetailOpen  bool
	ModelFullView      bool
	SubpartFullView    bool
	ModelListVisible   bool
	SubpartListVisible bool

	EditMode              bool
	SubpartDetailEditMode bool
	EditedSubparts        map[int64]int
	SelectedContacts      []string
	ModificationReason    string
	SubpartReason         string

	SaveDialogOpen     bool
	ConfirmOpen        bool
	SubpartConfirmOpen bool

	Updating   bool
	Refreshing bool

	defaultReason string
}

// New returns the initial state. An empty reason falls back to DefaultReason.
func New(defaultReason string) State {
	if defaultReason == "" {
		defaultReason = DefaultReason
	}
	return State{
		ModelListVisible:   true,
		SubpartListVisible: true,
		EditedSubparts:     map[int64]int{},
		SelectedContacts:   []string{},
		ModificationReason: defaultReason,
		defaultReason:      defaultReason,
	}
}

// Clone deep-copies the mutable parts so a transition never aliases its input.
func (s State) Clone() State {
	out := s
	out.EditedSubparts = maps.Clone(s.EditedSubparts)
	if out.EditedSubparts == nil {
		out.EditedSubparts = map[int64]int{}
	}
	out.SelectedContacts = slices.Clone(s.SelectedContacts)
	if out.SelectedContacts == nil {
		out.SelectedContacts = []string{}
	}
	if s.SelectedInspection != nil {
		v := *s.SelectedInspection
		out.SelectedInspection = &v
	}
	if s.SelectedModel != nil {
		v := *s.SelectedModel
		out.SelectedModel = &v
	}
	return out
}

func (s State) DefaultReason() string {
	if s.defaultReason == "" {
		return DefaultReason
	}
	return s.defaultReason
}

// Editing reports whether either edit flow is active.
func (s State) Editing() bool {
	return s.EditMode || s.SubpartDetailEditMode
}

// Flag names every boolean the operator can set or flip.
type Flag string

const (
	FlagModelDetail       Flag = "model_detail"
	FlagSubpartDetail     Flag = "subpart_detail"
	FlagModelFullView     Flag = "model_full_view"
	FlagSubpartFullView   Flag = "subpart_full_view"
	FlagModelList         Flag = "model_list"
	FlagSubpartList       Flag = "subpart_list"
	FlagEditMode          Flag = "edit_mode"
	FlagSubpartDetailEdit Flag = "subpart_detail_edit"
	FlagSaveDialog        Flag = "save_dialog"
	FlagConfirm           Flag = "confirm"
	FlagSubpartConfirm    Flag = "subpart_confirm"
	FlagRefreshing        Flag = "refreshing"
)

var flags = []Flag{
	FlagModelDetail, FlagSubpartDetail, FlagModelFullView, FlagSubpartFullView,
	FlagModelList, FlagSubpartList, FlagEditMode, FlagSubpartDetailEdit,
	FlagSaveDialog, FlagConfirm, FlagSubpartConfirm, FlagRefreshing,
}

// ParseFlag validates a flag name coming from a request path.
func ParseFlag(name string) (Flag, bool) {
	f := Flag(name)
	return f, slices.Contains(flags, f)
}

func (s *State) flag(f Flag) *bool {
	switch f {
	case FlagModelDetail:
		return &s.ModelDetailOpen
	case FlagSubpartDetail:
		return &s.SubpartDetailOpen
	case FlagModelFullView:
		return &s.ModelFullView
	case FlagSubpartFullView:
		return &s.SubpartFullView
	case FlagModelList:
		return &s.ModelListVisible
	case FlagSubpartList:
		return &s.SubpartListVisible
	case FlagEditMode:
		return &s.EditMode
	case FlagSubpartDetailEdit:
		return &s.SubpartDetailEditMode
	case FlagSaveDialog:
		return &s.SaveDialogOpen
	case FlagConfirm:
		return &s.ConfirmOpen
	case FlagSubpartConfirm:
		return &s.SubpartConfirmOpen
	case FlagRefreshing:
		return &s.Refreshing
	}
	return nil
}

// Flag reads the current value of f.
func (s State) Flag(f Flag) bool {
	if p := s.flag(f); p != nil {
		return *p
	}
	return false
}
