package selection

import (
	"slices"

	"github.com/your-org/partsboard/internal/models"
)

// Transition is a pure step from one state to the next. Transitions never do I/O.
type Transition func(State) State

// Chain applies transitions left to right.
func Chain(ts ...Transition) Transition {
	return func(s State) State {
		for _, t := range ts {
			s = t(s)
		}
		return s
	}
}

// SelectInspection selects an inspection. Choosing a different one drops the model
// selection and every piece of edit state.
func SelectInspection(id *int64) Transition {
	return func(s State) State {
		next := s.Clone()
		if sameID(s.SelectedInspection, id) {
			return next
		}
		next.SelectedInspection = copyID(id)
		next.SelectedModel = nil
		next.ModelDetail = nil
		next.SubpartDetail = nil
		next.ModelDetailOpen = false
		next.SubpartDetailOpen = false
		next.SubpartFullView = false
		next.ConfirmOpen = false
		next.SubpartConfirmOpen = false
		next.SaveDialogOpen = false
		if id != nil {
			next.ModelListVisible = true
		}
		return resetEdit(next)
	}
}

// SelectModel selects a model and opens the subpart panel. Staged edits belong to
// one model, so switching models clears them.
func SelectModel(id *int64) Transition {
	return func(s State) State {
		next := s.Clone()
		changed := !sameID(s.SelectedModel, id)
		next.SelectedModel = copyID(id)
		if id != nil {
			next.SubpartListVisible = true
		}
		if changed {
			next.SubpartDetail = nil
			next.SubpartDetailOpen = false
			next.ConfirmOpen = false
			next.SubpartConfirmOpen = false
			next = resetEdit(next)
		}
		return next
	}
}

// OpenModelDetail shows the read-only model dialog for the record as rendered.
func OpenModelDetail(m models.Model) Transition {
	return func(s State) State {
		next := s.Clone()
		next.ModelDetail = &m
		next.ModelDetailOpen = true
		return next
	}
}

// OpenSubpartDetail shows the subpart dialog. A detail edit in progress for another
// subpart is abandoned.
func OpenSubpartDetail(sp models.Subpart) Transition {
	return func(s State) State {
		next := s.Clone()
		if next.SubpartDetailEditMode && (s.SubpartDetail == nil || s.SubpartDetail.ID != sp.ID) {
			next = resetEdit(next)
		}
		next.SubpartDetail = &sp
		next.SubpartDetailOpen = true
		return next
	}
}

// Toggle sets f to *explicit, or flips it when explicit is nil. Leaving either edit
// mode resets the edit state, and closing the subpart dialog ends a detail edit.
func Toggle(f Flag, explicit *bool) Transition {
	return func(s State) State {
		next := s.Clone()
		p := next.flag(f)
		if p == nil {
			return next
		}
		if explicit != nil {
			*p = *explicit
		} else {
			*p = !*p
		}

		switch f {
		case FlagEditMode:
			if !next.EditMode {
				next = resetEdit(next)
				next.ConfirmOpen = false
			}
		case FlagSubpartDetailEdit:
			if !next.SubpartDetailEditMode {
				next = resetEdit(next)
				next.SubpartConfirmOpen = false
			}
		case FlagSubpartDetail:
			if !next.SubpartDetailOpen && next.SubpartDetailEditMode {
				next = resetEdit(next)
				next.SubpartConfirmOpen = false
			}
		}
		return next
	}
}

// StageSubpart upserts one proposed value. It is not compared to the server here.
func StageSubpart(id int64, inUse int) Transition {
	return func(s State) State {
		next := s.Clone()
		next.EditedSubparts[id] = inUse
		return next
	}
}

func SetEditedSubparts(edits map[int64]int) Transition {
	return func(s State) State {
		next := s.Clone()
		next.EditedSubparts = make(map[int64]int, len(edits))
		for id, v := range edits {
			next.EditedSubparts[id] = v
		}
		return next
	}
}

func SetContacts(emails []string) Transition {
	return func(s State) State {
		next := s.Clone()
		next.SelectedContacts = dedupe(emails)
		return next
	}
}

// AddContact appends a recipient unless it is already selected.
func AddContact(email string) Transition {
	return func(s State) State {
		next := s.Clone()
		if email != "" && !slices.Contains(next.SelectedContacts, email) {
			next.SelectedContacts = append(next.SelectedContacts, email)
		}
		return next
	}
}

func RemoveContact(email string) Transition {
	return func(s State) State {
		next := s.Clone()
		next.SelectedContacts = slices.DeleteFunc(next.SelectedContacts, func(c string) bool { return c == email })
		return next
	}
}

func SetModificationReason(reason string) Transition {
	return func(s State) State {
		next := s.Clone()
		next.ModificationReason = reason
		return next
	}
}

func SetSubpartReason(reason string) Transition {
	return func(s State) State {
		next := s.Clone()
		next.SubpartReason = reason
		return next
	}
}

func SetUpdating(v bool) Transition {
	return func(s State) State {
		next := s.Clone()
		next.Updating = v
		return next
	}
}

// ResetModelSelection drops the model, its subpart dialog and any edit, and collapses
// the subpart panel.
func ResetModelSelection() Transition {
	return func(s State) State {
		next := s.Clone()
		next.SelectedModel = nil
		next.SubpartDetail = nil
		next.SubpartDetailOpen = false
		next.SubpartListVisible = false
		next.SubpartFullView = false
		next.ConfirmOpen = false
		next.SubpartConfirmOpen = false
		return resetEdit(next)
	}
}

// ResetSubpartSelection collapses the subpart panel but keeps the selected model.
func ResetSubpartSelection() Transition {
	return func(s State) State {
		next := s.Clone()
		next.SubpartListVisible = false
		next.SubpartFullView = false
		next.EditMode = false
		next.EditedSubparts = map[int64]int{}
		next.SelectedContacts = []string{}
		return next
	}
}

// ResetEditState ends both edit flows and restores reason defaults.
func ResetEditState() Transition {
	return func(s State) State {
		return resetEdit(s.Clone())
	}
}

// CloseSubpartList hides the subpart panel, leaving full view and ending a bulk edit.
func CloseSubpartList() Transition {
	return func(s State) State {
		next := s.Clone()
		next.SubpartListVisible = false
		next.SubpartFullView = false
		if next.EditMode {
			next = resetEdit(next)
			next.ConfirmOpen = false
		}
		return next
	}
}

func resetEdit(s State) State {
	s.EditMode = false
	s.SubpartDetailEditMode = false
	s.EditedSubparts = map[int64]int{}
	s.SelectedContacts = []string{}
	s.ModificationReason = s.DefaultReason()
	s.SubpartReason = ""
	return s
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
