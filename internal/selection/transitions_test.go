package selection

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/partsboard/internal/models"
)

func id(v int64) *int64 { return &v }

func boolPtr(v bool) *bool { return &v }

func editingState() State {
	return Chain(
		SelectInspection(id(1)),
		SelectModel(id(10)),
		Toggle(FlagEditMode, boolPtr(true)),
		StageSubpart(100, models.InUseOff),
		AddContact("a@example.com"),
		SetModificationReason("교체"),
	)(New(""))
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	s := New("")
	assert.Nil(t, s.SelectedInspection)
	assert.True(t, s.ModelListVisible)
	assert.True(t, s.SubpartListVisible)
	assert.Equal(t, DefaultReason, s.ModificationReason)
	assert.Empty(t, s.SubpartReason)
	assert.NotNil(t, s.EditedSubparts)
	assert.Equal(t, []string{}, s.SelectedContacts)

	custom := New("status change")
	assert.Equal(t, "status change", custom.ModificationReason)
	assert.Equal(t, "status change", ResetEditState()(custom).ModificationReason)
}

func TestSelectInspection_CascadeReset(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		a := gofakeit.Int64()
		b := a + 1 + int64(gofakeit.IntRange(0, 1000))

		s := Chain(
			SelectInspection(id(a)),
			SelectModel(id(gofakeit.Int64())),
			Toggle(FlagEditMode, boolPtr(true)),
			StageSubpart(gofakeit.Int64(), models.InUseOn),
			OpenSubpartDetail(models.Subpart{ID: 7}),
		)(New(""))
		require.NotNil(t, s.SelectedModel)
		require.NotEmpty(t, s.EditedSubparts)

		s = SelectInspection(id(b))(s)
		assert.Equal(t, b, *s.SelectedInspection)
		assert.Nil(t, s.SelectedModel)
		assert.Empty(t, s.EditedSubparts)
		assert.Empty(t, s.SelectedContacts)
		assert.False(t, s.EditMode)
		assert.Nil(t, s.SubpartDetail)
		assert.False(t, s.SubpartDetailOpen)
	}
}

func TestSelectInspection_SameIDKeepsState(t *testing.T) {
	t.Parallel()

	s := editingState()
	next := SelectInspection(id(1))(s)
	assert.Equal(t, int64(10), *next.SelectedModel)
	assert.Equal(t, map[int64]int{100: models.InUseOff}, next.EditedSubparts)
	assert.True(t, next.EditMode)
}

func TestSelectModel(t *testing.T) {
	t.Parallel()

	s := Chain(SelectInspection(id(1)), Toggle(FlagSubpartList, boolPtr(false)))(New(""))
	require.False(t, s.SubpartListVisible)

	s = SelectModel(id(10))(s)
	assert.True(t, s.SubpartListVisible, "selecting a model opens the subpart panel")
	assert.Equal(t, int64(10), *s.SelectedModel)

	s = editingState()
	same := SelectModel(id(10))(s)
	assert.NotEmpty(t, same.EditedSubparts, "reselecting the same model keeps edits")

	other := SelectModel(id(11))(s)
	assert.Empty(t, other.EditedSubparts)
	assert.False(t, other.EditMode)
}

func TestToggle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		flag     Flag
		explicit *bool
		start    bool
		want     bool
	}{
		{name: "flip on", flag: FlagModelFullView, start: false, want: true},
		{name: "flip off", flag: FlagModelFullView, start: true, want: false},
		{name: "force true stays true", flag: FlagSubpartFullView, explicit: boolPtr(true), start: true, want: true},
		{name: "force false from true", flag: FlagModelList, explicit: boolPtr(false), start: true, want: false},
		{name: "force true from false", flag: FlagConfirm, explicit: boolPtr(true), start: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := Toggle(tt.flag, boolPtr(tt.start))(New(""))
			s = Toggle(tt.flag, tt.explicit)(s)
			assert.Equal(t, tt.want, s.Flag(tt.flag))
		})
	}
}

func TestToggle_EditModeOffResetsEditState(t *testing.T) {
	t.Parallel()

	for name, explicit := range map[string]*bool{"flip": nil, "explicit": boolPtr(false)} {
		t.Run(name, func(t *testing.T) {
			s := Toggle(FlagEditMode, explicit)(editingState())
			assert.False(t, s.EditMode)
			assert.Empty(t, s.EditedSubparts)
			assert.Empty(t, s.SelectedContacts)
			assert.Equal(t, DefaultReason, s.ModificationReason)
			assert.Equal(t, int64(10), *s.SelectedModel, "selection survives")
		})
	}
}

func TestToggle_ClosingDetailEndsDetailEdit(t *testing.T) {
	t.Parallel()

	s := Chain(
		OpenSubpartDetail(models.Subpart{ID: 5, InUse: 1}),
		Toggle(FlagSubpartDetailEdit, boolPtr(true)),
		StageSubpart(5, 0),
		SetSubpartReason("broken"),
	)(New(""))

	s = Toggle(FlagSubpartDetail, boolPtr(false))(s)
	assert.False(t, s.SubpartDetailEditMode)
	assert.Empty(t, s.EditedSubparts)
	assert.Empty(t, s.SubpartReason)
}

func TestContacts(t *testing.T) {
	t.Parallel()

	s := SetContacts([]string{"a", "a", "", "b"})(New(""))
	assert.Equal(t, []string{"a", "b"}, s.SelectedContacts)

	s = AddContact("b")(s)
	assert.Equal(t, []string{"a", "b"}, s.SelectedContacts)

	s = Chain(RemoveContact("a"), AddContact("c"))(s)
	assert.Equal(t, []string{"b", "c"}, s.SelectedContacts)
}

func TestTransitionsDoNotAliasInput(t *testing.T) {
	t.Parallel()

	before := editingState()
	_ = StageSubpart(100, models.InUseOn)(before)
	_ = AddContact("z@example.com")(before)
	_ = SetEditedSubparts(map[int64]int{1: 1})(before)

	assert.Equal(t, map[int64]int{100: models.InUseOff}, before.EditedSubparts)
	assert.Equal(t, []string{"a@example.com"}, before.SelectedContacts)
}

func TestResets(t *testing.T) {
	t.Parallel()

	s := Toggle(FlagSubpartFullView, boolPtr(true))(editingState())

	m := ResetModelSelection()(s)
	assert.Nil(t, m.SelectedModel)
	assert.False(t, m.SubpartListVisible)
	assert.False(t, m.SubpartFullView)
	assert.False(t, m.EditMode)
	assert.Empty(t, m.EditedSubparts)
	assert.Equal(t, int64(1), *m.SelectedInspection)

	detail := Chain(
		OpenSubpartDetail(models.Subpart{ID: 100, ModelID: 10, Name: "Bolt", InUse: models.InUseOn}),
		Toggle(FlagSubpartDetailEdit, boolPtr(true)),
		SetSubpartReason("파손"),
		Toggle(FlagSubpartConfirm, boolPtr(true)),
	)(s)
	m = ResetModelSelection()(detail)
	assert.False(t, m.SubpartDetailEditMode)
	assert.False(t, m.SubpartConfirmOpen)
	assert.False(t, m.SubpartDetailOpen)
	assert.Nil(t, m.SubpartDetail)
	assert.Empty(t, m.SubpartReason)
	assert.Equal(t, DefaultReason, m.ModificationReason)
	assert.Empty(t, m.SelectedContacts)

	sp := ResetSubpartSelection()(s)
	assert.Equal(t, int64(10), *sp.SelectedModel)
	assert.False(t, sp.SubpartListVisible)
	assert.Empty(t, sp.SelectedContacts)

	c := CloseSubpartList()(s)
	assert.False(t, c.SubpartListVisible)
	assert.False(t, c.SubpartFullView)
	assert.False(t, c.EditMode)
	assert.Equal(t, DefaultReason, c.ModificationReason)
}

func TestParseFlag(t *testing.T) {
	t.Parallel()

	f, ok := ParseFlag("edit_mode")
	assert.True(t, ok)
	assert.Equal(t, FlagEditMode, f)

	_, ok = ParseFlag("updating")
	assert.False(t, ok, "the busy flag is owned by the submit path")
}
