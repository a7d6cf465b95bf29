package listview

import (
	"net/url"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/partsboard/internal/models"
)

func id(v int64) *int64 { return &v }

func TestParseQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  ViewState
	}{
		{name: "empty", query: "", want: ViewState{Page: 1, Limit: 10}},
		{name: "all customers", query: "customerId=all&page=3&limit=50", want: ViewState{Page: 3, Limit: 50}},
		{name: "customer filter", query: "customerId=4&search=+engine+", want: ViewState{CustomerID: id(4), Page: 1, Limit: 10, Search: "engine"}},
		{name: "invalid limit falls back", query: "limit=33", want: ViewState{Page: 1, Limit: 10}},
		{name: "invalid page falls back", query: "page=-2", want: ViewState{Page: 1, Limit: 10}},
		{name: "garbage customer ignored", query: "customerId=abc&limit=1000", want: ViewState{Page: 1, Limit: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParseQuery(q))
		})
	}
}

func TestViewState_EncodeRoundTrip(t *testing.T) {
	t.Parallel()

	v := ViewState{CustomerID: id(9), Page: 4, Limit: 200, Search: "모터"}
	back := ParseQuery(v.Values())
	assert.Equal(t, v, back)

	assert.Equal(t, "", DefaultViewState().Encode())
	assert.Equal(t, AllCustomers, DefaultViewState().CustomerParam())
}

func TestViewState_FilterAndSizeChangesResetPage(t *testing.T) {
	t.Parallel()

	v := ViewState{Page: 5, Limit: 20}

	c, err := v.WithCustomer("3")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Page)
	assert.Equal(t, int64(3), *c.CustomerID)

	c, err = c.WithPage(4).WithCustomer("all")
	require.NoError(t, err)
	assert.Nil(t, c.CustomerID)
	assert.Equal(t, 1, c.Page)

	_, err = v.WithCustomer("x")
	assert.Error(t, err)

	l := v.WithLimit(100)
	assert.Equal(t, 1, l.Page)
	assert.Equal(t, 100, l.Limit)
	assert.Equal(t, 10, v.WithLimit(7).Limit)

	s := v.WithSearch("engine")
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, "engine", s.Search)

	assert.Equal(t, 1, v.WithPage(0).Page)
}

func TestFilterInspections(t *testing.T) {
	t.Parallel()

	items := []models.Inspection{
		{ID: 1, Name: "Engine Block"},
		{ID: 2, Name: "Gearbox"},
		{ID: 3, Name: "engine mount"},
	}
	got := FilterInspections(items, "  ENGINE ")
	assert.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	assert.Len(t, FilterInspections(items, ""), 3)
	assert.Empty(t, FilterInspections(items, "valve"))
}

func TestInspectionRows_CustomerJoin(t *testing.T) {
	t.Parallel()

	company := gofakeit.Company()
	customers := []models.Customer{{ID: 1, Name: company}}
	items := []models.Inspection{
		{ID: 10, Name: "A", CustomerID: 1},
		{ID: 11, Name: "B", CustomerID: 2},
		{ID: 12, Name: "C", CustomerID: 2, DisplayCustomerName: "Display"},
	}

	rows := InspectionRows(items, customers, id(11))
	require.Len(t, rows, 3)
	assert.Equal(t, company, rows[0].CustomerName)
	assert.Equal(t, UnknownName, rows[1].CustomerName)
	assert.Equal(t, "Display", rows[2].CustomerName)
	assert.False(t, rows[0].Selected)
	assert.True(t, rows[1].Selected)
}

func TestSubpartRows_SwitchNeedsFullViewAndEditMode(t *testing.T) {
	t.Parallel()

	items := []models.Subpart{{ID: 1, InUse: 1}, {ID: 2, InUse: 0}}
	edited := map[int64]int{1: 0, 2: 0}

	tests := []struct {
		name       string
		fullView   bool
		editMode   bool
		wantSwitch bool
	}{
		{name: "condensed", wantSwitch: false},
		{name: "full view only", fullView: true, wantSwitch: false},
		{name: "edit mode only", editMode: true, wantSwitch: false},
		{name: "both", fullView: true, editMode: true, wantSwitch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rows := SubpartRows(items, SubpartOptions{FullView: tt.fullView, EditMode: tt.editMode, Edited: edited})
			for _, r := range rows {
				assert.Equal(t, tt.wantSwitch, r.ShowSwitch)
			}
			assert.Equal(t, tt.editMode, rows[0].Changed)
			assert.False(t, rows[1].Changed)
		})
	}
}

func TestNewPager(t *testing.T) {
	t.Parallel()

	p := NewPager(models.NewPagination(57, 6, 10))
	assert.Equal(t, 6, p.TotalPages)
	assert.True(t, p.PrevEnabled)
	assert.False(t, p.NextEnabled)

	p = NewPager(models.NewPagination(57, 7, 10))
	assert.False(t, p.NextEnabled)

	p = NewPager(models.NewPagination(57, 1, 10))
	assert.False(t, p.PrevEnabled)
	assert.True(t, p.NextEnabled)
}

func TestBreadcrumb(t *testing.T) {
	t.Parallel()

	inspections := []models.Inspection{{ID: 1, Name: "라인 A"}}
	modelList := []models.Model{{ID: 5, Name: "M-5"}}

	assert.Nil(t, Breadcrumb(inspections, modelList, nil, nil))
	assert.Equal(t, []string{"인스펙션", "라인 A", "M-5"}, Breadcrumb(inspections, modelList, id(1), id(5)))
	assert.Equal(t, []string{"인스펙션", "2", "9"}, Breadcrumb(inspections, modelList, id(2), id(9)))
	assert.Equal(t, "인스펙션 〉 라인 A", BreadcrumbString(Breadcrumb(inspections, nil, id(1), nil)))
}
