package listview

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/pkg/dto"
)

// UnknownName is shown when a join by id finds nothing.
const UnknownName = "알 수 없음"

const breadcrumbSep = " 〉 "

// FilterInspections narrows the loaded page by a case-insensitive substring of the name.
// It never asks the server for more rows.
func FilterInspections(items []models.Inspection, term string) []models.Inspection {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	return lo.Filter(items, func(it models.Inspection, _ int) bool {
		return strings.Contains(strings.ToLower(it.Name), term)
	})
}

// CustomerName joins a customer id against the loaded customer list.
func CustomerName(customers []models.Customer, id int64) string {
	c, ok := lo.Find(customers, func(c models.Customer) bool { return c.ID == id })
	if !ok || c.Name == "" {
		return UnknownName
	}
	return c.Name
}

func InspectionRows(items []models.Inspection, customers []models.Customer, selected *int64) []dto.InspectionRow {
	return lo.Map(items, func(it models.Inspection, _ int) dto.InspectionRow {
		name := it.DisplayCustomerName
		if name == "" {
			name = CustomerName(customers, it.CustomerID)
		}
		return dto.InspectionRow{
			ID:           it.ID,
			Name:         it.Name,
			CustomerName: name,
			ModelCount:   it.ModelCount,
			Selected:     selected != nil && *selected == it.ID,
		}
	})
}

func ModelRows(items []models.Model, selected *int64) []dto.ModelRow {
	return lo.Map(items, func(m models.Model, _ int) dto.ModelRow {
		return dto.ModelRow{
			ID:           m.ID,
			Name:         m.Name,
			Status:       m.Status,
			SubpartCount: m.SubpartCount,
			CreatedAt:    formatDate(m.CreatedAt),
			Selected:     selected != nil && *selected == m.ID,
		}
	})
}

// SubpartOptions controls how subpart rows render.
type SubpartOptions struct {
	FullView bool
	EditMode bool
	Edited   map[int64]int
}

// SubpartRows renders subparts. The inline switch only appears when the panel is
// maximized and list edit mode is on; the shown value prefers a staged edit.
func SubpartRows(items []models.Subpart, opts SubpartOptions) []dto.SubpartRow {
	showSwitch := opts.FullView && opts.EditMode
	return lo.Map(items, func(sp models.Subpart, _ int) dto.SubpartRow {
		shown := sp.InUse
		if opts.EditMode {
			if v, ok := opts.Edited[sp.ID]; ok {
				shown = v
			}
		}
		return dto.SubpartRow{
			ID:         sp.ID,
			Name:       sp.Name,
			Desc:       sp.Desc,
			InUse:      sp.InUse,
			Shown:      shown,
			Changed:    shown != sp.InUse,
			ShowSwitch: showSwitch,
		}
	})
}

// NewPager exposes pagination with its prev/next controls.
func NewPager(p models.Pagination) dto.Pager {
	return dto.Pager{
		Pagination:  p,
		PrevEnabled: p.HasPrev(),
		NextEnabled: p.HasNext(),
	}
}

// Breadcrumb renders the drill-down path. Names come from the loaded pages and fall
// back to the raw id when the entity is not on the page.
func Breadcrumb(inspections []models.Inspection, modelList []models.Model, inspectionID, modelID *int64) []string {
	if inspectionID == nil && modelID == nil {
		return nil
	}
	parts := []string{"인스펙션"}
	if inspectionID != nil {
		name := strconv.FormatInt(*inspectionID, 10)
		if it, ok := lo.Find(inspections, func(it models.Inspection) bool { return it.ID == *inspectionID }); ok && it.Name != "" {
			name = it.Name
		}
		parts = append(parts, name)
	}
	if modelID != nil {
		name := strconv.FormatInt(*modelID, 10)
		if m, ok := lo.Find(modelList, func(m models.Model) bool { return m.ID == *modelID }); ok && m.Name != "" {
			name = m.Name
		}
		parts = append(parts, name)
	}
	return parts
}

func BreadcrumbString(parts []string) string {
	return strings.Join(parts, breadcrumbSep)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
