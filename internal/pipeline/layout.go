package pipeline

import (
	"fmt"
	"sort"

	"github.com/dvloznov/sheet-import/internal/config"
	"github.com/dvloznov/sheet-import/internal/sheet"
)

// LayoutKind identifies which builder a section uses.
type LayoutKind string

const (
	LayoutWide           LayoutKind = config.LayoutWide
	LayoutSingleProperty LayoutKind = config.LayoutSingleProperty
)

// noColumn marks a field a layout does not have.
const noColumn = -1

// ColumnMap is the field-mapping table of a layout: for every transaction
// field, the index of the cell it is read from.
type ColumnMap struct {
	Date                int
	Description         int
	Merchant            int
	BusinessFlag        int
	PaymentMethod       int
	ForeignAmount       int
	USDAmount           int
	USDSubtotal         int
	ReimbursementStatus int
}

// Layout is a named column mapping plus the shortest usable row.
type Layout struct {
	Kind     LayoutKind
	Columns  ColumnMap
	MinCells int
}

// WideLayout is the ledger block: Date, Desc, Merchant, Reimbursable,
// Business Expense, Payment Type, Actual Spent (THB), Actual Spent (USD),
// Conversion, Subtotal.
func WideLayout() Layout {
	return Layout{
		Kind:     LayoutWide,
		MinCells: 6,
		Columns: ColumnMap{
			Date:        0,
			Description: 1,
			Merchant:    2,
			// The sheet marks business expenses with an "X" under
			// Reimbursable, not under Business Expense (column 4).
			BusinessFlag:        3,
			PaymentMethod:       5,
			ForeignAmount:       6,
			USDAmount:           7,
			USDSubtotal:         9,
			ReimbursementStatus: noColumn,
		},
	}
}

// SinglePropertyLayout is the per-property block: Date, Desc, Merchant,
// Reimbursement, Payment Type, Subtotal.
func SinglePropertyLayout() Layout {
	return Layout{
		Kind:     LayoutSingleProperty,
		MinCells: 5,
		Columns: ColumnMap{
			Date:                0,
			Description:         1,
			Merchant:            2,
			BusinessFlag:        noColumn,
			PaymentMethod:       4,
			ForeignAmount:       noColumn,
			USDAmount:           noColumn,
			USDSubtotal:         5,
			ReimbursementStatus: 3,
		},
	}
}

// LayoutFor returns the default layout for kind.
func LayoutFor(kind LayoutKind) (Layout, error) {
	switch kind {
	case LayoutWide:
		return WideLayout(), nil
	case LayoutSingleProperty:
		return SinglePropertyLayout(), nil
	default:
		return Layout{}, fmt.Errorf("LayoutFor: unknown layout %q", kind)
	}
}

// WithOverrides returns a copy of the layout with the named columns moved.
// A negative index removes the field from the layout.
func (l Layout) WithOverrides(overrides map[string]int) (Layout, error) {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := l.Columns.field(name)
		if field == nil {
			return Layout{}, fmt.Errorf("WithOverrides: unknown column %q", name)
		}
		idx := overrides[name]
		if idx < 0 {
			idx = noColumn
		}
		*field = idx
	}
	return l, nil
}

func (c *ColumnMap) field(name string) *int {
	switch name {
	case "date":
		return &c.Date
	case "description":
		return &c.Description
	case "merchant":
		return &c.Merchant
	case "business_flag":
		return &c.BusinessFlag
	case "payment_method":
		return &c.PaymentMethod
	case "foreign_amount":
		return &c.ForeignAmount
	case "usd_amount":
		return &c.USDAmount
	case "usd_subtotal":
		return &c.USDSubtotal
	case "reimbursement_status":
		return &c.ReimbursementStatus
	default:
		return nil
	}
}

func (l Layout) classifierColumns() sheet.Columns {
	return sheet.Columns{
		Date:        l.Columns.Date,
		Description: l.Columns.Description,
		Merchant:    l.Columns.Merchant,
		MinCells:    l.MinCells,
	}
}
