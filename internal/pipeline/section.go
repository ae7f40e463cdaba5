package pipeline

import (
	"fmt"
	"strings"

	"github.com/dvloznov/sheet-import/internal/config"
	"github.com/dvloznov/sheet-import/internal/domain"
)

// ExclusionRule names rows a builder must never turn into transactions.
// Empty fields match anything.
type ExclusionRule struct {
	Description string
	Merchant    string
}

// Matches reports whether the trimmed description and merchant hit the rule.
func (r ExclusionRule) Matches(description, merchant string) bool {
	if r.Description == "" && r.Merchant == "" {
		return false
	}
	if r.Description != "" && strings.TrimSpace(description) != r.Description {
		return false
	}
	if r.Merchant != "" && strings.TrimSpace(merchant) != r.Merchant {
		return false
	}
	return true
}

// SectionSpec is everything a builder needs to know about one section.
type SectionSpec struct {
	Name string
	// Document identifies the source sheet; it seeds record IDs.
	Document string
	Tag      string
	Layout   Layout

	StartLine int
	// EndLine is exclusive; zero means the section ends at a stop marker
	// or at the end of the sheet.
	EndLine     int
	StopMarkers []string

	Exclusions          []ExclusionRule
	ReimbursementPrefix string
	ForeignCurrency     domain.Currency
}

// NewSectionSpec turns configuration into a builder spec.
func NewSectionSpec(section config.Section, document, reimbursementPrefix string) (SectionSpec, error) {
	layout, err := LayoutFor(LayoutKind(section.Layout))
	if err != nil {
		return SectionSpec{}, fmt.Errorf("NewSectionSpec: section %q: %w", section.Name, err)
	}
	layout, err = layout.WithOverrides(section.Columns)
	if err != nil {
		return SectionSpec{}, fmt.Errorf("NewSectionSpec: section %q: %w", section.Name, err)
	}

	rules := make([]ExclusionRule, 0, len(section.Exclude))
	for _, r := range section.Exclude {
		rules = append(rules, ExclusionRule{Description: r.Description, Merchant: r.Merchant})
	}

	return SectionSpec{
		Name:                section.Name,
		Document:            document,
		Tag:                 section.Tag,
		Layout:              layout,
		StartLine:           section.StartLine,
		EndLine:             section.EndLine,
		StopMarkers:         section.StopMarkers,
		Exclusions:          rules,
		ReimbursementPrefix: reimbursementPrefix,
		ForeignCurrency:     DefaultForeignCurrency,
	}, nil
}

// excluded reports whether any exclusion rule matches.
func (s SectionSpec) excluded(description, merchant string) bool {
	for _, rule := range s.Exclusions {
		if rule.Matches(description, merchant) {
			return true
		}
	}
	return false
}

// before reports whether line precedes the section.
func (s SectionSpec) before(line int) bool {
	return line < s.StartLine
}

// ends reports whether the scan must stop at this row, which is not part of
// the section.
func (s SectionSpec) ends(line int, firstCell string) bool {
	if s.EndLine > 0 && line >= s.EndLine {
		return true
	}
	if line <= s.StartLine {
		return false
	}
	for _, marker := range s.StopMarkers {
		if marker != "" && strings.Contains(firstCell, marker) {
			return true
		}
	}
	return false
}
