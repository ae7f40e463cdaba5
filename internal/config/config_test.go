package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Sections, 2)
	assert.Equal(t, LayoutWide, cfg.Sections[0].Layout)
	assert.Equal(t, 392, cfg.Sections[0].StartLine)
	assert.Equal(t, 609, cfg.Sections[0].EndLine)
	assert.Equal(t, []ExcludeRule{{Description: "Florida House", Merchant: "Me"}}, cfg.Sections[0].Exclude)

	assert.Equal(t, LayoutSingleProperty, cfg.Sections[1].Layout)
	assert.Equal(t, 0, cfg.Sections[1].EndLine)
	assert.Contains(t, cfg.Sections[1].StopMarkers, "GRAND TOTAL")

	assert.True(t, cfg.ExpectedTotalUSD.Equal(decimal.RequireFromString("6804.11")))
	assert.True(t, cfg.ConversionRate.Equal(decimal.RequireFromString("0.031")))
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default().Source, cfg.Source)
	assert.Len(t, cfg.Sections, 2)
}

func TestParse_Overrides(t *testing.T) {
	data := []byte(`
source: gs://sheets/fullImport_20251101.csv
output: "-"
expected_total_usd: 5120.40
thb_usd_rate: "0.0305"
remove_duplicates: true
sections:
  - name: Expense Tracker
    layout: wide
    start_line: 10
    end_line: 200
    columns:
      business_flag: 4
    exclude:
      - description: Florida House
        merchant: Me
  - name: Florida House
    layout: single_property
    tag: Florida House
    start_line: 220
    stop_markers: ["GRAND TOTAL", "October 2025"]
log:
  level: debug
  format: json
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "gs://sheets/fullImport_20251101.csv", cfg.Source)
	assert.Equal(t, "-", cfg.Output)
	assert.True(t, cfg.ExpectedTotalUSD.Equal(decimal.RequireFromString("5120.40")))
	assert.True(t, cfg.ConversionRate.Equal(decimal.RequireFromString("0.0305")))
	assert.True(t, cfg.TolerancePercent.Equal(decimal.RequireFromString("1.5")), "unset values keep defaults")
	assert.True(t, cfg.RemoveDuplicates)
	assert.Equal(t, 3, cfg.DuplicateWindowDays)
	assert.Equal(t, "Reimbursement:", cfg.ReimbursementPrefix)

	require.Len(t, cfg.Sections, 2)
	assert.Equal(t, map[string]int{"business_flag": 4}, cfg.Sections[0].Columns)
	assert.Equal(t, []string{"GRAND TOTAL", "October 2025"}, cfg.Sections[1].StopMarkers)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "sourcefile: x.csv\n"},
		{"bad decimal", "expected_total_usd: lots\n"},
		{"negative rate", "thb_usd_rate: -0.03\n"},
		{"unknown layout", "sections:\n  - {name: A, layout: tall, start_line: 1}\n"},
		{"missing tag", "sections:\n  - {name: A, layout: single_property, start_line: 1}\n"},
		{"zero start", "sections:\n  - {name: A, layout: wide, start_line: 0, end_line: 5}\n"},
		{"end before start", "sections:\n  - {name: A, layout: wide, start_line: 9, end_line: 5}\n"},
		{"reserved reimbursement tag", "sections:\n  - {name: A, layout: single_property, tag: Reimbursement, start_line: 1}\n"},
		{"reserved business tag", "sections:\n  - {name: A, layout: single_property, tag: Business Expense, start_line: 1}\n"},
		{"empty exclude rule", "sections:\n  - {name: A, layout: wide, start_line: 1, exclude: [{}]}\n"},
		{"duplicate names", "sections:\n  - {name: A, layout: wide, start_line: 1}\n  - {name: A, layout: wide, start_line: 5}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "import.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: local.csv\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local.csv", cfg.Source)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
