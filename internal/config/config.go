package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dvloznov/sheet-import/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Layout names accepted in section configuration.
const (
	LayoutWide           = "wide"
	LayoutSingleProperty = "single_property"
)

// Config describes one import run: where the sheet lives, how its sections
// are laid out and what total the parsed expenses are reconciled against.
type Config struct {
	Source string
	Output string

	ExpectedTotalUSD decimal.Decimal
	// ConversionRate is the static THB->USD rate used only when summarizing
	// THB expenses that carry no USD subtotal.
	ConversionRate      decimal.Decimal
	TolerancePercent    decimal.Decimal
	ReimbursementPrefix string

	RemoveDuplicates    bool
	DuplicateWindowDays int

	Sections []Section

	Log LogConfig
	GCS GCSConfig
}

// Section is the externally supplied description of one block of the sheet.
type Section struct {
	Name   string
	Layout string
	// Tag is seeded on every record of a single_property section.
	Tag string

	StartLine int
	// EndLine is exclusive; zero leaves the section open-ended.
	EndLine     int
	StopMarkers []string

	// Columns overrides entries of the layout's field mapping by name.
	Columns map[string]int
	Exclude []ExcludeRule
}

// ExcludeRule drops rows whose description and merchant both match. An empty
// field matches anything.
type ExcludeRule struct {
	Description string `yaml:"description"`
	Merchant    string `yaml:"merchant"`
}

// LogConfig selects the zerolog level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GCSConfig configures the storage client used for gs:// locations.
type GCSConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	Endpoint        string `yaml:"endpoint"`
	Anonymous       bool   `yaml:"anonymous"`
}

// fileConfig mirrors Config as written in YAML. Money values are strings so
// they go through decimal parsing with a useful error.
type fileConfig struct {
	Source              string        `yaml:"source"`
	Output              string        `yaml:"output"`
	ExpectedTotalUSD    string        `yaml:"expected_total_usd"`
	ConversionRate      string        `yaml:"thb_usd_rate"`
	TolerancePercent    string        `yaml:"tolerance_percent"`
	ReimbursementPrefix string        `yaml:"reimbursement_prefix"`
	RemoveDuplicates    *bool         `yaml:"remove_duplicates"`
	DuplicateWindowDays *int          `yaml:"duplicate_window_days"`
	Sections            []fileSection `yaml:"sections"`
	Log                 *LogConfig    `yaml:"log"`
	GCS                 *GCSConfig    `yaml:"gcs"`
}

type fileSection struct {
	Name        string         `yaml:"name"`
	Layout      string         `yaml:"layout"`
	Tag         string         `yaml:"tag"`
	StartLine   int            `yaml:"start_line"`
	EndLine     int            `yaml:"end_line"`
	StopMarkers []string       `yaml:"stop_markers"`
	Columns     map[string]int `yaml:"columns"`
	Exclude     []ExcludeRule  `yaml:"exclude"`
}

// Default returns the configuration of the September 2025 revision of the
// sheet export (fullImport_20251017.csv).
func Default() Config {
	return Config{
		Source:              "fullImport_20251017.csv",
		Output:              "september-2025-parsed.json",
		ExpectedTotalUSD:    decimal.RequireFromString("6804.11"),
		ConversionRate:      decimal.RequireFromString("0.031"),
		TolerancePercent:    decimal.RequireFromString("1.5"),
		ReimbursementPrefix: "Reimbursement:",
		DuplicateWindowDays: 3,
		Sections: []Section{
			{
				Name:      "Expense Tracker",
				Layout:    LayoutWide,
				StartLine: 392,
				EndLine:   609,
				Exclude: []ExcludeRule{
					// transfer to savings, not spending
					{Description: "Florida House", Merchant: "Me"},
				},
			},
			{
				Name:        "Florida House",
				Layout:      LayoutSingleProperty,
				Tag:         "Florida House",
				StartLine:   632,
				StopMarkers: []string{"GRAND TOTAL", "August 2025"},
			},
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads a YAML configuration file and applies it on top of Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("Load: reading %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("Load: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration on top of Default and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var raw fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("Parse: decoding yaml: %w", err)
	}

	if raw.Source != "" {
		cfg.Source = raw.Source
	}
	if raw.Output != "" {
		cfg.Output = raw.Output
	}
	if raw.ReimbursementPrefix != "" {
		cfg.ReimbursementPrefix = raw.ReimbursementPrefix
	}

	var err error
	if cfg.ExpectedTotalUSD, err = decimalOr(raw.ExpectedTotalUSD, cfg.ExpectedTotalUSD, "expected_total_usd"); err != nil {
		return Config{}, err
	}
	if cfg.ConversionRate, err = decimalOr(raw.ConversionRate, cfg.ConversionRate, "thb_usd_rate"); err != nil {
		return Config{}, err
	}
	if cfg.TolerancePercent, err = decimalOr(raw.TolerancePercent, cfg.TolerancePercent, "tolerance_percent"); err != nil {
		return Config{}, err
	}

	if raw.RemoveDuplicates != nil {
		cfg.RemoveDuplicates = *raw.RemoveDuplicates
	}
	if raw.DuplicateWindowDays != nil {
		cfg.DuplicateWindowDays = *raw.DuplicateWindowDays
	}

	if len(raw.Sections) > 0 {
		cfg.Sections = make([]Section, 0, len(raw.Sections))
		for _, s := range raw.Sections {
			cfg.Sections = append(cfg.Sections, Section{
				Name:        s.Name,
				Layout:      s.Layout,
				Tag:         s.Tag,
				StartLine:   s.StartLine,
				EndLine:     s.EndLine,
				StopMarkers: s.StopMarkers,
				Columns:     s.Columns,
				Exclude:     s.Exclude,
			})
		}
	}

	if raw.Log != nil {
		if raw.Log.Level != "" {
			cfg.Log.Level = raw.Log.Level
		}
		if raw.Log.Format != "" {
			cfg.Log.Format = raw.Log.Format
		}
	}
	if raw.GCS != nil {
		cfg.GCS = *raw.GCS
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the import relies on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("Validate: source is required")
	}
	if c.ConversionRate.IsNegative() {
		return fmt.Errorf("Validate: thb_usd_rate must not be negative, got %s", c.ConversionRate)
	}
	if c.TolerancePercent.IsNegative() {
		return fmt.Errorf("Validate: tolerance_percent must not be negative, got %s", c.TolerancePercent)
	}
	if c.DuplicateWindowDays < 0 {
		return fmt.Errorf("Validate: duplicate_window_days must not be negative, got %d", c.DuplicateWindowDays)
	}
	if len(c.Sections) == 0 {
		return fmt.Errorf("Validate: at least one section is required")
	}

	seen := make(map[string]bool, len(c.Sections))
	for i, s := range c.Sections {
		if err := s.validate(); err != nil {
			return fmt.Errorf("Validate: section %d: %w", i+1, err)
		}
		if seen[s.Name] {
			return fmt.Errorf("Validate: duplicate section name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

func (s Section) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	switch s.Layout {
	case LayoutWide:
	case LayoutSingleProperty:
		if strings.TrimSpace(s.Tag) == "" {
			return fmt.Errorf("%q: tag is required for layout %s", s.Name, s.Layout)
		}
		// Both are derived from row flags and would break record tagging.
		if s.Tag == domain.TagReimbursement || s.Tag == domain.TagBusinessExpense {
			return fmt.Errorf("%q: tag %q is reserved", s.Name, s.Tag)
		}
	default:
		return fmt.Errorf("%q: unknown layout %q", s.Name, s.Layout)
	}
	if s.StartLine < 1 {
		return fmt.Errorf("%q: start_line must be >= 1, got %d", s.Name, s.StartLine)
	}
	if s.EndLine != 0 && s.EndLine <= s.StartLine {
		return fmt.Errorf("%q: end_line %d must be after start_line %d", s.Name, s.EndLine, s.StartLine)
	}
	for _, rule := range s.Exclude {
		if rule.Description == "" && rule.Merchant == "" {
			return fmt.Errorf("%q: exclude rule needs a description or a merchant", s.Name)
		}
	}
	return nil
}

func decimalOr(text string, fallback decimal.Decimal, key string) (decimal.Decimal, error) {
	if strings.TrimSpace(text) == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("Parse: %s: %w", key, err)
	}
	return d, nil
}
