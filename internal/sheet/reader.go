package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row is one record of the exported sheet together with its 1-based record
// number. Empty lines count as records and a quoted cell spanning several
// lines counts once, so the numbers match what section configuration refers
// to.
type Row struct {
	Line  int
	Cells []string
}

// Cell returns the trimmed cell at index i, or "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

// Len returns the number of cells in the row.
func (r Row) Len() int {
	return len(r.Cells)
}

// ReadRows tokenizes the whole CSV export. Rows may have any number of
// fields since sections of the sheet use different layouts.
func ReadRows(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ReadRows: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		rows     []Row
		number   int
		lines    lineCounter
		lastLine int // physical line the previous record ended on
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadRows: reading record after row %d: %w", number, err)
		}

		// encoding/csv drops empty lines; each one is still a record.
		start, _ := reader.FieldPos(0)
		number += 1 + max(0, start-lastLine-1)
		lastLine = lines.endLine(data, reader.InputOffset())

		if len(rows) == 0 && len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
		}
		rows = append(rows, Row{Line: number, Cells: record})
	}

	return rows, nil
}

// lineCounter counts newlines incrementally as the reader advances.
type lineCounter struct {
	offset   int64
	newlines int
}

// endLine returns the physical line holding the last byte before offset.
func (c *lineCounter) endLine(data []byte, offset int64) int {
	c.newlines += bytes.Count(data[c.offset:offset], []byte{'\n'})
	c.offset = offset
	if offset > 0 && data[offset-1] == '\n' {
		return c.newlines
	}
	return c.newlines + 1
}
