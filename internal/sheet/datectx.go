package sheet

// DateContext carries the label of the most recent date-marker row through
// a section scan. It is a value: Observe returns the next state and leaves
// the receiver untouched, so a scan is a plain fold over rows.
type DateContext struct {
	label string
	known bool
}

// Observe returns the context that applies after row has been seen.
func (c DateContext) Observe(kind RowKind, row Row, dateColumn int) DateContext {
	if kind != RowDateMarker {
		return c
	}
	return DateContext{label: row.Cell(dateColumn), known: true}
}

// Label returns the current date label and whether any marker was seen.
func (c DateContext) Label() (string, bool) {
	return c.label, c.known
}
