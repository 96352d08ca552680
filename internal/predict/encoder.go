package predict

import (
	"log/slog"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

// UnknownClass is the reserved vocabulary entry used for unseen values.
const UnknownClass = "unknown"

// Unencodable is returned for values that match neither the vocabulary nor
// an "unknown" entry.
const Unencodable = -1

// EncodingTable maps normalized category values to their trained codes.
type EncodingTable map[string]int

// Encoder applies the label encodings learned at training time.
type Encoder struct {
	tables  map[string]EncodingTable
	metrics *Metrics
}

// NewEncoder builds per-column tables from ordered class lists; a class's
// code is its position in the list.
func NewEncoder(classes map[string][]string, metrics *Metrics) *Encoder {
	tables := make(map[string]EncodingTable, len(classes))
	for column, values := range classes {
		table := make(EncodingTable, len(values))
		for code, value := range values {
			table[Normalize(value)] = code
		}
		tables[column] = table
	}
	return &Encoder{tables: tables, metrics: metrics}
}

// Normalize lowercases and trims a categorical value.
func Normalize(value string) string {
	return model.NormalizeCategorical(value)
}

// HasColumn reports whether column has a trained vocabulary.
func (e *Encoder) HasColumn(column string) bool {
	_, ok := e.tables[column]
	return ok
}

// Lookup returns the code for value and whether it was an exact vocabulary hit.
func (e *Encoder) Lookup(column, value string) (int, bool) {
	table, ok := e.tables[column]
	if !ok {
		return Unencodable, false
	}
	if code, ok := table[Normalize(value)]; ok {
		return code, true
	}
	if code, ok := table[UnknownClass]; ok {
		return code, false
	}
	return Unencodable, false
}

// Encode returns the trained code for value. Unseen values fall back to the
// "unknown" entry, or to Unencodable when the column has none; they never
// produce an error.
func (e *Encoder) Encode(column, value string) int {
	code, known := e.Lookup(column, value)
	if !known && e.HasColumn(column) {
		slog.Warn("Category value not in training vocabulary",
			"column", column,
			"value", Normalize(value),
			"fallback", code)
		e.metrics.unseenCategory(column)
	}
	return code
}
