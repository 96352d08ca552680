package ticketcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

// ErrMissingDateColumns is returned when a request file has no open_date or
// due_date column.
var ErrMissingDateColumns = errors.New("request file needs open_date and due_date columns")

// RequestRow is one prediction request read from a batch file.
type RequestRow struct {
	ID      string
	Request model.PredictionRequest
	Line    int
}

// requestKey folds "Open Date", "open-date" and "open_date" together.
func requestKey(header string) string {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(key)
}

// ReadRequests parses a batch prediction file. open_date and due_date are
// required; priority, category, item and sub_category are optional and an
// empty cell counts as absent. An id or number column, when present, labels
// each row; otherwise rows are labelled by their line number.
func ReadRequests(r io.Reader) ([]RequestRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingDateColumns
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[requestKey(name)] = i
	}
	if _, ok := index["open_date"]; !ok {
		return nil, ErrMissingDateColumns
	}
	if _, ok := index["due_date"]; !ok {
		return nil, ErrMissingDateColumns
	}

	get := func(fields []string, key string) (string, bool) {
		i, ok := index[key]
		if !ok || i >= len(fields) {
			return "", false
		}
		v := strings.TrimSpace(fields[i])
		return v, v != ""
	}
	optional := func(fields []string, key string) *string {
		if v, ok := get(fields, key); ok {
			return &v
		}
		return nil
	}

	var rows []RequestRow
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		row := RequestRow{Line: line, ID: strconv.Itoa(line)}
		if id, ok := get(fields, "id"); ok {
			row.ID = id
		} else if number, ok := get(fields, "number"); ok {
			row.ID = number
		}

		row.Request.OpenDate, _ = get(fields, "open_date")
		row.Request.DueDate, _ = get(fields, "due_date")
		row.Request.Priority = optional(fields, "priority")
		row.Request.Category = optional(fields, "category")
		row.Request.Item = optional(fields, "item")
		row.Request.SubCategory = optional(fields, "sub_category")

		rows = append(rows, row)
	}

	return rows, nil
}
