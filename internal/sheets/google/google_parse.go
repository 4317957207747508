package google

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"paghetta/internal/core"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrMalformedRow  = errors.New("malformed row")
)

// columnAliases lists accepted header names per field, lower case.
var columnAliases = []struct {
	field   string
	aliases []string
}{
	{"date", []string{"date", "timestamp", "日付"}},
	{"task", []string{"task", "chore", "内容"}},
	{"amount", []string{"amount", "price", "金額"}},
	{"person", []string{"person", "name", "名前"}},
}

type columns struct {
	date, task, amount, person int
}

// timestampLayouts are tried in order; the first is what Append writes.
var timestampLayouts = []string{
	core.TimestampLayout,
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006-01-02",
}

// mapHeader locates each field in the header row.
func mapHeader(header []string) (columns, error) {
	found := map[string]int{}
	for _, ca := range columnAliases {
		idx := -1
		for _, alias := range ca.aliases {
			if idx = indexOf(header, alias); idx != -1 {
				break
			}
		}
		found[ca.field] = idx
	}
	var missing []string
	for _, ca := range columnAliases {
		if found[ca.field] == -1 {
			missing = append(missing, ca.field)
		}
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s; got headers=%v", ErrMissingColumn, strings.Join(missing, ","), header)
	}
	return columns{
		date:   found["date"],
		task:   found["task"],
		amount: found["amount"],
		person: found["person"],
	}, nil
}

// parseRecords turns a values matrix (header first) into events in sheet
// order. Blank rows are skipped; any other bad row fails the whole read.
func parseRecords(values [][]any) ([]core.ChoreEvent, error) {
	if len(values) == 0 {
		return nil, nil
	}
	cols, err := mapHeader(toStrings(values[0]))
	if err != nil {
		return nil, err
	}

	out := make([]core.ChoreEvent, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		sheetRow := i + 1

		ts, err := parseTimestampCell(safeGet(row, cols.date))
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrMalformedRow, sheetRow, err)
		}
		amt, err := core.ParseAmount(safeGet(row, cols.amount))
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrMalformedRow, sheetRow, err)
		}
		e := core.ChoreEvent{
			Timestamp: ts,
			Task:      safeGet(row, cols.task),
			Amount:    amt,
			Person:    safeGet(row, cols.person),
		}
		if strings.TrimSpace(e.Person) == "" || strings.TrimSpace(e.Task) == "" {
			return nil, fmt.Errorf("%w %d: empty task or person", ErrMalformedRow, sheetRow)
		}
		out = append(out, e)
	}
	return out, nil
}

func parseTimestampCell(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
