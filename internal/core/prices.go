// Package core provides the chore domain: events, the price table and
// the aggregation that backs the summary view.
//
// This file contains the price table and the helpers that turn sheet
// cells back into integer amounts.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// PriceItem is one entry of the price table.
type PriceItem struct {
	Task   string `yaml:"task" json:"task"`
	Amount int64  `yaml:"amount" json:"amount"`
}

// PriceTable maps a task label to the amount paid for it. It is immutable
// once built and keeps declaration order for display.
type PriceTable struct {
	items []PriceItem
	index map[string]int64
}

// DefaultPriceTable is the menu used when no price file is configured.
func DefaultPriceTable() PriceTable {
	pt, err := NewPriceTable([]PriceItem{
		{Task: "Dishes", Amount: 50},
		{Task: "Bath cleaning", Amount: 100},
		{Task: "Taking out trash", Amount: 30},
		{Task: "Room cleaning", Amount: 150},
		{Task: "Folding laundry", Amount: 80},
	})
	if err != nil {
		panic(fmt.Sprintf("default price table: %v", err))
	}
	return pt
}

// NewPriceTable validates items and builds a table. Labels are trimmed,
// must be unique and carry a positive amount.
func NewPriceTable(items []PriceItem) (PriceTable, error) {
	if len(items) == 0 {
		return PriceTable{}, ErrEmptyPriceList
	}
	pt := PriceTable{
		items: make([]PriceItem, 0, len(items)),
		index: make(map[string]int64, len(items)),
	}
	for i, it := range items {
		task := strings.TrimSpace(it.Task)
		if task == "" {
			return PriceTable{}, fmt.Errorf("item %d: %w", i, ErrEmptyTask)
		}
		if it.Amount <= 0 {
			return PriceTable{}, fmt.Errorf("item %d (%s): %w", i, task, ErrInvalidAmount)
		}
		if _, dup := pt.index[task]; dup {
			return PriceTable{}, fmt.Errorf("%w: %s", ErrDuplicateTask, task)
		}
		pt.index[task] = it.Amount
		pt.items = append(pt.items, PriceItem{Task: task, Amount: it.Amount})
	}
	return pt, nil
}

// Price returns the amount for task.
func (p PriceTable) Price(task string) (int64, bool) {
	amt, ok := p.index[task]
	return amt, ok
}

// Tasks returns task labels in declaration order.
func (p PriceTable) Tasks() []string {
	out := make([]string, len(p.items))
	for i, it := range p.items {
		out[i] = it.Task
	}
	return out
}

// Items returns a copy of the entries in declaration order.
func (p PriceTable) Items() []PriceItem {
	return append([]PriceItem(nil), p.items...)
}

func (p PriceTable) Len() int { return len(p.items) }

// ParseAmount converts a stored amount cell to an integer.
//
// Cells come back either as numbers ("50", "50.0") or as formatted text
// with thousands separators ("1,200"). Fractional amounts are rejected.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("%w: fractional amount %q", ErrInvalidAmount, s)
	}
	return int64(f), nil
}
