package core

import "sort"

// PersonTotal is the amount earned by one person across all rows.
type PersonTotal struct {
	Person string
	Total  int64
}

// Summary is the aggregated view of the store.
//
// Empty is set only when the store had no rows at all; callers render an
// informational state instead of a table in that case.
type Summary struct {
	Empty  bool
	Totals []PersonTotal
	Recent []ChoreEvent
}

// GrandTotal sums every person's total.
func (s Summary) GrandTotal() int64 {
	var sum int64
	for _, t := range s.Totals {
		sum += t.Total
	}
	return sum
}

// Summarize groups events by person and takes the last recentLimit events.
// Both views come from the same slice. Totals are ordered by person name.
func Summarize(events []ChoreEvent, recentLimit int) Summary {
	if len(events) == 0 {
		return Summary{Empty: true}
	}
	if recentLimit < 0 {
		recentLimit = 0
	}

	byPerson := make(map[string]int64)
	for _, e := range events {
		byPerson[e.Person] += e.Amount
	}
	totals := make([]PersonTotal, 0, len(byPerson))
	for person, total := range byPerson {
		totals = append(totals, PersonTotal{Person: person, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Person < totals[j].Person })

	start := len(events) - recentLimit
	if start < 0 {
		start = 0
	}
	recent := make([]ChoreEvent, len(events)-start)
	copy(recent, events[start:])

	return Summary{Totals: totals, Recent: recent}
}
