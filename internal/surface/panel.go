package surface

import (
	"cmp"
	"slices"
)

// Row is one line of a rendered panel.
type Row struct {
	Name  string `json:"name"`
	Score int32  `json:"score"`
}

// Panel is the rendered view of a display slot.
//
// Panel is optimized for JSON serialization (used by the REST API and SSE).
// Rows are sorted the way clients draw them: highest score first, ties by
// name.
type Panel struct {
	// Slot is the display slot this panel renders.
	Slot string `json:"slot"`

	// Objective is the id of the objective bound to the slot, or "" if none.
	Objective string `json:"objective"`

	// Title is the objective's display name.
	Title string `json:"title"`

	// Rows are the objective's score rows.
	Rows []Row `json:"rows"`

	// Visible is false when no objective is bound or every row is 0;
	// clients do not draw the sidebar in either case.
	Visible bool `json:"visible"`
}

// sortRows orders rows by score descending, then name ascending.
func sortRows(rows []Row) {
	slices.SortFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// anyNonZero reports whether at least one row has a nonzero score.
func anyNonZero(rows []Row) bool {
	for _, r := range rows {
		if r.Score != 0 {
			return true
		}
	}
	return false
}
