package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inkfleet/inkfleet/internal/model"
)

const conflictTimeFormat = "02.01.2006 15:04"

// Conflict lists the stored events on one display that collide with a
// submission.
type Conflict struct {
	DisplayMac string        `json:"display_mac"`
	Events     []model.Event `json:"events"`
}

// ConflictError aborts an admission; no event of the submission is stored.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return "scheduling conflict: " + FormatConflicts(e.Conflicts)
}

// FormatConflicts renders conflicts grouped by display, each colliding
// event with its title and time range.
func FormatConflicts(conflicts []Conflict) string {
	sorted := make([]Conflict, len(conflicts))
	copy(sorted, conflicts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DisplayMac < sorted[j].DisplayMac
	})

	var b strings.Builder
	for i, c := range sorted {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(c.DisplayMac)
		b.WriteString(": ")
		for j, e := range c.Events {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q %s - %s", e.Title,
				e.Start.Format(conflictTimeFormat), e.End.Format(conflictTimeFormat))
		}
	}
	return b.String()
}
