package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// OccurrenceCap bounds recurrence expansion so an unbounded rule (say
// FREQ=SECONDLY without COUNT or UNTIL) cannot generate forever.
const OccurrenceCap = 100

// ExpandRule expands an RFC 5545 recurrence rule anchored at firstStart
// into at most cap occurrence start instants, firstStart's occurrence
// included. cap <= 0 means OccurrenceCap.
func ExpandRule(ruleString string, firstStart time.Time, cap int) ([]time.Time, error) {
	if cap <= 0 {
		cap = OccurrenceCap
	}

	rr, err := rrule.StrToRRule(ruleString)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence rule %q: %w", ruleString, err)
	}
	rr.DTStart(firstStart)

	var starts []time.Time
	next := rr.Iterator()
	for len(starts) < cap {
		occ, ok := next()
		if !ok {
			break
		}
		starts = append(starts, occ)
	}
	return starts, nil
}
