// Package errtrack maintains the coded error markers attached to displays.
// Codes are stable product-facing identifiers; flagging an already-flagged
// code and resolving an absent one are both no-ops.
package errtrack

import (
	"fmt"

	"github.com/inkfleet/inkfleet/internal/model"
)

var messages = map[int]string{
	model.ErrCodeContentNotConfirmed: "display has not confirmed the delivered content",
	model.ErrCodeWakeMissed:          "display cannot be guaranteed to wake before the event starts",
	model.ErrCodeBatteryLow:          "battery level is critically low",
}

// Message returns the catalog text for a code, or a generic fallback for
// codes outside the catalog.
func Message(code int) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return fmt.Sprintf("error code %d", code)
}

// Store is the persistence surface the tracker needs.
type Store interface {
	AddDisplayError(displayID, code int, message string) error
	ClearDisplayError(displayID, code int) error
}

// Tracker flags and resolves coded errors on displays.
type Tracker struct {
	store Store
}

func New(store Store) *Tracker {
	return &Tracker{store: store}
}

// Flag attaches the code to the display. Idempotent.
func (t *Tracker) Flag(displayID, code int) error {
	return t.store.AddDisplayError(displayID, code, Message(code))
}

// Resolve removes the code from the display. Idempotent.
func (t *Tracker) Resolve(displayID, code int) error {
	return t.store.ClearDisplayError(displayID, code)
}

// ResolveAll removes several codes, stopping at the first storage failure.
func (t *Tracker) ResolveAll(displayID int, codes ...int) error {
	for _, code := range codes {
		if err := t.store.ClearDisplayError(displayID, code); err != nil {
			return err
		}
	}
	return nil
}
