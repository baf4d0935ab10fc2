// Package schedule computes display wake times and admits calendar events.
package schedule

import (
	"time"

	"github.com/inkfleet/inkfleet/internal/model"
)

// maxGap is the largest pause between a running event's follow-up window and
// the next event's lead window that is still collapsed into a single stretch.
// Waking a display for a shorter gap would show the default image for under
// two minutes and burn a full refresh cycle twice.
const maxGap = 2 * time.Minute

// WakeResult is the outcome of a wake computation: the next instant the
// display must check in and the image it must be showing from now on.
type WakeResult struct {
	WakeTime time.Time
	Filename string
}

// ComputeNextWake resolves the single next wake instant for a display and
// the filename it should show when it wakes. events must be the stored
// events assigned to this display. When neither an event nor an enabled
// duty-cycle window applies, the wake defaults to now + 1 year; the
// storage layer cannot hold an unbounded sentinel.
func ComputeNextWake(display *model.Display, events []model.Event, cfg *model.Config, now time.Time) WakeResult {
	eventWake, filename, hasEventWake := nextEventWake(cfg, events, display.MacAddress, now)

	wake := eventWake
	ok := hasEventWake
	if periodic, found := nextPeriodicWake(cfg, now); found {
		if !ok || periodic.Before(wake) {
			wake = periodic
		}
		ok = true
	}
	if !ok {
		wake = now.AddDate(1, 0, 0)
	}

	if filename == "" {
		filename = display.DefaultFilename
	}
	return WakeResult{WakeTime: wake, Filename: filename}
}

// leadStart is the instant an event's image must already be showing.
func leadStart(cfg *model.Config, e model.Event) time.Time {
	return e.Start.Add(-time.Duration(cfg.LeadTime) * time.Minute)
}

// followEnd is the instant an event's image may be released again.
func followEnd(cfg *model.Config, e model.Event) time.Time {
	return e.End.Add(time.Duration(cfg.FollowUpTime) * time.Minute)
}

// nextEventWake walks the display's events and classifies them against now:
// a true current event (now inside [start,end)), a lead/follow current one
// (now inside the buffered window only), and the two nearest future events.
// Two future events are tracked because when the "current" slot is taken by
// a lead/follow match, the nearest future event is that same event, and the
// fallback "next" must be the one after it.
func nextEventWake(cfg *model.Config, events []model.Event, mac string, now time.Time) (time.Time, string, bool) {
	var (
		current      *model.Event
		currentImage string

		buffered      *model.Event
		bufferedImage string

		next     *model.Event
		nextNext *model.Event
	)

	for i := range events {
		e := &events[i]
		if e.DisplayMac != mac {
			continue
		}

		if now.After(leadStart(cfg, *e)) && now.Before(followEnd(cfg, *e)) {
			buffered = e
			bufferedImage = e.Image
		}

		switch {
		case now.After(e.Start) && now.Before(e.End):
			current = e
			currentImage = e.Image
		case now.Before(e.Start):
			switch {
			case next == nil || e.Start.Before(next.Start):
				nextNext = next
				next = e
			case nextNext == nil || e.Start.Before(nextNext.Start):
				nextNext = e
			}
		}
	}

	if current == nil && buffered != nil {
		// The buffer windows treat the event as showing; the nearest future
		// event is this same one, so "next" moves one further out.
		current = buffered
		currentImage = bufferedImage
		next = nextNext
	}

	switch {
	case current != nil:
		wake := followEnd(cfg, *current)
		if next != nil {
			nextLead := leadStart(cfg, *next)
			if nextLead.Sub(wake) <= maxGap {
				// Collapse the sub-2-minute gap: jump straight to the next
				// event's lead start, unless buffer overlap pulled that
				// before the current event even ends.
				if nextLead.Before(current.End) {
					wake = current.End
				} else {
					wake = nextLead
				}
			}
		}
		return wake, currentImage, true
	case next != nil:
		return leadStart(cfg, *next), "", true
	default:
		return time.Time{}, "", false
	}
}

// nextPeriodicWake scans forward from now's weekday through the per-weekday
// duty-cycle windows. Inside today's enabled window the next interval
// boundary strictly after now wins; otherwise the first enabled future
// day's window start does. The scan covers a full week plus today's weekday
// again, so a window earlier today still yields next week's occurrence.
func nextPeriodicWake(cfg *model.Config, now time.Time) (time.Time, bool) {
	if cfg.WakeIntervalDay <= 0 {
		return time.Time{}, false
	}
	interval := time.Duration(cfg.WakeIntervalDay) * time.Minute

	for days := 0; days <= 7; days++ {
		date := now.AddDate(0, 0, days)
		window, ok := cfg.WeekdayWindows[date.Weekday().String()]
		if !ok || !window.Enabled {
			continue
		}

		start := window.Start.At(date)
		end := window.End.At(date)

		if days == 0 {
			if now.After(start) && now.Before(end) {
				count := now.Sub(start)/interval + 1
				boundary := start.Add(time.Duration(count) * interval)
				if !boundary.After(end) {
					return boundary, true
				}
			}
			continue
		}
		return start, true
	}
	return time.Time{}, false
}
