// Package maintenance expires stale display content on a fixed cadence and
// enforces long-term retention of old events and history.
package maintenance

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/model"
)

// historyLimit bounds the sub-item archive; the oldest entries beyond it
// are evicted after every archive write.
const historyLimit = 200

// Store is the persistence surface of the sweeper.
type Store interface {
	FindExpiredDisplayContent(now time.Time) ([]model.DisplayContent, error)
	FindContentWithExpiredSubItems(now time.Time) ([]model.DisplayContent, error)
	DeleteDisplayContent(id int) error
	DeleteSubItem(id int) error
	ResetSubItem(id int) error

	ArchiveSubItem(typeKey, mac string, s model.SubItem) error
	TrimSubItemHistory(keep int) (int, error)

	GetConfig() (*model.Config, error)
	DeleteEventsEndedBefore(cutoff time.Time) (int, error)
}

// Refresher pushes a display back to its default or remaining content
// after the sweep changed what it should show.
type Refresher interface {
	ApplyDefault(ctx context.Context, mac, typeKey string) error
}

// Sweeper runs the expiry passes. Each tick is independent; a failing pass
// is logged and retried on the next tick.
type Sweeper struct {
	store     Store
	refresher Refresher
	interval  time.Duration
	now       func() time.Time
}

func New(store Store, refresher Refresher) *Sweeper {
	return &Sweeper{
		store:     store,
		refresher: refresher,
		interval:  6 * time.Second,
		now:       time.Now,
	}
}

// Run sweeps on the configured cadence until the context ends.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Info().Dur("interval", s.interval).Msg("maintenance sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("maintenance sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// RunRetention applies the event retention policy once per day.
func (s *Sweeper) RunRetention(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	s.retentionPass()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.retentionPass()
		}
	}
}

// Sweep executes one expiry cycle: whole content rows whose validity
// window has passed, then individually expired sub-items. Every affected
// (display, type) pair gets its default content re-applied and
// redelivered.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.now()
	affected := map[string]struct{}{}

	s.expireContentRows(now, affected)
	s.expireSubItems(now, affected)

	for key := range affected {
		mac, typeKey, _ := strings.Cut(key, "|")
		if err := s.refresher.ApplyDefault(ctx, mac, typeKey); err != nil {
			log.Error().Err(err).Str("mac", mac).Str("type", typeKey).
				Msg("failed to refresh display after expiry")
		}
	}
}

func (s *Sweeper) expireContentRows(now time.Time, affected map[string]struct{}) {
	expired, err := s.store.FindExpiredDisplayContent(now)
	if err != nil {
		log.Error().Err(err).Msg("failed to query expired content")
		return
	}
	for _, c := range expired {
		if archivesOnExpiry(c.TypeKey) {
			s.archiveAll(c)
		}
		if err := s.store.DeleteDisplayContent(c.ID); err != nil {
			log.Error().Err(err).Int("content_id", c.ID).Msg("failed to delete expired content")
			continue
		}
		log.Info().Str("mac", c.DisplayMac).Str("type", c.TypeKey).
			Time("event_end", deref(c.EventEnd)).Msg("removed expired display content")
		affected[c.DisplayMac+"|"+c.TypeKey] = struct{}{}
	}
}

func (s *Sweeper) expireSubItems(now time.Time, affected map[string]struct{}) {
	rows, err := s.store.FindContentWithExpiredSubItems(now)
	if err != nil {
		log.Error().Err(err).Msg("failed to query content with expired sub-items")
		return
	}

	for _, c := range rows {
		modified := false
		remaining := len(c.SubItems)

		for _, item := range c.SubItems {
			if !item.Expired(now) {
				continue
			}

			if c.TypeKey == model.TemplateDoorSign {
				// A door sign keeps its person slots; only the transient
				// state is cleared.
				if err := s.store.ResetSubItem(item.ID); err != nil {
					log.Error().Err(err).Int("item_id", item.ID).Msg("failed to reset sub-item")
					continue
				}
				log.Info().Str("mac", c.DisplayMac).Int("item_id", item.ID).
					Msg("reset expired door-sign slot")
				modified = true
				continue
			}

			if archivesOnExpiry(c.TypeKey) {
				if err := s.store.ArchiveSubItem(c.TypeKey, c.DisplayMac, item); err != nil {
					log.Error().Err(err).Int("item_id", item.ID).Msg("failed to archive sub-item")
				} else {
					s.trimHistory()
				}
			}
			if err := s.store.DeleteSubItem(item.ID); err != nil {
				log.Error().Err(err).Int("item_id", item.ID).Msg("failed to delete sub-item")
				continue
			}
			log.Info().Str("mac", c.DisplayMac).Str("type", c.TypeKey).Int("item_id", item.ID).
				Msg("removed expired sub-item")
			remaining--
			modified = true
		}

		if !modified {
			continue
		}
		if remaining == 0 && c.EventEnd == nil {
			if err := s.store.DeleteDisplayContent(c.ID); err != nil {
				log.Error().Err(err).Int("content_id", c.ID).Msg("failed to delete emptied content")
			}
		}
		affected[c.DisplayMac+"|"+c.TypeKey] = struct{}{}
	}
}

func (s *Sweeper) archiveAll(c model.DisplayContent) {
	for _, item := range c.SubItems {
		if err := s.store.ArchiveSubItem(c.TypeKey, c.DisplayMac, item); err != nil {
			log.Error().Err(err).Int("item_id", item.ID).Msg("failed to archive sub-item")
		}
	}
	s.trimHistory()
}

func (s *Sweeper) trimHistory() {
	trimmed, err := s.store.TrimSubItemHistory(historyLimit)
	if err != nil {
		log.Error().Err(err).Msg("failed to trim sub-item history")
		return
	}
	if trimmed > 0 {
		log.Info().Int("trimmed", trimmed).Int("limit", historyLimit).
			Msg("trimmed sub-item history")
	}
}

func (s *Sweeper) retentionPass() {
	cfg, err := s.store.GetConfig()
	if err != nil {
		log.Error().Err(err).Msg("retention pass could not load config")
		return
	}
	if cfg.DeleteAfterDays <= 0 {
		return
	}
	cutoff := s.now().AddDate(0, 0, -cfg.DeleteAfterDays)
	removed, err := s.store.DeleteEventsEndedBefore(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("retention pass failed")
		return
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Time("cutoff", cutoff).
			Msg("deleted events past retention window")
	}
}

// archivesOnExpiry tells whether a type's expired entries are worth
// keeping in history. Door signs reset in place; notice boards carry no
// dated entries.
func archivesOnExpiry(typeKey string) bool {
	return typeKey == model.TemplateEventBoard || typeKey == model.TemplateRoomBooking
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
