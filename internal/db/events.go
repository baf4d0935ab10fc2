package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/model"
)

const eventColumns = `id, title, all_day, start_ts, end_ts, display_mac, image, group_id, created_at`

func GetEventByID(id int) (*model.Event, error) {
	var e model.Event
	err := DB.Get(&e, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Int("event_id", id).Msg("failed to get event")
		return nil, err
	}
	return &e, nil
}

func ListEvents() ([]model.Event, error) {
	var events []model.Event
	err := DB.Select(&events, `SELECT `+eventColumns+` FROM events ORDER BY start_ts`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list events")
	}
	return events, err
}

func FindEventsByDisplay(mac string) ([]model.Event, error) {
	var events []model.Event
	err := DB.Select(&events, `
		SELECT `+eventColumns+`
		  FROM events
		 WHERE display_mac = $1
		 ORDER BY start_ts`, mac)
	if err != nil {
		log.Error().Err(err).Str("mac", mac).Msg("failed to find events for display")
	}
	return events, err
}

// FindOverlappingEvents returns stored events on the display whose [start,end)
// interval intersects the given range, excluding the given group (zero-value
// excludes nothing). Used by admission-time conflict checks.
func FindOverlappingEvents(mac string, start, end time.Time, excludeGroup string) ([]model.Event, error) {
	var events []model.Event
	err := DB.Select(&events, `
		SELECT `+eventColumns+`
		  FROM events
		 WHERE display_mac = $1
		   AND start_ts < $3
		   AND end_ts > $2
		   AND ($4 = '' OR group_id <> $4)
		 ORDER BY start_ts`, mac, start, end, excludeGroup)
	if err != nil {
		log.Error().Err(err).Str("mac", mac).Msg("failed to query overlapping events")
	}
	return events, err
}

func FindEventsByGroup(groupID string) ([]model.Event, error) {
	var events []model.Event
	err := DB.Select(&events, `
		SELECT `+eventColumns+` FROM events WHERE group_id = $1 ORDER BY start_ts`, groupID)
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("failed to find events by group")
	}
	return events, err
}

// SaveEvents inserts a batch of events inside one transaction so a
// multi-display submission is all-or-nothing.
func SaveEvents(events []model.Event) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("begin event insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range events {
		if err := insertEvent(tx, &events[i]); err != nil {
			log.Error().Err(err).Str("title", events[i].Title).Msg("failed to insert event")
			return err
		}
	}
	return tx.Commit()
}

func insertEvent(tx *sqlx.Tx, e *model.Event) error {
	const q = `
	INSERT INTO events (title, all_day, start_ts, end_ts, display_mac, image, group_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	RETURNING id, created_at`
	return tx.QueryRowx(q, e.Title, e.AllDay, e.Start, e.End, e.DisplayMac, e.Image, e.GroupID).
		Scan(&e.ID, &e.CreatedAt)
}

func UpdateEvent(e *model.Event) error {
	const q = `
	UPDATE events
	   SET title = :title, all_day = :all_day, start_ts = :start_ts,
	       end_ts = :end_ts, image = :image
	 WHERE id = :id`
	if _, err := DB.NamedExec(q, e); err != nil {
		log.Error().Err(err).Int("event_id", e.ID).Msg("failed to update event")
		return err
	}
	return nil
}

func DeleteEvent(id int) error {
	res, err := DB.Exec(`DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("event_id", id).Msg("failed to delete event")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEventsByGroup removes every event of a group; recurrence deletion
// cascades through here.
func DeleteEventsByGroup(groupID string) (int, error) {
	res, err := DB.Exec(`DELETE FROM events WHERE group_id = $1`, groupID)
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("failed to delete event group")
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// DeleteEventsEndedBefore drops events whose end is older than the cutoff.
// Used by the retention pass.
func DeleteEventsEndedBefore(cutoff time.Time) (int, error) {
	res, err := DB.Exec(`DELETE FROM events WHERE end_ts < $1`, cutoff)
	if err != nil {
		log.Error().Err(err).Time("cutoff", cutoff).Msg("failed to delete old events")
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// recurring event templates

func SaveRecurringEvent(r *model.RecurringEvent) error {
	const q = `
	INSERT INTO recurring_events (title, start_ts, end_ts, rrule, group_id)
	VALUES (:title, :start_ts, :end_ts, :rrule, :group_id)
	RETURNING id`
	rows, err := DB.NamedQuery(q, r)
	if err != nil {
		log.Error().Err(err).Str("group_id", r.GroupID).Msg("failed to save recurring event")
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&r.ID); err != nil {
			return err
		}
	}
	return nil
}

func ListRecurringEvents() ([]model.RecurringEvent, error) {
	var recs []model.RecurringEvent
	err := DB.Select(&recs, `
		SELECT id, title, start_ts, end_ts, rrule, group_id
		  FROM recurring_events ORDER BY start_ts`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list recurring events")
	}
	return recs, err
}

func DeleteRecurringEventByGroup(groupID string) error {
	_, err := DB.Exec(`DELETE FROM recurring_events WHERE group_id = $1`, groupID)
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("failed to delete recurring event")
	}
	return err
}
