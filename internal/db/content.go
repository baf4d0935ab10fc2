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

const contentColumns = `
	id, template_id, type_key, display_mac, event_start, event_end, fields, updated_at`

// UpsertDisplayContent stores the submitted content as the single row for
// its (display, type) pair. Any stale duplicates for the same pair are
// pruned and the sub-item list is replaced wholesale, inside one
// transaction.
func UpsertDisplayContent(c *model.DisplayContent) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("begin content upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Prune every existing row for the pair; sub-items cascade.
	if _, err := tx.Exec(`
		DELETE FROM display_contents
		 WHERE display_mac = $1 AND type_key = $2`, c.DisplayMac, c.TypeKey); err != nil {
		log.Error().Err(err).Str("mac", c.DisplayMac).Msg("failed to prune stale content rows")
		return err
	}

	err = tx.QueryRowx(`
		INSERT INTO display_contents
		  (template_id, type_key, display_mac, event_start, event_end, fields, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, updated_at`,
		c.TemplateID, c.TypeKey, c.DisplayMac, c.EventStart, c.EventEnd, c.Fields).
		Scan(&c.ID, &c.UpdatedAt)
	if err != nil {
		log.Error().Err(err).Str("mac", c.DisplayMac).Msg("failed to insert content row")
		return err
	}

	for i := range c.SubItems {
		c.SubItems[i].ContentID = c.ID
		c.SubItems[i].Position = i
		if err := insertSubItem(tx, &c.SubItems[i]); err != nil {
			log.Error().Err(err).Str("mac", c.DisplayMac).Int("position", i).
				Msg("failed to insert sub item")
			return err
		}
	}
	return tx.Commit()
}

func insertSubItem(tx *sqlx.Tx, s *model.SubItem) error {
	const q = `
	INSERT INTO display_content_items
	  (content_id, position, title, start_ts, end_ts, highlighted, busy, all_day, qr_payload)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id`
	return tx.QueryRowx(q, s.ContentID, s.Position, s.Title, s.Start, s.End,
		s.Highlighted, s.Busy, s.AllDay, s.QRPayload).Scan(&s.ID)
}

func GetDisplayContent(mac, typeKey string) (*model.DisplayContent, error) {
	var c model.DisplayContent
	err := DB.Get(&c, `
		SELECT `+contentColumns+`
		  FROM display_contents
		 WHERE display_mac = $1 AND type_key = $2`, mac, typeKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("mac", mac).Str("type", typeKey).Msg("failed to get display content")
		return nil, err
	}
	if err := loadSubItems(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func ListDisplayContentByMac(mac string) ([]model.DisplayContent, error) {
	return selectContents(`
		SELECT `+contentColumns+`
		  FROM display_contents
		 WHERE display_mac = $1
		 ORDER BY type_key`, mac)
}

func ListDisplayContentByType(typeKey string) ([]model.DisplayContent, error) {
	return selectContents(`
		SELECT `+contentColumns+`
		  FROM display_contents
		 WHERE type_key = $1
		 ORDER BY display_mac`, typeKey)
}

func ListAllDisplayContent() ([]model.DisplayContent, error) {
	return selectContents(`SELECT ` + contentColumns + ` FROM display_contents ORDER BY id`)
}

// FindActiveDisplayContent returns the content row for a display whose
// validity window covers now (or has no window), newest first.
func FindActiveDisplayContent(mac string, now time.Time) (*model.DisplayContent, error) {
	var c model.DisplayContent
	err := DB.Get(&c, `
		SELECT `+contentColumns+`
		  FROM display_contents
		 WHERE display_mac = $1
		   AND (event_start IS NULL OR event_start <= $2)
		   AND (event_end IS NULL OR event_end > $2)
		 ORDER BY updated_at DESC
		 LIMIT 1`, mac, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("mac", mac).Msg("failed to find active display content")
		return nil, err
	}
	if err := loadSubItems(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindExpiredDisplayContent returns rows whose overall validity has elapsed.
func FindExpiredDisplayContent(now time.Time) ([]model.DisplayContent, error) {
	return selectContents(`
		SELECT `+contentColumns+`
		  FROM display_contents
		 WHERE event_end IS NOT NULL AND event_end <= $1
		 ORDER BY id`, now)
}

// FindContentWithExpiredSubItems returns rows containing at least one
// sub-item whose own end has elapsed.
func FindContentWithExpiredSubItems(now time.Time) ([]model.DisplayContent, error) {
	return selectContents(`
		SELECT DISTINCT c.id, c.template_id, c.type_key, c.display_mac,
		       c.event_start, c.event_end, c.fields, c.updated_at
		  FROM display_contents c
		  JOIN display_content_items i ON i.content_id = c.id
		 WHERE i.end_ts IS NOT NULL AND i.end_ts <= $1
		 ORDER BY c.id`, now)
}

func DeleteDisplayContent(id int) error {
	_, err := DB.Exec(`DELETE FROM display_contents WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("content_id", id).Msg("failed to delete display content")
	}
	return err
}

func DeleteSubItem(id int) error {
	_, err := DB.Exec(`DELETE FROM display_content_items WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("sub_item_id", id).Msg("failed to delete sub item")
	}
	return err
}

// ResetSubItem clears the busy/highlighted flags and the end instant in
// place; door-sign slots are vacated rather than removed.
func ResetSubItem(id int) error {
	_, err := DB.Exec(`
		UPDATE display_content_items
		   SET busy = false, highlighted = false, end_ts = NULL
		 WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("sub_item_id", id).Msg("failed to reset sub item")
	}
	return err
}

func selectContents(query string, args ...any) ([]model.DisplayContent, error) {
	var contents []model.DisplayContent
	if err := DB.Select(&contents, query, args...); err != nil {
		log.Error().Err(err).Msg("failed to select display contents")
		return nil, err
	}
	for i := range contents {
		if err := loadSubItems(&contents[i]); err != nil {
			return nil, err
		}
	}
	return contents, nil
}

func loadSubItems(c *model.DisplayContent) error {
	err := DB.Select(&c.SubItems, `
		SELECT id, content_id, position, title, start_ts, end_ts,
		       highlighted, busy, all_day, qr_payload
		  FROM display_content_items
		 WHERE content_id = $1
		 ORDER BY position`, c.ID)
	if err != nil {
		log.Error().Err(err).Int("content_id", c.ID).Msg("failed to load sub items")
	}
	return err
}
