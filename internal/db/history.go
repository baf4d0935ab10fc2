package db

import (
	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/model"
)

// ArchiveSubItem copies an expiring sub-item into the history table.
func ArchiveSubItem(typeKey, mac string, s model.SubItem) error {
	_, err := DB.Exec(`
		INSERT INTO sub_item_history
		  (type_key, display_mac, position, title, start_ts, end_ts,
		   highlighted, busy, qr_payload, expired_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
		typeKey, mac, s.Position, s.Title, s.Start, s.End,
		s.Highlighted, s.Busy, s.QRPayload)
	if err != nil {
		log.Error().Err(err).Str("mac", mac).Str("type", typeKey).
			Msg("failed to archive sub item")
	}
	return err
}

func CountSubItemHistory() (int, error) {
	var n int
	err := DB.Get(&n, `SELECT count(*) FROM sub_item_history`)
	if err != nil {
		log.Error().Err(err).Msg("failed to count history entries")
	}
	return n, err
}

// TrimSubItemHistory deletes the oldest entries (by original end, then
// archival time) until at most keep remain.
func TrimSubItemHistory(keep int) (int, error) {
	res, err := DB.Exec(`
		DELETE FROM sub_item_history
		 WHERE id IN (
			SELECT id FROM sub_item_history
			 ORDER BY end_ts ASC NULLS FIRST, expired_at ASC
			 LIMIT GREATEST((SELECT count(*) FROM sub_item_history) - $1, 0)
		 )`, keep)
	if err != nil {
		log.Error().Err(err).Msg("failed to trim history entries")
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ListSubItemHistory returns the newest entries first, bounded by limit.
func ListSubItemHistory(limit int) ([]model.SubItemHistory, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}
	var entries []model.SubItemHistory
	err := DB.Select(&entries, `
		SELECT id, type_key, display_mac, position, title, start_ts, end_ts,
		       highlighted, busy, qr_payload, expired_at
		  FROM sub_item_history
		 ORDER BY end_ts DESC NULLS LAST, expired_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list history entries")
	}
	return entries, err
}
