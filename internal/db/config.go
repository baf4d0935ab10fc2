package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/model"
)

// GetConfig returns the single configuration row, creating it with defaults
// on first use. There is never more than one row.
func GetConfig() (*model.Config, error) {
	var cfg model.Config
	err := DB.Get(&cfg, `
		SELECT id, wake_interval_day, wake_interval_night, lead_time,
		       follow_up_time, delete_after_days
		  FROM config
		 LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return createDefaultConfig()
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return nil, err
	}
	if err := loadWeekdayWindows(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig updates the singleton row and replaces its weekday windows.
func SaveConfig(cfg *model.Config) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("begin config save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.NamedExec(`
		UPDATE config SET
		  wake_interval_day = :wake_interval_day,
		  wake_interval_night = :wake_interval_night,
		  lead_time = :lead_time,
		  follow_up_time = :follow_up_time,
		  delete_after_days = :delete_after_days
		WHERE id = :id`, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to save config")
		return err
	}

	if _, err := tx.Exec(`DELETE FROM config_weekday_windows WHERE config_id = $1`, cfg.ID); err != nil {
		return err
	}
	for _, day := range model.Weekdays {
		w, ok := cfg.WeekdayWindows[day]
		if !ok {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO config_weekday_windows (config_id, weekday, enabled, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5)`,
			cfg.ID, day, w.Enabled, w.Start, w.End)
		if err != nil {
			log.Error().Err(err).Str("weekday", day).Msg("failed to save weekday window")
			return err
		}
	}
	return tx.Commit()
}

func createDefaultConfig() (*model.Config, error) {
	cfg := &model.Config{
		WakeIntervalDay: 60,
		LeadTime:        15,
		FollowUpTime:    15,
		DeleteAfterDays: 7,
		WeekdayWindows:  map[string]model.WeekdayWindow{},
	}
	err := DB.QueryRowx(`
		INSERT INTO config (wake_interval_day, lead_time, follow_up_time, delete_after_days)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		cfg.WakeIntervalDay, cfg.LeadTime, cfg.FollowUpTime, cfg.DeleteAfterDays).
		Scan(&cfg.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to create default config")
		return nil, err
	}
	log.Info().Msg("created default config row")
	return cfg, nil
}

func loadWeekdayWindows(cfg *model.Config) error {
	type row struct {
		Weekday string `db:"weekday"`
		model.WeekdayWindow
	}
	var rows []row
	err := DB.Select(&rows, `
		SELECT weekday, enabled, start_time, end_time
		  FROM config_weekday_windows
		 WHERE config_id = $1`, cfg.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load weekday windows")
		return err
	}
	cfg.WeekdayWindows = make(map[string]model.WeekdayWindow, len(rows))
	for _, r := range rows {
		cfg.WeekdayWindows[r.Weekday] = r.WeekdayWindow
	}
	return nil
}
