package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/errtrack"
	"github.com/inkfleet/inkfleet/internal/model"
)

// TagStatusTopic carries live tag telemetry published by the access point
// bridge, one Tag JSON document per message.
const TagStatusTopic = "oepl/tag-status"

// batteryLowPercent is the threshold below which a tag gets the low-battery
// error attached.
const batteryLowPercent = 10

// DisplayStore is the persistence surface tag synchronization needs.
type DisplayStore interface {
	GetDisplayByMac(mac string) (*model.Display, error)
	CreateDisplay(d *model.Display) error
	SaveDisplay(d *model.Display) error
}

// Syncer imports the access point's tag database once at startup and then
// follows live telemetry over MQTT. Tags unknown to the fleet are created;
// known displays get their battery and check-in fields refreshed.
type Syncer struct {
	client   *Client
	store    DisplayStore
	errs     *errtrack.Tracker
	mqtt     mqtt.Client
	interval time.Duration
}

func NewSyncer(client *Client, store DisplayStore, errs *errtrack.Tracker, mqttClient mqtt.Client) *Syncer {
	return &Syncer{
		client:   client,
		store:    store,
		errs:     errs,
		mqtt:     mqttClient,
		interval: 6 * time.Second,
	}
}

// Run retries the initial tag import on a fixed cadence until it succeeds,
// then subscribes to live telemetry and blocks until the context ends.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.importTags(ctx); err == nil {
			break
		} else {
			log.Error().Err(err).Msg("initial tag import failed, retrying")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}

	if s.mqtt != nil {
		if token := s.mqtt.Subscribe(TagStatusTopic, 1, s.handleTagStatus); token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Str("topic", TagStatusTopic).
				Msg("failed to subscribe to tag telemetry")
		} else {
			log.Info().Str("topic", TagStatusTopic).Msg("subscribed to tag telemetry")
		}
	}
	<-ctx.Done()
}

func (s *Syncer) importTags(ctx context.Context) error {
	tags, err := s.client.FetchTags(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("tags", len(tags)).Msg("importing access point tag database")
	for _, tag := range tags {
		if err := s.SyncTag(tag); err != nil {
			log.Error().Err(err).Str("mac", tag.Mac).Msg("failed to sync tag")
		}
	}
	return nil
}

func (s *Syncer) handleTagStatus(_ mqtt.Client, msg mqtt.Message) {
	var tag Tag
	if err := json.Unmarshal(msg.Payload(), &tag); err != nil {
		log.Error().Err(err).Str("topic", msg.Topic()).Msg("invalid tag telemetry payload")
		return
	}
	if err := s.SyncTag(tag); err != nil {
		log.Error().Err(err).Str("mac", tag.Mac).Msg("failed to apply tag telemetry")
	}
}

// SyncTag upserts one tag's telemetry into the display fleet.
func (s *Syncer) SyncTag(tag Tag) error {
	if tag.Mac == "" {
		return errors.New("tag without mac")
	}

	d, err := s.store.GetDisplayByMac(tag.Mac)
	switch {
	case errors.Is(err, db.ErrNotFound):
		tech := "ESL"
		d = &model.Display{MacAddress: tag.Mac, Technology: &tech}
		if err := s.store.CreateDisplay(d); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	if tag.Alias != "" {
		alias := tag.Alias
		d.Name = &alias
	}

	if hw, ok := LookupTagType(tag.HWType); ok {
		d.Width = hw.Width
		d.Height = hw.Height
		brand, hwModel := hw.Name, hw.Model
		d.Brand = &brand
		d.Model = &hwModel
	} else {
		log.Debug().Str("mac", tag.Mac).Int("hwType", tag.HWType).
			Msg("unknown tag hardware type, keeping stored dimensions")
	}

	pct := MvToPercent(tag.BatteryMv, batteryEmptyMv, batteryFullMv)
	now := time.Now()
	d.BatteryPercentage = &pct
	d.BatteryReportedAt = &now
	if tag.LastSeen > 0 {
		seen := time.Unix(tag.LastSeen, 0)
		d.LastSwitch = &seen
	}
	if err := s.store.SaveDisplay(d); err != nil {
		return err
	}

	if pct <= batteryLowPercent {
		return s.errs.Flag(d.ID, model.ErrCodeBatteryLow)
	}
	return s.errs.Resolve(d.ID, model.ErrCodeBatteryLow)
}
