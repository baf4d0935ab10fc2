package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/http/api"
	"github.com/inkfleet/inkfleet/internal/http/api/admin/packets"
	"github.com/inkfleet/inkfleet/internal/model"
	"github.com/inkfleet/inkfleet/internal/schedule"
)

// ConfigModule mounts the fleet-wide scheduling configuration (JWT required).
// Saving recomputes every display's wake plan; lead and follow-up minutes
// shift the handover windows immediately.
func ConfigModule(scheduler *schedule.Service) api.Module {
	ctl := &ConfigController{scheduler: scheduler}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/config", ctl.getConfig)
		c.PUT("/config", ctl.saveConfig)
	})
}

type ConfigController struct {
	scheduler *schedule.Service
}

// GET /api/admin/config
func (t *ConfigController) getConfig(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	cfg, err := db.GetConfig()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return cfg, nil
}

// PUT /api/admin/config
func (t *ConfigController) saveConfig(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.SaveConfigRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if request.WakeIntervalDay <= 0 {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "wake_interval_day must be positive"}
	}

	cfg, err := db.GetConfig()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	cfg.WakeIntervalDay = request.WakeIntervalDay
	cfg.WakeIntervalNight = request.WakeIntervalNight
	cfg.LeadTime = request.LeadTime
	cfg.FollowUpTime = request.FollowUpTime
	cfg.DeleteAfterDays = request.DeleteAfterDays
	if request.WeekdayWindows != nil {
		cfg.WeekdayWindows = request.WeekdayWindows
	}

	if err := db.SaveConfig(cfg); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save config"}
	}

	t.recomputeFleet()

	updated, err := db.GetConfig()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return updated, nil
}

func (t *ConfigController) recomputeFleet() {
	displays, err := db.ListDisplays()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list displays for wake recompute")
		return
	}
	for _, d := range displays {
		if _, err := t.scheduler.ResolveWake(d.MacAddress); err != nil {
			log.Error().Err(err).Str("mac", d.MacAddress).Msg("Failed to recompute wake")
		}
	}
}
