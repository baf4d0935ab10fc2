package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/errtrack"
	"github.com/inkfleet/inkfleet/internal/http/api"
	"github.com/inkfleet/inkfleet/internal/http/api/hub/packets"
	"github.com/inkfleet/inkfleet/internal/model"
	"github.com/inkfleet/inkfleet/internal/schedule"
)

// DisplaysModule mounts the device-facing endpoints. No JWT: devices
// authenticate by nothing more than their MAC, same as the gateway path.
func DisplaysModule(scheduler *schedule.Service, errs *errtrack.Tracker) api.Module {
	ctl := &HubController{scheduler: scheduler, errs: errs}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/displays/initiate", ctl.initiate)
		c.PUBLIC_GET("/displays/:mac/wake", ctl.getWake)
		c.PUBLIC_POST("/displays/:mac/switch", ctl.confirmSwitch)
		c.PUBLIC_POST("/displays/:mac/battery", ctl.reportBattery)
		c.PUBLIC_GET("/time", ctl.currentTime)
	})
}

type HubController struct {
	scheduler *schedule.Service
	errs      *errtrack.Tracker
}

// POST /api/hub/displays/initiate
func (t *HubController) initiate(ctx *gin.Context) (any, *api.APIError) {
	var request packets.InitiateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	d, err := db.GetDisplayByMac(request.Mac)
	if err != nil {
		technology := "APP"
		d = &model.Display{
			MacAddress:  request.Mac,
			Width:       request.Width,
			Height:      request.Height,
			Orientation: request.Orientation,
			Technology:  &technology,
			// Fresh devices poll again in ten minutes and show the
			// placeholder until content is submitted for them.
			WakeTime: time.Now().Add(10 * time.Minute),
			Filename: "initial.jpg",
		}
		if err := db.CreateDisplay(d); err != nil {
			log.Error().Err(err).Str("mac", request.Mac).Msg("Failed to register display")
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not register display"}
		}
		log.Info().Str("mac", request.Mac).Msg("registered new app display")
	} else {
		now := time.Now()
		d.RunningSince = &now
		if request.Width > 0 {
			d.Width = request.Width
		}
		if request.Height > 0 {
			d.Height = request.Height
		}
		if request.Orientation != "" {
			d.Orientation = request.Orientation
		}
		if err := db.SaveDisplay(d); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update display"}
		}
	}

	return t.wakeResponse(request.Mac)
}

// GET /api/hub/displays/:mac/wake
func (t *HubController) getWake(ctx *gin.Context) (any, *api.APIError) {
	return t.wakeResponse(ctx.Param("mac"))
}

func (t *HubController) wakeResponse(mac string) (any, *api.APIError) {
	d, err := t.scheduler.ResolveWake(mac)
	if err != nil {
		if isNotFound(err) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "display not found"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return packets.WakeResponse{
		WakeTime:    d.WakeTime.Format(time.RFC3339),
		Filename:    d.Filename,
		DoSwitch:    d.DoSwitch,
		CurrentTime: time.Now().Format(time.RFC3339),
	}, nil
}

// POST /api/hub/displays/:mac/switch
func (t *HubController) confirmSwitch(ctx *gin.Context) (any, *api.APIError) {
	var request packets.SwitchRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	d, err := db.GetDisplayByMac(ctx.Param("mac"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "display not found"}
	}

	now := time.Now()
	d.FilenameApp = request.Filename
	d.LastSwitch = &now
	d.DoSwitch = d.Filename != d.FilenameApp
	if err := db.SaveDisplay(d); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save display"}
	}

	// Showing something other than the planned image leaves the device
	// flagged until a later check-in confirms the right one.
	if d.DoSwitch {
		t.errs.Flag(d.ID, model.ErrCodeContentNotConfirmed)
	} else {
		t.errs.Resolve(d.ID, model.ErrCodeContentNotConfirmed)
	}

	return gin.H{"do_switch": d.DoSwitch, "filename": d.Filename}, nil
}

// POST /api/hub/displays/:mac/battery
func (t *HubController) reportBattery(ctx *gin.Context) (any, *api.APIError) {
	var request packets.BatteryRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	d, err := db.GetDisplayByMac(ctx.Param("mac"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "display not found"}
	}

	now := time.Now()
	d.BatteryPercentage = &request.Percentage
	d.BatteryReportedAt = &now
	if err := db.SaveDisplay(d); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save display"}
	}

	if request.Percentage <= 10 {
		t.errs.Flag(d.ID, model.ErrCodeBatteryLow)
	} else {
		t.errs.Resolve(d.ID, model.ErrCodeBatteryLow)
	}

	return gin.H{"battery_percentage": request.Percentage}, nil
}

// GET /api/hub/time
func (t *HubController) currentTime(ctx *gin.Context) (any, *api.APIError) {
	return packets.TimeResponse{CurrentTime: time.Now().Format(time.RFC3339)}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}
