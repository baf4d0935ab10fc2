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

// DisplaysModule mounts fleet management endpoints (JWT required).
func DisplaysModule(scheduler *schedule.Service) api.Module {
	ctl := &DisplayController{scheduler: scheduler}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/displays", ctl.listDisplays)
		c.GET("/displays/brands", ctl.listBrands)
		c.GET("/displays/models", ctl.listModels)
		c.GET("/displays/:mac", ctl.getDisplay)
		c.POST("/displays", ctl.createDisplay)
		c.PUT("/displays/:mac", ctl.updateDisplay)
		c.DELETE("/displays/:mac", ctl.deleteDisplay)
	})
}

type DisplayController struct {
	scheduler *schedule.Service
}

// GET /api/admin/displays
func (t *DisplayController) listDisplays(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := db.ListDisplays()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	out := make([]packets.DisplayResponse, 0, len(all))
	for i := range all {
		out = append(out, packets.NewDisplayResponse(&all[i]))
	}
	return out, nil
}

// GET /api/admin/displays/brands
func (t *DisplayController) listBrands(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	brands, err := db.ListDistinctBrands()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return brands, nil
}

// GET /api/admin/displays/models
func (t *DisplayController) listModels(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	models, err := db.ListDistinctModels()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return models, nil
}

// GET /api/admin/displays/:mac
func (t *DisplayController) getDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	d, err := db.GetDisplayByMac(ctx.Param("mac"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "display not found"}
	}
	return packets.NewDisplayResponse(d), nil
}

// POST /api/admin/displays
func (t *DisplayController) createDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateDisplayRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if existing, _ := db.GetDisplayByMac(request.MacAddress); existing != nil {
		return nil, &api.APIError{Code: http.StatusConflict, Message: "mac address already registered"}
	}

	d := &model.Display{
		MacAddress:      request.MacAddress,
		Name:            request.Name,
		Brand:           request.Brand,
		Model:           request.Model,
		Width:           request.Width,
		Height:          request.Height,
		Orientation:     request.Orientation,
		DisplayType:     request.DisplayType,
		DefaultFilename: request.DefaultFilename,
	}
	if err := db.CreateDisplay(d); err != nil {
		log.Error().Err(err).Str("mac", request.MacAddress).Msg("Failed to create display")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create display"}
	}

	return packets.NewDisplayResponse(d), nil
}

// PUT /api/admin/displays/:mac
func (t *DisplayController) updateDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	d, err := db.GetDisplayByMac(ctx.Param("mac"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "display not found"}
	}

	var request packets.UpdateDisplayRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if request.Name != nil {
		d.Name = request.Name
	}
	if request.Brand != nil {
		d.Brand = request.Brand
	}
	if request.Model != nil {
		d.Model = request.Model
	}
	if request.Width != nil {
		d.Width = *request.Width
	}
	if request.Height != nil {
		d.Height = *request.Height
	}
	if request.Orientation != nil {
		d.Orientation = *request.Orientation
	}
	if request.DisplayType != nil {
		d.DisplayType = request.DisplayType
	}
	if request.DefaultFilename != nil {
		d.DefaultFilename = *request.DefaultFilename
	}

	if err := db.SaveDisplay(d); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update display"}
	}

	// The wake plan depends on the default image and config; recompute it
	// so the device picks up changes on its next check-in.
	if _, err := t.scheduler.ResolveWake(d.MacAddress); err != nil {
		log.Error().Err(err).Str("mac", d.MacAddress).Msg("Failed to recompute wake after update")
	}

	updated, err := db.GetDisplayByMac(d.MacAddress)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not fetch updated display"}
	}
	return packets.NewDisplayResponse(updated), nil
}

// DELETE /api/admin/displays/:mac
func (t *DisplayController) deleteDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	mac := ctx.Param("mac")
	if _, err := db.GetDisplayByMac(mac); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "display not found"}
	}
	if err := db.DeleteDisplay(mac); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete display"}
	}
	return gin.H{"deleted": mac}, nil
}
