package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/http/api"
	"github.com/inkfleet/inkfleet/internal/http/api/admin/packets"
	"github.com/inkfleet/inkfleet/internal/model"
	"github.com/inkfleet/inkfleet/internal/schedule"
)

// EventsModule mounts event admission endpoints (JWT required). Hard
// conflicts come back as 409 with every colliding event named.
func EventsModule(scheduler *schedule.Service) api.Module {
	ctl := &EventController{scheduler: scheduler}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/events", ctl.listEvents)
		c.GET("/events/recurring", ctl.listRecurring)
		c.POST("/events", ctl.createEvent)
		c.PUT("/events/:id", ctl.updateEvent)
		c.DELETE("/events/:id", ctl.deleteEvent)
		c.DELETE("/events/groups/:groupID", ctl.deleteGroup)
	})
}

type EventController struct {
	scheduler *schedule.Service
}

// GET /api/admin/events
func (t *EventController) listEvents(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	events, err := db.ListEvents()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return events, nil
}

// GET /api/admin/events/recurring
func (t *EventController) listRecurring(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	rules, err := db.ListRecurringEvents()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return rules, nil
}

// POST /api/admin/events
func (t *EventController) createEvent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request schedule.EventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	result, err := t.scheduler.AddEvent(request)
	if err != nil {
		return nil, admissionError(err)
	}

	return packets.AdmissionResponse{
		GroupID:  result.GroupID,
		Saved:    result.Saved,
		Warnings: result.Warnings,
	}, nil
}

// PUT /api/admin/events/:id
func (t *EventController) updateEvent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	var request schedule.EventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	result, err := t.scheduler.UpdateEvent(id, request)
	if err != nil {
		return nil, admissionError(err)
	}

	return packets.AdmissionResponse{
		GroupID:  result.GroupID,
		Saved:    result.Saved,
		Warnings: result.Warnings,
	}, nil
}

// DELETE /api/admin/events/:id
func (t *EventController) deleteEvent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	if err := t.scheduler.DeleteEvent(id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "event not found"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return gin.H{"deleted": id}, nil
}

// DELETE /api/admin/events/groups/:groupID
func (t *EventController) deleteGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	groupID := ctx.Param("groupID")
	if err := t.scheduler.DeleteGroup(groupID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return gin.H{"deleted_group": groupID}, nil
}

func admissionError(err error) *api.APIError {
	var validation *schedule.ValidationError
	if errors.As(err, &validation) {
		return &api.APIError{Code: http.StatusBadRequest, Message: validation.Error()}
	}
	var conflict *schedule.ConflictError
	if errors.As(err, &conflict) {
		return &api.APIError{Code: http.StatusConflict, Message: conflict.Error()}
	}
	if errors.Is(err, db.ErrNotFound) {
		return &api.APIError{Code: http.StatusNotFound, Message: err.Error()}
	}
	return &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
}
