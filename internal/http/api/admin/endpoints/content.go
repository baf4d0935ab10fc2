package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inkfleet/inkfleet/internal/content"
	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/http/api"
	"github.com/inkfleet/inkfleet/internal/http/api/admin/packets"
	"github.com/inkfleet/inkfleet/internal/model"
)

const defaultHistoryLimit = 50

// ContentModule mounts template-content submission and sub-item history
// endpoints (JWT required). A successful submit re-renders and requeues the
// display's image.
func ContentModule(contents *content.Service) api.Module {
	ctl := &ContentController{contents: contents}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/content", ctl.listContent)
		c.GET("/content/:mac", ctl.listContentForDisplay)
		c.POST("/content", ctl.submitContent)
		c.POST("/content/:mac/:type/redeliver", ctl.redeliver)
		c.GET("/history", ctl.listHistory)
	})
}

type ContentController struct {
	contents *content.Service
}

// GET /api/admin/content
func (t *ContentController) listContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	rows, err := db.ListAllDisplayContent()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return rows, nil
}

// GET /api/admin/content/:mac
func (t *ContentController) listContentForDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	rows, err := db.ListDisplayContentByMac(ctx.Param("mac"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return rows, nil
}

// POST /api/admin/content
func (t *ContentController) submitContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.SubmitContentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	row := &model.DisplayContent{
		DisplayMac: request.DisplayMac,
		TypeKey:    request.TypeKey,
		EventStart: request.EventStart,
		EventEnd:   request.EventEnd,
		Fields:     request.Fields,
		SubItems:   request.SubItems,
	}
	if err := t.contents.Submit(ctx.Request.Context(), row); err != nil {
		return nil, contentError(err)
	}
	return gin.H{"display_mac": request.DisplayMac, "type_key": request.TypeKey}, nil
}

// POST /api/admin/content/:mac/:type/redeliver
func (t *ContentController) redeliver(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	mac, typeKey := ctx.Param("mac"), ctx.Param("type")
	if err := t.contents.Redeliver(ctx.Request.Context(), mac, typeKey); err != nil {
		return nil, contentError(err)
	}
	return gin.H{"display_mac": mac, "type_key": typeKey}, nil
}

// GET /api/admin/history?limit=n
func (t *ContentController) listHistory(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	limit := defaultHistoryLimit
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid limit"}
		}
		limit = parsed
	}

	rows, err := db.ListSubItemHistory(limit)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return rows, nil
}

func contentError(err error) *api.APIError {
	if errors.Is(err, content.ErrInvalidSubmission) {
		return &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if errors.Is(err, db.ErrNotFound) {
		return &api.APIError{Code: http.StatusNotFound, Message: err.Error()}
	}
	return &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
}
