package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/content"
	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/http/api"
	"github.com/inkfleet/inkfleet/internal/http/api/admin/packets"
	"github.com/inkfleet/inkfleet/internal/model"
	"github.com/inkfleet/inkfleet/internal/render"
)

// TemplatesModule mounts the template catalog (JWT required). Editing a
// template re-renders every display currently showing that type.
func TemplatesModule(contents *content.Service) api.Module {
	ctl := &TemplateController{contents: contents}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/templates", ctl.listTemplates)
		c.GET("/templates/types", ctl.listTypes)
		c.PUT("/templates/types", ctl.upsertType)
		c.POST("/templates", ctl.createTemplate)
		c.PUT("/templates/:id", ctl.updateTemplate)
	})
}

type TemplateController struct {
	contents *content.Service
}

// GET /api/admin/templates
func (t *TemplateController) listTemplates(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	templates, err := db.ListTemplates()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return templates, nil
}

// GET /api/admin/templates/types
func (t *TemplateController) listTypes(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	types, err := db.ListTemplateTypes()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return types, nil
}

// PUT /api/admin/templates/types
func (t *TemplateController) upsertType(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.UpsertTemplateTypeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := db.UpsertTemplateType(request.TypeKey, request.Label); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save template type"}
	}
	return gin.H{"type_key": request.TypeKey}, nil
}

// POST /api/admin/templates
func (t *TemplateController) createTemplate(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateTemplateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if _, err := db.GetTemplateType(request.TypeKey); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown template type"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	if !render.ValidMarkup(request.SVGContent) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid svg markup"}
	}

	tpl := &model.TemplateDefinition{
		TypeKey:     request.TypeKey,
		Name:        request.Name,
		Description: request.Description,
		Orientation: request.Orientation,
		Width:       request.Width,
		Height:      request.Height,
		SVGContent:  request.SVGContent,
	}
	if err := db.CreateTemplate(tpl); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create template"}
	}
	return tpl, nil
}

// PUT /api/admin/templates/:id
func (t *TemplateController) updateTemplate(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	tpl, err := findTemplateByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "template not found"}
	}

	var request packets.UpdateTemplateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if request.Name != nil {
		tpl.Name = *request.Name
	}
	if request.Description != nil {
		tpl.Description = *request.Description
	}
	if request.Orientation != nil {
		tpl.Orientation = *request.Orientation
	}
	if request.SVGContent != nil {
		if !render.ValidMarkup(*request.SVGContent) {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid svg markup"}
		}
		tpl.SVGContent = *request.SVGContent
	}

	if err := db.UpdateTemplate(tpl); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update template"}
	}

	t.redeliverType(ctx, tpl.TypeKey)
	return tpl, nil
}

// redeliverType refreshes every display whose stored content uses the type.
func (t *TemplateController) redeliverType(ctx *gin.Context, typeKey string) {
	rows, err := db.ListDisplayContentByType(typeKey)
	if err != nil {
		log.Error().Err(err).Str("type", typeKey).Msg("Failed to list content for redelivery")
		return
	}
	for _, row := range rows {
		if err := t.contents.Redeliver(ctx.Request.Context(), row.DisplayMac, row.TypeKey); err != nil {
			log.Error().Err(err).Str("mac", row.DisplayMac).Str("type", typeKey).
				Msg("Failed to redeliver after template update")
		}
	}
}

func findTemplateByID(id int) (*model.TemplateDefinition, error) {
	templates, err := db.ListTemplates()
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].ID == id {
			return &templates[i], nil
		}
	}
	return nil, db.ErrNotFound
}
