package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/http/api"
	"github.com/inkfleet/inkfleet/internal/http/api/admin/packets"
	"github.com/inkfleet/inkfleet/internal/model"
	"github.com/inkfleet/inkfleet/internal/storage"
)

// MediaModule mounts the media upload endpoint (JWT required). Uploaded
// files back custom event images referenced by filename in assignments.
func MediaModule(store storage.Storage) api.Module {
	ctl := &MediaController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/media", ctl.uploadMedia)
	})
}

type MediaController struct {
	store storage.Storage
}

// POST /api/admin/media
func (t *MediaController) uploadMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "missing file"}
	}

	url, err := t.store.SaveUpload(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to store upload")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store upload"}
	}

	return packets.UploadResponse{URL: url}, nil
}
