package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/inkfleet/inkfleet/internal/content"
	"github.com/inkfleet/inkfleet/internal/errtrack"
	"github.com/inkfleet/inkfleet/internal/http/api"
	adminapi "github.com/inkfleet/inkfleet/internal/http/api/admin/endpoints"
	authapi "github.com/inkfleet/inkfleet/internal/http/api/admin/auth/endpoints"
	hubapi "github.com/inkfleet/inkfleet/internal/http/api/hub/endpoints"
	"github.com/inkfleet/inkfleet/internal/schedule"
	"github.com/inkfleet/inkfleet/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	scheduler *schedule.Service,
	contents *content.Service,
	errs *errtrack.Tracker,
	storageSystem storage.Storage,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
	},
		adminapi.DisplaysModule(scheduler),
		adminapi.EventsModule(scheduler),
		adminapi.ConfigModule(scheduler),
		adminapi.ContentModule(contents),
		adminapi.TemplatesModule(contents),
		adminapi.MediaModule(storageSystem),
		// session endpoints that require auth
		authapi.AuthSessionModule(env.SecretKey),
	)

	// Device check-ins are unauthenticated; e-paper tags and the wall apps
	// have no credential store.
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/hub",
	},
		hubapi.DisplaysModule(scheduler, errs),
	)

	// Static content
	if !env.UseSpaces {
		r.Static("/uploads", "./uploads")
	}
}
