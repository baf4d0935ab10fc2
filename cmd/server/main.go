package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inkfleet/inkfleet/internal/content"
	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/errtrack"
	"github.com/inkfleet/inkfleet/internal/gateway"
	"github.com/inkfleet/inkfleet/internal/http/middleware"
	"github.com/inkfleet/inkfleet/internal/maintenance"
	"github.com/inkfleet/inkfleet/internal/redis"
	"github.com/inkfleet/inkfleet/internal/render"
	"github.com/inkfleet/inkfleet/internal/schedule"
)

func main() {
	env := LoadEnvironment()

	if env.Environment == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		gin.SetMode(gin.DebugMode)
	}

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}
	if env.RedisAddress != "" {
		redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	}

	SeedTemplates("templates")

	storageSystem := InitStorage(env)

	errs := errtrack.New(errtrack.DBStore{})
	scheduler := schedule.NewService(schedule.DBStore{}, errs)

	gatewayClient := gateway.NewClient(env.GatewayHost)
	sender := &gateway.ImageSender{Loader: storageSystem, Client: gatewayClient}
	queue := gateway.NewUploadQueue(sender, env.UploadDelay)

	renderer := render.New(render.OksvgRasterizer{})
	contents := content.NewService(content.DBStore{}, renderer, storageSystem, queue)

	sweeper := maintenance.New(maintenance.DBStore{}, contents)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go queue.Run(ctx)
	go sweeper.Run(ctx)
	go sweeper.RunRetention(ctx)

	if env.MQTTBrokerURL != "" {
		middleware.SetBrokerURL(env.MQTTBrokerURL)
	}
	mqttClient, err := middleware.CreateMQTTClient("inkfleet-server")
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect failed")
	}
	defer middleware.CleanupMQTT()

	syncer := gateway.NewSyncer(gatewayClient, gateway.DBStore{}, errs, mqttClient)
	go syncer.Run(ctx)

	if env.ResendOnStart {
		go contents.ReplayAll(ctx)
	}

	r := gin.Default()
	RegisterRoutes(r, env, scheduler, contents, errs, storageSystem)

	srv := &http.Server{
		Addr:    env.ServerAddress,
		Handler: r,
	}

	go func() {
		log.Info().Str("address", env.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
		os.Exit(1)
	}
}
