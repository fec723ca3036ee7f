package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/alardizabal/ud851-Sunshine/appinsightsutils"
	"github.com/alardizabal/ud851-Sunshine/config"
	"github.com/alardizabal/ud851-Sunshine/data"
	"github.com/alardizabal/ud851-Sunshine/handheld"
	"github.com/alardizabal/ud851-Sunshine/logger"
	"github.com/alardizabal/ud851-Sunshine/scheduler"
	"github.com/alardizabal/ud851-Sunshine/wearsync"
	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
)

func main() {
	fmt.Printf("Watch face starting...[%d]\n", os.Getpid())

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %s\n", err)
			os.Exit(1)
		}
	}

	log := logger.Get(config.GetLogLevel())
	defer func() { _ = log.Sync() }()

	log.Infow("config", "data_dir", config.GetDataDir(), "snapshot_file", config.GetWeatherSnapshotFile(), "icon_dir", config.GetIconDir())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := run(ctx, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorw("watch_face_failed", "err", err)
		os.Exit(1)
	}
	fmt.Println("Watch face stopped!")
}

func newTelemetryClient() appinsights.TelemetryClient {
	key := config.GetApplicationInsightsInstrumentationKey()

	telemetryConfig := appinsights.NewTelemetryConfiguration(key)
	telemetryConfig.MaxBatchSize = 8192
	telemetryConfig.MaxBatchInterval = 2 * time.Second

	client := appinsights.NewTelemetryClientFromConfig(telemetryConfig)
	client.Context().Tags.Cloud().SetRole("watch-face")
	if key == "" {
		client.SetIsEnabled(false)
	}
	return client
}

func run(ctx context.Context, log *logger.Logger) error {
	clk := clock.NewClock()
	telemetry := newTelemetryClient()
	if !telemetry.IsEnabled() {
		log.Warnw("telemetry_disabled", "reason", "no instrumentation key")
	}

	store, err := data.LoadWeatherStore(config.GetWeatherSnapshotFile(), clk, log)
	if err != nil {
		return err
	}

	width, height := config.GetFaceSize()
	surface := NewSurface(clk, faceOptions{Width: width, Height: height, IconDir: config.GetIconDir()}, store, config.GetFaceRound(), config.GetTimeZone(), log)
	sched := scheduler.New(clk, config.GetInteractiveUpdateRate(), config.GetMuteUpdateRate(), surface.Redraw, log)
	channel := wearsync.NewChannel(log)
	face := newWatchFace(sched, channel, store, surface, telemetry, log)

	schedCtx, stopScheduler := context.WithCancel(ctx)
	schedDone := make(chan struct{})
	go func() {
		sched.Run(schedCtx)
		close(schedDone)
	}()
	defer func() {
		// the pending tick is gone once Run has returned
		stopScheduler()
		<-schedDone
		face.Destroy()
	}()

	// first frame, then start ticking if the host says we are on screen
	sched.TickNow()
	face.OnVisibilityChanged(config.GetStartVisible())

	jobs := gocron.NewScheduler(time.Local)
	if _, err := jobs.Cron("* * * * *").Do(face.OnTimeTick); err != nil {
		return fmt.Errorf("failed to schedule time tick: %w", err)
	}
	if config.GetOpenWeatherAPIKey() != "" {
		client := handheld.NewClient(&http.Client{Timeout: 15 * time.Second}, config.GetOpenWeatherAPIKey(), config.GetOpenWeatherBaseURL())
		publisher := handheld.NewPublisher(client, channel, config.GetOpenWeatherCity(), config.GetHandheldPollInterval(), log)
		if err := publisher.Register(jobs); err != nil {
			return fmt.Errorf("failed to schedule handheld publisher: %w", err)
		}
	} else {
		log.Infow("handheld_publisher_disabled", "reason", "no openweather api key")
	}
	jobs.StartAsync()
	defer jobs.Stop()

	return serveAPI(ctx, config.GetListenAddress(), face, clk, telemetry, log)
}

func serveAPI(ctx context.Context, address string, face *watchFace, clk clock.Clock, telemetry appinsights.TelemetryClient, log *logger.Logger) error {
	log.Infow("listening", "address", address)
	l, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	mux := appinsightsutils.NewServeMuxWithTrace(telemetry)
	registerHandlers(mux, NewApiRouter(telemetry, face, clk, log))
	server := &http.Server{
		Addr:    address,
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		log.Infow("shutting_down")
		_ = server.Shutdown(context.Background())
	}()
	return server.Serve(l)
}

func registerHandlers(mux *appinsightsutils.ServeMuxWithTrace, api *ApiRouter) {
	mux.HandleFunc("GET /", api.Hello)
	mux.HandleFunc("GET /weather", api.WeatherGet)
	mux.HandleFunc("PUT /weather", api.WeatherPut)
	mux.HandleFunc("GET /weather/icon/{code}", api.WeatherIconGet)
	mux.HandleFunc("GET /surface", api.SurfaceGet)
	mux.HandleFunc("PUT /surface/visibility", api.VisibilityPut)
	mux.HandleFunc("PUT /surface/ambient", api.AmbientPut)
	mux.HandleFunc("PUT /surface/mute", api.MutePut)
	mux.HandleFunc("PUT /surface/insets", api.InsetsPut)
	mux.HandleFunc("PUT /surface/timezone", api.TimezonePut)
	mux.HandleFunc("POST /surface/time-tick", api.TimeTickPost)
	mux.HandleFunc("POST /surface/tick", api.TickPost)
	mux.HandleFunc("GET /face-data", api.FaceDataGet)
	mux.HandleFunc("GET /face-stream", api.FaceStream)
	mux.HandleFuncWithContext("GET /face-image", api.FaceImageGet)
}
