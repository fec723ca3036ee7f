package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/alardizabal/ud851-Sunshine/data"
	"github.com/alardizabal/ud851-Sunshine/logger"
	"github.com/alardizabal/ud851-Sunshine/scheduler"
	"github.com/alardizabal/ud851-Sunshine/wearsync"
	"github.com/go-playground/validator/v10"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
)

type ApiRouter struct {
	appInsightsClient appinsights.TelemetryClient
	face              *watchFace
	clock             clock.Clock
	validate          *validator.Validate
	log               *logger.Logger
}

func NewApiRouter(appInsightsClient appinsights.TelemetryClient, face *watchFace, clk clock.Clock, log *logger.Logger) *ApiRouter {
	if appInsightsClient == nil {
		panic("appInsightsClient is required")
	}
	return &ApiRouter{
		appInsightsClient: appInsightsClient,
		face:              face,
		clock:             clk,
		validate:          validator.New(),
		log:               log,
	}
}

type visibilityRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

type ambientRequest struct {
	Ambient *bool `json:"ambient" validate:"required"`
}

type muteRequest struct {
	Muted *bool `json:"muted" validate:"required"`
}

type insetsRequest struct {
	Round *bool `json:"round" validate:"required"`
}

type timezoneRequest struct {
	Timezone string `json:"timezone" validate:"required,timezone"`
}

type weatherDeliveryRequest struct {
	Events []wearsync.DataEvent `json:"events" validate:"required,min=1"`
}

type surfaceResponse struct {
	scheduler.ScheduleState
	Round     bool   `json:"round"`
	Timezone  string `json:"timezone"`
	Connected bool   `json:"connected"`
	NodeID    string `json:"node_id"`
}

type weatherResponse struct {
	data.WeatherSnapshot
	Icon data.Icon `json:"icon"`
}

// decodeAndValidate writes a 400 and returns false when the body is unusable.
func (api *ApiRouter) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if err := api.validate.Struct(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (api *ApiRouter) Hello(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Not Found"))
		return
	}
	fmt.Fprintf(w, "Hello, world ⌚")
}

func (api *ApiRouter) WeatherGet(w http.ResponseWriter, r *http.Request) {
	snapshot := api.face.store.Snapshot()
	writeJSON(w, weatherResponse{WeatherSnapshot: snapshot, Icon: snapshot.Icon()})
}

// WeatherPut is the ingress of the data-sync channel.
func (api *ApiRouter) WeatherPut(w http.ResponseWriter, r *http.Request) {
	var req weatherDeliveryRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}

	err := api.face.channel.Deliver(req.Events)
	if errors.Is(err, wearsync.ErrNotConnected) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (api *ApiRouter) WeatherIconGet(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(r.PathValue("code"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	icon := data.ClassifyWeatherCondition(code)
	writeJSON(w, struct {
		WeatherID int       `json:"weather_id"`
		Icon      data.Icon `json:"icon"`
		FileName  string    `json:"file_name"`
	}{
		WeatherID: code,
		Icon:      icon,
		FileName:  icon.FileName(),
	})
}

func (api *ApiRouter) SurfaceGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, surfaceResponse{
		ScheduleState: api.face.scheduler.State(),
		Round:         api.face.surface.Display().Round,
		Timezone:      api.face.surface.Location().String(),
		Connected:     api.face.channel.IsConnected(),
		NodeID:        api.face.channel.NodeID(),
	})
}

func (api *ApiRouter) VisibilityPut(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}
	api.face.OnVisibilityChanged(*req.Visible)
	w.WriteHeader(http.StatusNoContent)
}

func (api *ApiRouter) AmbientPut(w http.ResponseWriter, r *http.Request) {
	var req ambientRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}
	api.face.OnAmbientModeChanged(*req.Ambient)
	w.WriteHeader(http.StatusNoContent)
}

func (api *ApiRouter) MutePut(w http.ResponseWriter, r *http.Request) {
	var req muteRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}
	api.face.OnInterruptionFilterChanged(*req.Muted)
	w.WriteHeader(http.StatusNoContent)
}

func (api *ApiRouter) InsetsPut(w http.ResponseWriter, r *http.Request) {
	var req insetsRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}
	api.face.OnApplyWindowInsets(*req.Round)
	w.WriteHeader(http.StatusNoContent)
}

func (api *ApiRouter) TimezonePut(w http.ResponseWriter, r *http.Request) {
	var req timezoneRequest
	if !api.decodeAndValidate(w, r, &req) {
		return
	}
	location, err := time.LoadLocation(req.Timezone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	api.face.OnTimeZoneChanged(location)
	w.WriteHeader(http.StatusNoContent)
}

func (api *ApiRouter) TimeTickPost(w http.ResponseWriter, r *http.Request) {
	api.face.OnTimeTick()
	w.WriteHeader(http.StatusNoContent)
}

func (api *ApiRouter) TickPost(w http.ResponseWriter, r *http.Request) {
	api.face.TickNow()
	w.WriteHeader(http.StatusNoContent)
}

func (api *ApiRouter) FaceDataGet(w http.ResponseWriter, r *http.Request) {
	frame := api.face.surface.Current()
	if frame == nil {
		http.Error(w, "no frame rendered yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, frame.Data)
}

func (api *ApiRouter) trackCacheEvent(cacheHit bool, reason string) {
	e := appinsights.NewEventTelemetry("cache-hit")
	e.Properties["cache-hit"] = fmt.Sprintf("%t", cacheHit)
	e.Properties["reason"] = reason
	api.appInsightsClient.Track(e)
}

// msToNextTick tells pollers when the face will next change: the pending
// tick while interactive, otherwise the next minute boundary.
func (api *ApiRouter) msToNextTick(now time.Time) int64 {
	st := api.face.scheduler.State()
	if st.NextTick != nil {
		if d := st.NextTick.Sub(now); d > 0 {
			return d.Milliseconds()
		}
		return 0
	}
	return scheduler.NextDelay(now, time.Minute).Milliseconds()
}

func (api *ApiRouter) FaceImageGet(w http.ResponseWriter, r *http.Request, telemetry *appinsights.RequestTelemetry) {
	frame := api.face.surface.Current()
	if frame == nil {
		http.Error(w, "no frame rendered yet", http.StatusServiceUnavailable)
		return
	}

	msToNextTick := api.msToNextTick(api.clock.Now())
	telemetry.Properties["ms-to-next-tick"] = fmt.Sprintf("%d", msToNextTick)
	w.Header().Set("ms-to-next-tick", fmt.Sprintf("%d", msToNextTick))

	ifNoneMatch := r.Header.Get("If-None-Match")
	if ifNoneMatch != "" {
		telemetry.Properties["If-None-Match"] = ifNoneMatch

		if cached := api.face.surface.Lookup(ifNoneMatch); cached != nil {
			reason := data.SignificantChange(cached, frame.Data)
			if reason == "" {
				api.trackCacheEvent(true, "no-significant-change")
				w.Header().Set("Etag", ifNoneMatch)
				w.WriteHeader(http.StatusNotModified)
				return
			}
			api.log.Debugw("face_changed", "reason", reason)
			api.trackCacheEvent(false, reason)
			telemetry.Properties["cache-invalid"] = reason
		} else {
			api.trackCacheEvent(false, "no cached data")
		}
	}

	telemetry.Properties["Etag"] = frame.ETag
	w.Header().Set("Etag", frame.ETag)
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(frame.Image)
}
