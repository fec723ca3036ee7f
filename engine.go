package main

import (
	"fmt"
	"time"

	"github.com/alardizabal/ud851-Sunshine/data"
	"github.com/alardizabal/ud851-Sunshine/logger"
	"github.com/alardizabal/ud851-Sunshine/scheduler"
	"github.com/alardizabal/ud851-Sunshine/wearsync"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
)

// watchFace receives the host's lifecycle signals and routes them to the
// scheduler, the sync channel and the surface.
type watchFace struct {
	scheduler *scheduler.Scheduler
	channel   *wearsync.Channel
	store     *data.WeatherStore
	surface   *Surface
	telemetry appinsights.TelemetryClient
	log       *logger.Logger
}

func newWatchFace(sched *scheduler.Scheduler, channel *wearsync.Channel, store *data.WeatherStore, surface *Surface, telemetry appinsights.TelemetryClient, log *logger.Logger) *watchFace {
	face := &watchFace{
		scheduler: sched,
		channel:   channel,
		store:     store,
		surface:   surface,
		telemetry: telemetry,
		log:       log,
	}
	channel.AddListener(store)
	store.OnUpdated(face.OnWeatherUpdated)
	return face
}

// OnVisibilityChanged connects the sync channel while the face is shown.
func (f *watchFace) OnVisibilityChanged(visible bool) {
	if visible {
		f.channel.Connect()
	} else {
		f.channel.Disconnect()
	}
	f.scheduler.SetVisible(visible)
	f.trackSignal("visibility", visible)
}

func (f *watchFace) OnAmbientModeChanged(ambient bool) {
	f.surface.SetAmbient(ambient)
	f.scheduler.SetAmbient(ambient)
	f.trackSignal("ambient", ambient)
}

// OnInterruptionFilterChanged switches to the mute update rate.
func (f *watchFace) OnInterruptionFilterChanged(muted bool) {
	f.scheduler.SetMuted(muted)
	f.trackSignal("mute", muted)
}

func (f *watchFace) OnApplyWindowInsets(round bool) {
	f.log.Debugw("apply_window_insets", "round", round)
	f.surface.SetRound(round)
	f.scheduler.Invalidate()
}

func (f *watchFace) OnTimeZoneChanged(location *time.Location) {
	f.surface.SetLocation(location)
	f.scheduler.Invalidate()
	f.trackSignal("timezone", location.String())
}

func (f *watchFace) OnTimeTick() {
	f.scheduler.Invalidate()
}

// TickNow redraws immediately; ticks re-arm only while visible and interactive.
func (f *watchFace) TickNow() {
	f.scheduler.TickNow()
}

func (f *watchFace) OnWeatherUpdated(snapshot data.WeatherSnapshot) {
	event := appinsights.NewEventTelemetry("weather-updated")
	event.Properties["icon"] = string(snapshot.Icon())
	if snapshot.ConditionCode != nil {
		event.Properties["weather-id"] = fmt.Sprintf("%d", *snapshot.ConditionCode)
	}
	f.telemetry.Track(event)

	f.scheduler.Invalidate()
}

func (f *watchFace) trackSignal(name string, value any) {
	event := appinsights.NewEventTelemetry("host-signal")
	event.Properties["signal"] = name
	event.Properties["value"] = fmt.Sprintf("%v", value)
	f.telemetry.Track(event)
}

// Destroy disconnects the sync channel. The scheduler must already have
// stopped so no tick fires into a torn-down surface.
func (f *watchFace) Destroy() {
	f.channel.RemoveListener(f.store)
	f.channel.Disconnect()
}
