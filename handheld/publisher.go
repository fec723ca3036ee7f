package handheld

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alardizabal/ud851-Sunshine/data"
	"github.com/alardizabal/ud851-Sunshine/logger"
	"github.com/alardizabal/ud851-Sunshine/wearsync"
	"github.com/go-co-op/gocron"
)

// Publisher periodically sends the current conditions as a /weather item.
type Publisher struct {
	client   *Client
	channel  *wearsync.Channel
	city     string
	interval time.Duration
	log      *logger.Logger
}

func NewPublisher(client *Client, channel *wearsync.Channel, city string, interval time.Duration, log *logger.Logger) *Publisher {
	if interval < time.Minute {
		interval = 15 * time.Minute
	}
	return &Publisher{
		client:   client,
		channel:  channel,
		city:     city,
		interval: interval,
		log:      log,
	}
}

// FormatTemperature renders a temperature the way the face shows it, e.g. "25°".
func FormatTemperature(celsius float64) string {
	v := math.Round(celsius)
	if v == 0 {
		v = 0 // no "-0°"
	}
	return fmt.Sprintf("%.0f°", v)
}

// PublishOnce fetches and delivers one weather item.
func (p *Publisher) PublishOnce(ctx context.Context) error {
	conditions, err := p.client.Current(ctx, p.city)
	if err != nil {
		return fmt.Errorf("failed to fetch weather for %s: %w", p.city, err)
	}

	event := wearsync.DataEvent{
		Type: wearsync.EventChanged,
		Item: wearsync.DataItem{
			Path: data.WeatherPath,
			Data: wearsync.DataMap{
				data.KeyHighTemp:  FormatTemperature(conditions.High),
				data.KeyLowTemp:   FormatTemperature(conditions.Low),
				data.KeyWeatherID: conditions.WeatherID,
			},
		},
	}
	if err := p.channel.Deliver([]wearsync.DataEvent{event}); err != nil {
		return fmt.Errorf("failed to deliver weather: %w", err)
	}
	p.log.Infow("handheld_weather_published", "city", p.city, "weather_id", conditions.WeatherID)
	return nil
}

// Register adds the publish job to jobs. The job runs once immediately.
func (p *Publisher) Register(jobs *gocron.Scheduler) error {
	minutes := int(p.interval / time.Minute)
	_, err := jobs.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := p.PublishOnce(ctx); err != nil {
			p.log.Warnw("handheld_publish_failed", "err", err)
		}
	})
	return err
}
