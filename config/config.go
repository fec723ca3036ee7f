package config

import (
	"time"

	"github.com/spf13/viper"
)

var v = newViper()

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDRESS", ":8080")
	v.SetDefault("DATA_DIR", ".")
	v.SetDefault("WEATHER_SNAPSHOT_FILE", "weather-snapshot.json")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FACE_WIDTH", 320)
	v.SetDefault("FACE_HEIGHT", 320)
	v.SetDefault("FACE_ROUND", true)
	v.SetDefault("INTERACTIVE_UPDATE_RATE", "1s")
	v.SetDefault("MUTE_UPDATE_RATE", "1m")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("START_VISIBLE", true)
	v.SetDefault("OPENWEATHER_CITY", "London,GB")
	v.SetDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("HANDHELD_POLL_INTERVAL", "15m")
	return v
}

func GetListenAddress() string {
	return v.GetString("LISTEN_ADDRESS")
}

func GetDataDir() string {
	return v.GetString("DATA_DIR")
}

// GetWeatherSnapshotFile returns the snapshot file name. Relative names are
// resolved against DATA_DIR by the data package.
func GetWeatherSnapshotFile() string {
	return v.GetString("WEATHER_SNAPSHOT_FILE")
}

func GetApplicationInsightsInstrumentationKey() string {
	return v.GetString("APPLICATIONINSIGHTS_INSTRUMENTATION_KEY")
}

func GetLogLevel() string {
	return v.GetString("LOG_LEVEL")
}

// GetFaceSize returns the surface size in pixels.
func GetFaceSize() (width int, height int) {
	width = v.GetInt("FACE_WIDTH")
	height = v.GetInt("FACE_HEIGHT")
	if width <= 0 {
		width = 320
	}
	if height <= 0 {
		height = 320
	}
	return width, height
}

func GetFaceRound() bool {
	return v.GetBool("FACE_ROUND")
}

func GetIconDir() string {
	return v.GetString("ICON_DIR")
}

func GetInteractiveUpdateRate() time.Duration {
	return durationOrDefault("INTERACTIVE_UPDATE_RATE", 1*time.Second)
}

func GetMuteUpdateRate() time.Duration {
	return durationOrDefault("MUTE_UPDATE_RATE", 1*time.Minute)
}

// GetTimeZone falls back to the local zone when TIMEZONE can't be loaded.
func GetTimeZone() *time.Location {
	name := v.GetString("TIMEZONE")
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

func GetStartVisible() bool {
	return v.GetBool("START_VISIBLE")
}

func GetOpenWeatherAPIKey() string {
	return v.GetString("OPENWEATHER_API_KEY")
}

func GetOpenWeatherCity() string {
	return v.GetString("OPENWEATHER_CITY")
}

func GetOpenWeatherBaseURL() string {
	return v.GetString("OPENWEATHER_BASE_URL")
}

func GetHandheldPollInterval() time.Duration {
	return durationOrDefault("HANDHELD_POLL_INTERVAL", 15*time.Minute)
}

// viper's GetDuration returns 0 for unparseable values, which would spin the timers.
func durationOrDefault(key string, def time.Duration) time.Duration {
	d := v.GetDuration(key)
	if d <= 0 {
		return def
	}
	return d
}
