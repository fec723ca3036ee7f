package data

import (
	"fmt"
	"strconv"
	"time"
)

// DisplayState is what the host has told the face about the screen.
type DisplayState struct {
	Round   bool `json:"round"`
	Ambient bool `json:"ambient"`
}

// FaceData is everything one frame of the face shows.
type FaceData struct {
	HourString   string    `json:"hour"`
	MinuteString string    `json:"minute"`
	DayOfWeek    string    `json:"day_of_week"`
	DateString   string    `json:"date"`
	HighTemp     *string   `json:"high_temp"`
	LowTemp      *string   `json:"low_temp"`
	WeatherID    *int      `json:"weather_id"`
	Icon         Icon      `json:"icon"`
	Round        bool      `json:"round"`
	Ambient      bool      `json:"ambient"`
	GeneratedAt  time.Time `json:"generated_at"`
}

const (
	dayOfWeekFormat = "Monday"
	dateFormat      = "2 Jan 2006"
)

// NewFaceData formats now in loc and attaches the weather snapshot.
func NewFaceData(now time.Time, loc *time.Location, snapshot WeatherSnapshot, display DisplayState) *FaceData {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	return &FaceData{
		HourString:   strconv.Itoa(local.Hour()),
		MinuteString: fmt.Sprintf("%02d", local.Minute()),
		DayOfWeek:    local.Format(dayOfWeekFormat),
		DateString:   local.Format(dateFormat),
		HighTemp:     snapshot.HighTemp,
		LowTemp:      snapshot.LowTemp,
		WeatherID:    snapshot.ConditionCode,
		Icon:         snapshot.Icon(),
		Round:        display.Round,
		Ambient:      display.Ambient,
		GeneratedAt:  now.UTC(),
	}
}

func (f *FaceData) TimeString() string {
	return f.HourString + ":" + f.MinuteString
}

// SignificantChange returns why newData would look different from oldData,
// or "" when the two frames show the same thing.
func SignificantChange(oldData *FaceData, newData *FaceData) string {
	if oldData == nil {
		return "no previous frame"
	}
	if oldData.TimeString() != newData.TimeString() {
		return "time has changed"
	}
	if oldData.DateString != newData.DateString {
		return "date has changed"
	}
	if !equalOptional(oldData.HighTemp, newData.HighTemp) {
		return "high temperature has changed"
	}
	if !equalOptional(oldData.LowTemp, newData.LowTemp) {
		return "low temperature has changed"
	}
	if oldData.Icon != newData.Icon {
		return "icon has changed"
	}
	if oldData.Round != newData.Round {
		return "insets have changed"
	}
	if oldData.Ambient != newData.Ambient {
		return "ambient mode has changed"
	}
	return ""
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
