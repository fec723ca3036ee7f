package data

import (
	"testing"
	"time"
)

func TestNewFaceDataFormatting(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	now := time.Date(2017, 7, 3, 8, 5, 0, 0, time.UTC) // 09:05 BST

	snapshot := WeatherSnapshot{HighTemp: strPtr("25°"), ConditionCode: intPtr(801)}
	face := NewFaceData(now, london, snapshot, DisplayState{Round: true})

	if face.TimeString() != "9:05" {
		t.Errorf("TimeString() = %q, want 9:05", face.TimeString())
	}
	if face.DayOfWeek != "Monday" {
		t.Errorf("DayOfWeek = %q", face.DayOfWeek)
	}
	if face.DateString != "3 Jul 2017" {
		t.Errorf("DateString = %q", face.DateString)
	}
	if face.Icon != IconLightClouds {
		t.Errorf("Icon = %q", face.Icon)
	}
	if face.LowTemp != nil {
		t.Errorf("LowTemp = %q, want nil", *face.LowTemp)
	}
	if !face.Round {
		t.Error("Round not carried over")
	}
}

func TestSignificantChange(t *testing.T) {
	now := time.Date(2017, 1, 30, 9, 0, 0, 0, time.UTC)
	base := NewFaceData(now, time.UTC, WeatherSnapshot{HighTemp: strPtr("25°")}, DisplayState{})

	if reason := SignificantChange(nil, base); reason == "" {
		t.Error("nil previous frame should be significant")
	}

	sameMinute := NewFaceData(now.Add(30*time.Second), time.UTC, WeatherSnapshot{HighTemp: strPtr("25°")}, DisplayState{})
	if reason := SignificantChange(base, sameMinute); reason != "" {
		t.Errorf("same minute reported %q", reason)
	}

	cases := map[string]*FaceData{
		"time has changed":             NewFaceData(now.Add(time.Minute), time.UTC, WeatherSnapshot{HighTemp: strPtr("25°")}, DisplayState{}),
		"high temperature has changed": NewFaceData(now, time.UTC, WeatherSnapshot{HighTemp: strPtr("26°")}, DisplayState{}),
		"low temperature has changed":  NewFaceData(now, time.UTC, WeatherSnapshot{HighTemp: strPtr("25°"), LowTemp: strPtr("1°")}, DisplayState{}),
		"ambient mode has changed":     NewFaceData(now, time.UTC, WeatherSnapshot{HighTemp: strPtr("25°")}, DisplayState{Ambient: true}),
	}
	for want, next := range cases {
		if got := SignificantChange(base, next); got != want {
			t.Errorf("SignificantChange() = %q, want %q", got, want)
		}
	}
}
