package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	if got := GetListenAddress(); got != ":8080" {
		t.Errorf("GetListenAddress() = %q, want :8080", got)
	}
	if got := GetInteractiveUpdateRate(); got != time.Second {
		t.Errorf("GetInteractiveUpdateRate() = %v, want 1s", got)
	}
	if got := GetMuteUpdateRate(); got != time.Minute {
		t.Errorf("GetMuteUpdateRate() = %v, want 1m", got)
	}
	if got := GetWeatherSnapshotFile(); got != "weather-snapshot.json" {
		t.Errorf("GetWeatherSnapshotFile() = %q, want weather-snapshot.json", got)
	}
	w, h := GetFaceSize()
	if w != 320 || h != 320 {
		t.Errorf("GetFaceSize() = %dx%d, want 320x320", w, h)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("INTERACTIVE_UPDATE_RATE", "500ms")
	t.Setenv("DATA_DIR", "/var/lib/face")
	t.Setenv("FACE_WIDTH", "454")

	if got := GetInteractiveUpdateRate(); got != 500*time.Millisecond {
		t.Errorf("GetInteractiveUpdateRate() = %v, want 500ms", got)
	}
	if got := GetDataDir(); got != "/var/lib/face" {
		t.Errorf("GetDataDir() = %q", got)
	}
	if w, _ := GetFaceSize(); w != 454 {
		t.Errorf("face width = %d, want 454", w)
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("MUTE_UPDATE_RATE", "bogus")
	if got := GetMuteUpdateRate(); got != time.Minute {
		t.Errorf("GetMuteUpdateRate() = %v, want 1m", got)
	}
}

func TestTimeZone(t *testing.T) {
	t.Setenv("TIMEZONE", "Europe/London")
	if got := GetTimeZone().String(); got != "Europe/London" {
		t.Errorf("GetTimeZone() = %q", got)
	}

	t.Setenv("TIMEZONE", "Not/AZone")
	if got := GetTimeZone(); got != time.Local {
		t.Errorf("GetTimeZone() = %v, want Local", got)
	}
}
