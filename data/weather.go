package data

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/alardizabal/ud851-Sunshine/logger"
	"github.com/alardizabal/ud851-Sunshine/wearsync"
)

// WeatherPath is the only data item path the face reads.
const WeatherPath = "/weather"

// Keys of the weather data map.
const (
	KeyHighTemp  = "highTemp"
	KeyLowTemp   = "lowTemp"
	KeyWeatherID = "weatherId"
)

type ReportedAt time.Time

const reportedAtFormat = "2006-01-02T15:04:05"

func (r *ReportedAt) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid time format: %s", b)
	}
	t, err := time.Parse(reportedAtFormat, string(b[1:len(b)-1]))
	if err != nil {
		return err
	}
	*r = ReportedAt(t)
	return nil
}

func (r ReportedAt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(r).Format(reportedAtFormat) + `"`), nil
}

// WeatherSnapshot is the last weather received from the handheld. Each
// field is nil until a value for it arrives and is replaced independently.
type WeatherSnapshot struct {
	HighTemp      *string     `json:"high_temp"`
	LowTemp       *string     `json:"low_temp"`
	ConditionCode *int        `json:"condition_code"`
	UpdatedAt     *ReportedAt `json:"updated_at"`
}

// Icon classifies the condition code. No code yet means the fallback icon.
func (s WeatherSnapshot) Icon() Icon {
	if s.ConditionCode == nil {
		return ClassifyWeatherCondition(0)
	}
	return ClassifyWeatherCondition(*s.ConditionCode)
}

func (s WeatherSnapshot) IsEmpty() bool {
	return s.HighTemp == nil && s.LowTemp == nil && s.ConditionCode == nil
}

// WeatherUpdate carries the fields present in one payload; nil means "no update".
type WeatherUpdate struct {
	HighTemp      *string
	LowTemp       *string
	ConditionCode *int
}

// WeatherUpdateFromDataMap picks the weather keys out of m. Values of the
// wrong type are dropped, and a zero weatherId counts as absent.
func WeatherUpdateFromDataMap(m wearsync.DataMap) WeatherUpdate {
	var u WeatherUpdate
	if s, ok := m.GetString(KeyHighTemp); ok {
		u.HighTemp = &s
	}
	if s, ok := m.GetString(KeyLowTemp); ok {
		u.LowTemp = &s
	}
	if id, ok := m.GetInt(KeyWeatherID); ok && id != 0 {
		u.ConditionCode = &id
	}
	return u
}

func (u WeatherUpdate) IsEmpty() bool {
	return u.HighTemp == nil && u.LowTemp == nil && u.ConditionCode == nil
}

// WeatherStore holds the snapshot shared by the sync listener and the
// render path, optionally mirrored to a JSON file.
type WeatherStore struct {
	clock    clock.Clock
	log      *logger.Logger
	filename string

	mutex     sync.Mutex
	snapshot  WeatherSnapshot
	onUpdated func(WeatherSnapshot)
}

func NewWeatherStore(clk clock.Clock, log *logger.Logger) *WeatherStore {
	return &WeatherStore{clock: clk, log: log}
}

// LoadWeatherStore restores the last snapshot from filename. A missing
// file starts from an empty snapshot.
func LoadWeatherStore(filename string, clk clock.Clock, log *logger.Logger) (*WeatherStore, error) {
	store := NewWeatherStore(clk, log)
	store.filename = filename

	snapshot, err := JsonReadSharedLock[WeatherSnapshot](filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Infow("weather_snapshot_missing", "file", filename)
			return store, nil
		}
		return nil, fmt.Errorf("failed to load weather snapshot: %w", err)
	}
	store.snapshot = *snapshot
	return store, nil
}

// OnUpdated registers the hook run after a weather item has been applied.
func (s *WeatherStore) OnUpdated(fn func(WeatherSnapshot)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.onUpdated = fn
}

func (s *WeatherStore) Snapshot() WeatherSnapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.snapshot
}

// Apply overwrites the fields present in u and reports whether any changed.
func (s *WeatherStore) Apply(u WeatherUpdate) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	changed := false
	if u.HighTemp != nil && (s.snapshot.HighTemp == nil || *s.snapshot.HighTemp != *u.HighTemp) {
		v := *u.HighTemp
		s.snapshot.HighTemp = &v
		changed = true
	}
	if u.LowTemp != nil && (s.snapshot.LowTemp == nil || *s.snapshot.LowTemp != *u.LowTemp) {
		v := *u.LowTemp
		s.snapshot.LowTemp = &v
		changed = true
	}
	if u.ConditionCode != nil && (s.snapshot.ConditionCode == nil || *s.snapshot.ConditionCode != *u.ConditionCode) {
		v := *u.ConditionCode
		s.snapshot.ConditionCode = &v
		changed = true
	}
	if !changed {
		return false
	}

	updatedAt := ReportedAt(s.clock.Now().UTC())
	s.snapshot.UpdatedAt = &updatedAt
	s.persistLocked()
	return true
}

func (s *WeatherStore) persistLocked() {
	if s.filename == "" {
		return
	}
	snapshot := s.snapshot
	err := JsonUpdateExclusiveLock(s.filename, func(stored *WeatherSnapshot) error {
		*stored = snapshot
		return nil
	})
	if err != nil {
		s.log.Errorw("weather_snapshot_persist_failed", "file", s.filename, "err", err)
	}
}

// OnDataChanged implements wearsync.DataListener.
func (s *WeatherStore) OnDataChanged(events []wearsync.DataEvent) {
	for _, event := range events {
		if event.Item.Path != WeatherPath {
			s.log.Infow("weather_item_ignored", "path", event.Item.Path, "id", event.Item.ID)
			continue
		}
		if event.Type == wearsync.EventDeleted {
			s.log.Debugw("weather_item_deleted", "id", event.Item.ID)
			continue
		}

		update := WeatherUpdateFromDataMap(event.Item.Data)
		changed := s.Apply(update)
		s.log.Infow("weather_item_received",
			"id", event.Item.ID,
			"high_temp", update.HighTemp != nil,
			"low_temp", update.LowTemp != nil,
			"weather_id", update.ConditionCode != nil,
			"changed", changed,
		)

		s.mutex.Lock()
		onUpdated := s.onUpdated
		snapshot := s.snapshot
		s.mutex.Unlock()
		if onUpdated != nil {
			onUpdated(snapshot)
		}
	}
}
