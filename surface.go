package main

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"image/jpeg"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/alardizabal/ud851-Sunshine/data"
	"github.com/alardizabal/ud851-Sunshine/logger"
)

// Frame is one rendered face image.
type Frame struct {
	ETag  string
	Image []byte
	Data  *data.FaceData
}

// FrameNotice is pushed to stream subscribers after each redraw.
type FrameNotice struct {
	ETag        string    `json:"etag"`
	Time        string    `json:"time"`
	Icon        data.Icon `json:"icon"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Surface is the face's canvas: it repaints on Redraw and keeps the last
// encoded frame for readers.
type Surface struct {
	options faceOptions
	store   *data.WeatherStore
	log     *logger.Logger
	frames  *data.Cache[string, data.FaceData]

	mutex       sync.RWMutex
	display     data.DisplayState
	location    *time.Location
	frame       *Frame
	subscribers map[chan FrameNotice]struct{}
}

func NewSurface(clk clock.Clock, options faceOptions, store *data.WeatherStore, round bool, location *time.Location, log *logger.Logger) *Surface {
	return &Surface{
		options:     options,
		store:       store,
		log:         log,
		frames:      data.NewCache[string, data.FaceData](clk, 10*time.Minute),
		display:     data.DisplayState{Round: round},
		location:    location,
		subscribers: make(map[chan FrameNotice]struct{}),
	}
}

func (s *Surface) SetRound(round bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.display.Round = round
}

func (s *Surface) SetAmbient(ambient bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.display.Ambient = ambient
}

// SetLocation resets the zone the time and date formats use.
func (s *Surface) SetLocation(location *time.Location) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.location = location
}

func (s *Surface) Display() data.DisplayState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.display
}

func (s *Surface) Location() *time.Location {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.location
}

// Redraw paints the face for now. It is the scheduler's redraw callback.
func (s *Surface) Redraw(now time.Time) {
	s.mutex.RLock()
	display := s.display
	location := s.location
	s.mutex.RUnlock()

	faceData := data.NewFaceData(now, location, s.store.Snapshot(), display)
	frame, err := s.render(faceData)
	if err != nil {
		s.log.Errorw("face_render_failed", "err", err)
		return
	}
	s.frames.Set(frame.ETag, faceData)

	s.mutex.Lock()
	s.frame = frame
	notice := FrameNotice{
		ETag:        frame.ETag,
		Time:        faceData.TimeString(),
		Icon:        faceData.Icon,
		GeneratedAt: faceData.GeneratedAt,
	}
	for ch := range s.subscribers {
		select {
		case ch <- notice:
		default:
			// slow subscriber, it will pick up the next frame
		}
	}
	s.mutex.Unlock()
}

func (s *Surface) render(faceData *data.FaceData) (*Frame, error) {
	dc, err := drawFace(faceData, s.options)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := dc.EncodeJPG(buf, &jpeg.Options{Quality: 100}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	bufBytes := buf.Bytes()

	hash := sha1.New()
	hash.Write(bufBytes)

	return &Frame{
		ETag:  fmt.Sprintf("%x", hash.Sum(nil)),
		Image: bufBytes,
		Data:  faceData,
	}, nil
}

// Current returns the last rendered frame, nil before the first redraw.
func (s *Surface) Current() *Frame {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.frame
}

// Lookup returns the face data of a recently rendered frame.
func (s *Surface) Lookup(etag string) *data.FaceData {
	return s.frames.Get(etag)
}

// Subscribe registers for frame notices. Call the returned func to stop.
func (s *Surface) Subscribe() (<-chan FrameNotice, func()) {
	ch := make(chan FrameNotice, 1)

	s.mutex.Lock()
	s.subscribers[ch] = struct{}{}
	s.mutex.Unlock()

	return ch, func() {
		s.mutex.Lock()
		delete(s.subscribers, ch)
		s.mutex.Unlock()
	}
}
