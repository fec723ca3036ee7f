package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alardizabal/ud851-Sunshine/data"
)

func testFaceData(ambient bool) *data.FaceData {
	high, low, id := "25°", "13°", 511
	snapshot := data.WeatherSnapshot{HighTemp: &high, LowTemp: &low, ConditionCode: &id}
	now := time.Date(2017, 1, 30, 9, 5, 0, 0, time.UTC)
	return data.NewFaceData(now, time.UTC, snapshot, data.DisplayState{Round: true, Ambient: ambient})
}

func TestDrawFaceBackground(t *testing.T) {
	cases := []struct {
		name    string
		ambient bool
		want    color.RGBA
	}{
		{"interactive", false, color.RGBA{0x1E, 0x88, 0xE5, 0xFF}},
		{"ambient", true, color.RGBA{0, 0, 0, 0xFF}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dc, err := drawFace(testFaceData(tc.ambient), faceOptions{Width: 200, Height: 180})
			if err != nil {
				t.Fatalf("drawFace() error = %v", err)
			}
			if dc.Width() != 200 || dc.Height() != 180 {
				t.Fatalf("size = %dx%d", dc.Width(), dc.Height())
			}
			got := color.RGBAModel.Convert(dc.Image().At(1, 1)).(color.RGBA)
			if got != tc.want {
				t.Errorf("corner pixel = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDrawFaceWithoutWeather(t *testing.T) {
	faceData := data.NewFaceData(time.Now(), time.UTC, data.WeatherSnapshot{}, data.DisplayState{})
	if _, err := drawFace(faceData, faceOptions{Width: 160, Height: 160}); err != nil {
		t.Fatalf("drawFace() error = %v", err)
	}
}

func TestDrawFaceAllGlyphs(t *testing.T) {
	icons := []data.Icon{
		data.IconStorm, data.IconLightRain, data.IconRain, data.IconSnow,
		data.IconFog, data.IconClear, data.IconLightClouds, data.IconCloudy,
	}
	for _, icon := range icons {
		faceData := testFaceData(false)
		faceData.Icon = icon
		if _, err := drawFace(faceData, faceOptions{Width: 120, Height: 120}); err != nil {
			t.Errorf("%s: drawFace() error = %v", icon, err)
		}
	}
}

func writeTestPng(t *testing.T, dir string, name string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAndResizePngDarkens(t *testing.T) {
	dir := t.TempDir()
	writeTestPng(t, dir, "ic_snow.png", color.RGBA{200, 100, 50, 255})

	img, err := loadAndResizePng(filepath.Join(dir, "ic_snow.png"), 16, 16, 0.5)
	if err != nil {
		t.Fatalf("loadAndResizePng() error = %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Fatalf("width = %d", img.Bounds().Dx())
	}
	got := img.RGBAAt(8, 8)
	near := func(a, b uint8) bool { return a+1 >= b && b+1 >= a }
	if !near(got.R, 100) || !near(got.G, 50) || !near(got.B, 25) {
		t.Errorf("pixel = %v, want about {100 50 25}", got)
	}
}

func TestDrawFaceIconDir(t *testing.T) {
	dir := t.TempDir()
	writeTestPng(t, dir, data.IconSnow.FileName(), color.RGBA{255, 0, 0, 255})

	if _, err := drawFace(testFaceData(false), faceOptions{Width: 160, Height: 160, IconDir: dir}); err != nil {
		t.Fatalf("drawFace() error = %v", err)
	}

	// no ic_fog.png in dir: the frame still renders, with the fog glyph
	faceData := testFaceData(false)
	faceData.Icon = data.IconFog
	withDir, err := drawFace(faceData, faceOptions{Width: 160, Height: 160, IconDir: dir})
	if err != nil {
		t.Fatalf("drawFace() with missing icon file error = %v", err)
	}
	glyph, err := drawFace(faceData, faceOptions{Width: 160, Height: 160})
	if err != nil {
		t.Fatalf("drawFace() error = %v", err)
	}
	if !bytes.Equal(withDir.Image().(*image.RGBA).Pix, glyph.Image().(*image.RGBA).Pix) {
		t.Error("missing icon file should fall back to the glyph")
	}
}
