package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path"
	"sync"

	"github.com/alardizabal/ud851-Sunshine/data"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	colonString = ":"

	interactiveBackground = "#1E88E5"
	ambientBackground     = "#000000"
	textColor             = "#FFFFFF"

	// text sizes for a 320px face, scaled to the surface width
	digitalTextSize      = 40
	digitalTextSizeRound = 45
	referenceWidth       = 320
)

var (
	fontsOnce   sync.Once
	fontsErr    error
	regularFont *truetype.Font
	boldFont    *truetype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regularFont, fontsErr = truetype.Parse(goregular.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("failed to parse regular font: %w", fontsErr)
			return
		}
		boldFont, fontsErr = truetype.Parse(gobold.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("failed to parse bold font: %w", fontsErr)
		}
	})
	return fontsErr
}

func fontFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

type faceOptions struct {
	Width   int
	Height  int
	IconDir string
}

func drawFace(faceData *data.FaceData, opts faceOptions) (*gg.Context, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}

	width := float64(opts.Width)
	height := float64(opts.Height)

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	dc := gg.NewContextForRGBA(img)

	background := interactiveBackground
	if faceData.Ambient {
		background = ambientBackground
	}
	dc.SetHexColor(background)
	dc.DrawRectangle(0, 0, width, height)
	dc.Fill()

	textSize := float64(digitalTextSize)
	if faceData.Round {
		textSize = digitalTextSizeRound
	}
	textSize *= width / referenceWidth

	dc.SetHexColor(textColor)
	drawTime(dc, faceData, textSize, width/2, height/3)
	drawDate(dc, faceData, textSize*0.4, width/2, height/3+textSize*0.7)
	drawTemperatures(dc, faceData, textSize*0.8, width, height/1.75)

	iconSize := int(width / 5)
	drawIcon(dc, faceData, opts.IconDir, iconSize, width/2, height*2/3)
	return dc, nil
}

// drawTime centres "H:MM" on x with its baseline at y.
func drawTime(dc *gg.Context, faceData *data.FaceData, size float64, x, y float64) {
	bold := fontFace(boldFont, size)
	regular := fontFace(regularFont, size)

	dc.SetFontFace(bold)
	hourWidth, _ := dc.MeasureString(faceData.HourString)
	minuteWidth, _ := dc.MeasureString(faceData.MinuteString)
	dc.SetFontFace(regular)
	colonWidth, _ := dc.MeasureString(colonString)

	left := x - (hourWidth+colonWidth+minuteWidth)/2

	dc.SetFontFace(bold)
	dc.DrawString(faceData.HourString, left, y)
	left += hourWidth

	dc.SetFontFace(regular)
	dc.DrawString(colonString, left, y)
	left += colonWidth

	dc.SetFontFace(bold)
	dc.DrawString(faceData.MinuteString, left, y)
}

func drawDate(dc *gg.Context, faceData *data.FaceData, size float64, x, y float64) {
	dc.SetFontFace(fontFace(regularFont, size))
	text := fmt.Sprintf("%s, %s", faceData.DayOfWeek, faceData.DateString)
	w, _ := dc.MeasureString(text)
	dc.DrawString(text, x-w/2, y)
}

// drawTemperatures puts the high at a quarter and the low at three quarters
// of the width. Temperatures never received are left out.
func drawTemperatures(dc *gg.Context, faceData *data.FaceData, size float64, width, y float64) {
	if faceData.HighTemp != nil {
		dc.SetFontFace(fontFace(boldFont, size))
		w, _ := dc.MeasureString(*faceData.HighTemp)
		dc.DrawString(*faceData.HighTemp, width/4-w/2, y)
	}
	if faceData.LowTemp != nil {
		dc.SetFontFace(fontFace(regularFont, size))
		w, _ := dc.MeasureString(*faceData.LowTemp)
		dc.DrawString(*faceData.LowTemp, width*3/4-w/2, y)
	}
}

// drawIcon draws the weather icon centred on x with its top edge at top.
// An icon file that can't be loaded falls back to the vector glyph.
func drawIcon(dc *gg.Context, faceData *data.FaceData, iconDir string, size int, x, top float64) {
	darkenFactor := 1.0
	if faceData.Ambient {
		darkenFactor = 0.6
	}

	if iconDir != "" {
		iconPath := path.Join(iconDir, faceData.Icon.FileName())
		if icon, err := loadAndResizePng(iconPath, size, size, darkenFactor); err == nil {
			dc.DrawImage(icon, int(x)-size/2, int(top))
			return
		}
	}

	drawIconGlyph(dc, faceData.Icon, x, top+float64(size)/2, float64(size), faceData.Ambient)
}

func loadAndResizePng(imagePath string, width int, height int, darkenFactor float64) (*image.RGBA, error) {
	imageFile, err := os.Open(imagePath)
	if err != nil {
		return nil, err
	}
	defer imageFile.Close()

	sourceImage, err := png.Decode(imageFile)
	if err != nil {
		return nil, err
	}

	destImage := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(destImage, destImage.Rect, sourceImage, sourceImage.Bounds(), draw.Over, nil)

	if darkenFactor != 1 {
		bounds := destImage.Bounds()
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
				r, g, b, a := destImage.At(x, y).RGBA()
				destImage.Set(x, y, color.RGBA{
					R: uint8(float64(r>>8) * darkenFactor),
					G: uint8(float64(g>>8) * darkenFactor),
					B: uint8(float64(b>>8) * darkenFactor),
					A: uint8(a >> 8),
				})
			}
		}
	}
	return destImage, nil
}

type glyphPalette struct {
	sun   string
	cloud string
	rain  string
	snow  string
	bolt  string
	fog   string
}

var (
	interactivePalette = glyphPalette{sun: "#FFD54F", cloud: "#ECEFF1", rain: "#B3E5FC", snow: "#FFFFFF", bolt: "#FFEB3B", fog: "#CFD8DC"}
	ambientPalette     = glyphPalette{sun: "#9E9E9E", cloud: "#9E9E9E", rain: "#9E9E9E", snow: "#9E9E9E", bolt: "#9E9E9E", fog: "#9E9E9E"}
)

// drawIconGlyph draws a vector version of icon centred on (cx, cy).
func drawIconGlyph(dc *gg.Context, icon data.Icon, cx, cy, size float64, ambient bool) {
	palette := interactivePalette
	if ambient {
		palette = ambientPalette
	}
	r := size / 2

	switch icon {
	case data.IconClear:
		drawSun(dc, palette, cx, cy, r*0.5)
	case data.IconLightClouds:
		drawSun(dc, palette, cx+r*0.3, cy-r*0.3, r*0.35)
		drawCloud(dc, palette, cx-r*0.1, cy+r*0.15, r*0.8)
	case data.IconCloudy:
		drawCloud(dc, palette, cx, cy, r)
	case data.IconFog:
		dc.SetHexColor(palette.fog)
		dc.SetLineWidth(size / 14)
		for i := -1; i <= 1; i++ {
			y := cy + float64(i)*r*0.45
			dc.DrawLine(cx-r*0.8, y, cx+r*0.8, y)
		}
		dc.Stroke()
	case data.IconLightRain:
		drawCloud(dc, palette, cx, cy-r*0.25, r*0.85)
		drawDrops(dc, palette, cx, cy+r*0.45, r, 2)
	case data.IconRain:
		drawCloud(dc, palette, cx, cy-r*0.25, r*0.85)
		drawDrops(dc, palette, cx, cy+r*0.45, r, 4)
	case data.IconSnow:
		drawCloud(dc, palette, cx, cy-r*0.25, r*0.85)
		dc.SetHexColor(palette.snow)
		for i := -1; i <= 1; i++ {
			dc.DrawCircle(cx+float64(i)*r*0.4, cy+r*0.55, r*0.09)
		}
		dc.Fill()
	default:
		drawCloud(dc, palette, cx, cy-r*0.25, r*0.85)
		drawBolt(dc, palette, cx, cy+r*0.1, r)
	}
}

func drawSun(dc *gg.Context, palette glyphPalette, cx, cy, r float64) {
	dc.SetHexColor(palette.sun)
	dc.DrawCircle(cx, cy, r)
	dc.Fill()
	dc.SetLineWidth(r / 4)
	for i := 0; i < 8; i++ {
		angle := float64(i) * math.Pi / 4
		dc.DrawLine(cx+math.Cos(angle)*r*1.3, cy+math.Sin(angle)*r*1.3, cx+math.Cos(angle)*r*1.7, cy+math.Sin(angle)*r*1.7)
	}
	dc.Stroke()
}

func drawCloud(dc *gg.Context, palette glyphPalette, cx, cy, r float64) {
	dc.SetHexColor(palette.cloud)
	dc.DrawCircle(cx-r*0.45, cy+r*0.1, r*0.35)
	dc.DrawCircle(cx, cy-r*0.1, r*0.5)
	dc.DrawCircle(cx+r*0.45, cy+r*0.1, r*0.35)
	dc.DrawRoundedRectangle(cx-r*0.8, cy+r*0.05, r*1.6, r*0.4, r*0.2)
	dc.Fill()
}

func drawDrops(dc *gg.Context, palette glyphPalette, cx, cy, r float64, n int) {
	dc.SetHexColor(palette.rain)
	dc.SetLineWidth(r / 10)
	spacing := r * 1.2 / float64(n)
	start := cx - spacing*float64(n-1)/2
	for i := 0; i < n; i++ {
		x := start + float64(i)*spacing
		dc.DrawLine(x, cy-r*0.15, x-r*0.1, cy+r*0.15)
	}
	dc.Stroke()
}

func drawBolt(dc *gg.Context, palette glyphPalette, cx, cy, r float64) {
	dc.SetHexColor(palette.bolt)
	dc.MoveTo(cx+r*0.05, cy)
	dc.LineTo(cx-r*0.25, cy+r*0.45)
	dc.LineTo(cx-r*0.02, cy+r*0.45)
	dc.LineTo(cx-r*0.15, cy+r*0.85)
	dc.LineTo(cx+r*0.25, cy+r*0.3)
	dc.LineTo(cx+r*0.02, cy+r*0.3)
	dc.ClosePath()
	dc.Fill()
}
