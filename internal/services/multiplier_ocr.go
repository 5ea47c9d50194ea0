package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/codyseavey/aviator-overlay/backend/internal/metrics"
	"github.com/codyseavey/aviator-overlay/backend/internal/models"
)

// ErrInvalidFrame is returned when frame bytes cannot be decoded as an image
var ErrInvalidFrame = errors.New("invalid frame")

// multiplierPattern matches a number followed by an "x" suffix, e.g. "2.35x" or "10 x"
var multiplierPattern = regexp.MustCompile(`(?i)(\d[\d.]*)\s*x`)

const multiplierCharWhitelist = "0123456789.x"

// MultiplierOCRService reads multiplier values from captured frames using Tesseract
type MultiplierOCRService struct {
	tesseractPath string
	language      string
}

// NewMultiplierOCRService creates a recognizer. An empty path looks tesseract up in PATH.
func NewMultiplierOCRService(tesseractPath, language string) *MultiplierOCRService {
	if tesseractPath == "" {
		path, err := exec.LookPath("tesseract")
		if err != nil {
			path = "tesseract" // Will fail at runtime if not found
		}
		tesseractPath = path
	}
	if language == "" {
		language = "eng"
	}

	return &MultiplierOCRService{
		tesseractPath: tesseractPath,
		language:      language,
	}
}

// IsAvailable checks if Tesseract is available on the system
func (s *MultiplierOCRService) IsAvailable(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, s.tesseractPath, "--version")
	return cmd.Run() == nil
}

// Init verifies the recognizer can run
func (s *MultiplierOCRService) Init(ctx context.Context) error {
	if !s.IsAvailable(ctx) {
		return fmt.Errorf("tesseract not available at %q", s.tesseractPath)
	}
	return nil
}

// Recognize extracts the highest multiplier visible in frame. When area is non-nil the frame is
// cropped to it first. The bool result is false when no multiplier was found.
func (s *MultiplierOCRService) Recognize(ctx context.Context, frame []byte, area *models.CaptureArea) (float64, bool, error) {
	start := time.Now()
	defer func() {
		metrics.OCRProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	if area != nil {
		b := img.Bounds()
		img = cropImage(img, b.Min.X+area.X, b.Min.Y+area.Y, b.Min.X+area.X+area.Width, b.Min.Y+area.Y+area.Height)
		if img.Bounds().Empty() {
			return 0, false, fmt.Errorf("%w: capture area outside frame", ErrInvalidFrame)
		}
	}

	processed := encodeImagePNG(binarizeImage(enhanceContrast(toGray(img))))

	text, err := s.runTesseract(ctx, processed)
	if err != nil {
		return 0, false, err
	}

	values := ParseMultipliers(text)
	debugLog("OCR: text=%q values=%v", strings.TrimSpace(text), values)
	if len(values) == 0 {
		return 0, false, nil
	}

	highest := values[0]
	for _, v := range values[1:] {
		if v > highest {
			highest = v
		}
	}
	return highest, true, nil
}

// runTesseract recognizes a single line of multiplier text from PNG data
func (s *MultiplierOCRService) runTesseract(ctx context.Context, imageData []byte) (string, error) {
	cmd := exec.CommandContext(ctx,
		s.tesseractPath,
		"stdin",
		"stdout",
		"-l", s.language,
		"--psm", "7", // Treat the image as a single text line
		"--oem", "3",
		"-c", "tessedit_char_whitelist="+multiplierCharWhitelist,
	)

	cmd.Stdin = bytes.NewReader(imageData)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract error: %w - %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// ParseMultipliers returns every multiplier found in OCR text, in order of appearance.
// A number with several dots is read up to its second dot ("1.2.3x" reads as 1.2).
func ParseMultipliers(text string) []float64 {
	var values []float64
	for _, m := range multiplierPattern.FindAllStringSubmatch(text, -1) {
		if v, ok := parseLeadingFloat(m[1]); ok {
			values = append(values, v)
		}
	}
	return values
}

func parseLeadingFloat(s string) (float64, bool) {
	if first := strings.IndexByte(s, '.'); first >= 0 {
		if second := strings.IndexByte(s[first+1:], '.'); second >= 0 {
			s = s[:first+1+second]
		}
	}
	s = strings.TrimSuffix(s, ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cropImage extracts the rectangle (x1,y1)-(x2,y2), clamped to the image bounds
func cropImage(img image.Image, x1, y1, x2, y2 int) image.Image {
	bounds := img.Bounds()

	// Clamp to image bounds
	x1 = max(x1, bounds.Min.X)
	y1 = max(y1, bounds.Min.Y)
	x2 = min(x2, bounds.Max.X)
	y2 = min(y2, bounds.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return image.NewRGBA(image.Rectangle{})
	}

	rect := image.Rect(0, 0, x2-x1, y2-y1)
	cropped := image.NewRGBA(rect)
	draw.Draw(cropped, rect, img, image.Point{X: x1, Y: y1}, draw.Src)
	return cropped
}

// toGray converts to grayscale with the luminosity formula
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := uint8((0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 256)
			gray.SetGray(x, y, color.Gray{Y: lum})
		}
	}
	return gray
}

// enhanceContrast stretches the 1st..99th percentile range to the full 0..255 scale
func enhanceContrast(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	histogram := grayHistogram(gray)

	threshold := bounds.Dx() * bounds.Dy() / 100
	minVal, maxVal := 0, 255

	count := 0
	for i := 0; i < 256; i++ {
		count += histogram[i]
		if count >= threshold {
			minVal = i
			break
		}
	}

	count = 0
	for i := 255; i >= 0; i-- {
		count += histogram[i]
		if count >= threshold {
			maxVal = i
			break
		}
	}

	enhanced := image.NewGray(bounds)
	if maxVal <= minVal {
		draw.Draw(enhanced, bounds, gray, bounds.Min, draw.Src)
		return enhanced
	}

	scale := 255.0 / float64(maxVal-minVal)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := int(float64(int(gray.GrayAt(x, y).Y)-minVal) * scale)
			enhanced.SetGray(x, y, color.Gray{Y: uint8(min(max(v, 0), 255))})
		}
	}
	return enhanced
}

// binarizeImage thresholds with Otsu's method
func binarizeImage(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	threshold := otsuThreshold(grayHistogram(gray), bounds.Dx()*bounds.Dy())

	binary := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if gray.GrayAt(x, y).Y > threshold {
				binary.SetGray(x, y, color.Gray{Y: 255})
			} else {
				binary.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return binary
}

func grayHistogram(gray *image.Gray) []int {
	bounds := gray.Bounds()
	histogram := make([]int, 256)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			histogram[gray.GrayAt(x, y).Y]++
		}
	}
	return histogram
}

func otsuThreshold(histogram []int, totalPixels int) uint8 {
	var sum float64
	for i := 0; i < 256; i++ {
		sum += float64(i * histogram[i])
	}

	var sumB float64
	var wB, wF int
	var maxVariance float64
	var threshold uint8

	for t := 0; t < 256; t++ {
		wB += histogram[t]
		if wB == 0 {
			continue
		}
		wF = totalPixels - wB
		if wF == 0 {
			break
		}

		sumB += float64(t * histogram[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)

		variance := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if variance > maxVariance {
			maxVariance = variance
			threshold = uint8(t)
		}
	}

	return threshold
}

func encodeImagePNG(img image.Image) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
