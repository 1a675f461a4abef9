package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"boxmgr/internal/model"
)

// SettingVisionAPIKey is the settings-table key holding the Anthropic
// API key, managed through the settings endpoint like any other setting.
const SettingVisionAPIKey = "anthropic_api_key"

// maxScanDimension bounds the longest image edge sent to the vision
// model; larger captures are downscaled first to cut upload size.
const maxScanDimension = 1568

type SettingStore interface {
	List(ctx context.Context) ([]model.Setting, error)
	GetValue(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, description string) error
}

type VisionClient interface {
	DetectItems(ctx context.Context, apiKey string, imageJPEG []byte) ([]string, error)
}

// ScanService runs the "scan box" flow: decode the captured photo, ask
// the vision model what is in it, and file the detected items into the
// box in one transaction.
type ScanService struct {
	boxes    BoxStore
	items    ItemStore
	settings SettingStore
	vision   VisionClient
}

func NewScanService(boxes BoxStore, items ItemStore, settings SettingStore, vision VisionClient) *ScanService {
	return &ScanService{boxes: boxes, items: items, settings: settings, vision: vision}
}

// Scan accepts a data-URL image, returns the item names newly added to
// the box.
func (s *ScanService) Scan(ctx context.Context, boxID int64, dataURL string) ([]string, error) {
	exists, err := s.boxes.Exists(ctx, boxID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrBoxNotFound
	}

	raw, err := decodeImageDataURL(dataURL)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeScanImage(raw)
	if err != nil {
		return nil, err
	}

	apiKey, err := s.settings.GetValue(ctx, SettingVisionAPIKey)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, model.ErrVisionKeyMissing
	}

	names, err := s.vision.DetectItems(ctx, apiKey, normalized)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, model.ErrNoItemsDetected
	}

	added, err := s.items.AddNamesToBox(ctx, boxID, names)
	if err != nil {
		return nil, err
	}

	slog.Info("box scan completed", "box_id", boxID, "detected", len(names), "added", len(added))
	return added, nil
}

// decodeImageDataURL extracts the raw bytes from a
// data:image/...;base64,... URL as produced by the capture UI.
func decodeImageDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return nil, model.ErrInvalidImage
	}

	_, encoded, found := strings.Cut(dataURL, ",")
	if !found || encoded == "" {
		return nil, model.ErrInvalidImage
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, model.ErrInvalidImage
	}

	return raw, nil
}

// normalizeScanImage re-encodes the capture as JPEG, downscaling it
// when the longest edge exceeds maxScanDimension.
func normalizeScanImage(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, model.ErrInvalidImage
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > maxScanDimension || height > maxScanDimension {
		scale := float64(maxScanDimension) / float64(max(width, height))
		targetWidth := int(float64(width) * scale)
		targetHeight := int(float64(height) * scale)

		dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
