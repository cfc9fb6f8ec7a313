package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"shipits/internal/config"
	"shipits/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultUploadDir = "./uploads"

	// MaxUploadBytes caps project media uploads.
	MaxUploadBytes = 800 * 1024

	// MediaMaxDimension is the longest edge after downscaling.
	MediaMaxDimension = 1200

	mediaWebPQuality = 75
)

type UploadMediaInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// UploadedMedia describes a stored media file.
type UploadedMedia struct {
	Hash   string `json:"hash"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int64  `json:"bytes"`
}

// MediaService validates, normalizes, and stores project media. Every upload
// is re-encoded to WebP under a content-addressed path, so re-uploading the
// same file is a no-op.
type MediaService struct {
	uploadDir string
}

func NewMediaService(cfg *config.Config) *MediaService {
	uploadDir := DefaultUploadDir
	if cfg != nil && cfg.UploadDir != "" {
		uploadDir = cfg.UploadDir
	}
	return &MediaService{uploadDir: uploadDir}
}

func (s *MediaService) Upload(_ context.Context, in UploadMediaInput) (*UploadedMedia, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > MaxUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dKB)", MaxUploadBytes/1024))
	}

	detectedType := http.DetectContentType(in.Content)
	if !allowedMediaMIME(detectedType) {
		return nil, models.NewValidationError("Only JPEG, PNG, and WebP images are accepted")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !allowedMediaMIME(provided) {
		return nil, models.NewValidationError("Only JPEG, PNG, and WebP images are accepted")
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	normalized := downscale(decoded, MediaMaxDimension)
	encoded, err := encodeWebP(normalized, mediaWebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	hash := contentHash(encoded)
	rel := hash + ".webp"
	if err := writeBytesToFile(filepath.Join(s.uploadDir, rel), encoded); err != nil {
		return nil, models.NewInternalError(err)
	}

	b := normalized.Bounds()
	return &UploadedMedia{
		Hash:   hash,
		URL:    s.MediaURL(hash),
		Width:  b.Dx(),
		Height: b.Dy(),
		Bytes:  int64(len(encoded)),
	}, nil
}

// Resolve maps a media hash to its on-disk path for serving.
func (s *MediaService) Resolve(hash string) (string, error) {
	if !validMediaHash(hash) {
		return "", models.NewValidationError("Invalid media hash")
	}
	path := filepath.Join(s.uploadDir, hash+".webp")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", models.NewNotFoundError("Media", hash)
		}
		return "", models.NewInternalError(err)
	}
	return path, nil
}

func (s *MediaService) MediaURL(hash string) string {
	return fmt.Sprintf("/media/%s.webp", hash)
}

// validMediaHash accepts only lowercase hex, which rules out path traversal
// via crafted hash parameters.
func validMediaHash(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func downscale(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	scale := float64(maxDim) / float64(w)
	if sh := float64(maxDim) / float64(h); sh < scale {
		scale = sh
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func allowedMediaMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func contentHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
