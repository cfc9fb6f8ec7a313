package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"shipits/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMediaService(t *testing.T) *MediaService {
	t.Helper()
	return NewMediaService(&config.Config{UploadDir: t.TempDir()})
}

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 16 {
		for x := 0; x < w; x += 16 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMediaService_Upload_Validation(t *testing.T) {
	t.Parallel()
	svc := newTestMediaService(t)
	ctx := context.Background()

	t.Run("empty upload", func(t *testing.T) {
		_, err := svc.Upload(ctx, UploadMediaInput{UserID: 1})
		assertValidationError(t, err)
	})

	t.Run("oversized upload", func(t *testing.T) {
		_, err := svc.Upload(ctx, UploadMediaInput{
			UserID:  1,
			Content: make([]byte, MaxUploadBytes+1),
		})
		assertValidationError(t, err)
	})

	t.Run("non-image payload", func(t *testing.T) {
		_, err := svc.Upload(ctx, UploadMediaInput{
			UserID:  1,
			Content: []byte("definitely not an image, just plain text padding padding"),
		})
		assertValidationError(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := svc.Upload(ctx, UploadMediaInput{Content: encodeTestPNG(t, 10, 10)})
		assertValidationError(t, err)
	})
}

func TestMediaService_Upload_StoresWebP(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	svc := NewMediaService(&config.Config{UploadDir: dir})

	media, err := svc.Upload(context.Background(), UploadMediaInput{
		UserID:      1,
		Filename:    "shot.png",
		ContentType: "image/png",
		Content:     encodeTestPNG(t, 100, 80),
	})
	require.NoError(t, err)

	assert.Len(t, media.Hash, 64)
	assert.Equal(t, "/media/"+media.Hash+".webp", media.URL)
	assert.Equal(t, 100, media.Width)
	assert.Equal(t, 80, media.Height)

	path, err := svc.Resolve(media.Hash)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, media.Bytes, info.Size())
}

func TestMediaService_Upload_DownscalesLargeImages(t *testing.T) {
	t.Parallel()
	svc := newTestMediaService(t)

	media, err := svc.Upload(context.Background(), UploadMediaInput{
		UserID:  1,
		Content: encodeTestPNG(t, 2400, 600),
	})
	require.NoError(t, err)

	assert.Equal(t, MediaMaxDimension, media.Width)
	assert.Equal(t, 300, media.Height)
}

func TestMediaService_Resolve_RejectsBadHashes(t *testing.T) {
	t.Parallel()
	svc := newTestMediaService(t)

	_, err := svc.Resolve("../../etc/passwd")
	assertValidationError(t, err)

	_, err = svc.Resolve("ABCDEF")
	assertValidationError(t, err)
}
