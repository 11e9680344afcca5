package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/semaphore"

	"github.com/coursehub/coursehub/internal/apperror"
	"github.com/coursehub/coursehub/internal/config"
)

// jpegQuality is the encode quality for stored covers.
const jpegQuality = 70

// maxConcurrentResizes bounds how many covers are decoded and scaled at the
// same time. Image work is the most memory-hungry request path.
const maxConcurrentResizes = 2

// ImagePersister stores uploaded course covers as fixed-size JPEG thumbnails
// under the public directory.
type ImagePersister struct {
	cfg    config.ImagesConfig
	sem    *semaphore.Weighted
	logger *zap.Logger
}

func NewImagePersister(cfg config.ImagesConfig, logger *zap.Logger) *ImagePersister {
	return &ImagePersister{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(maxConcurrentResizes),
		logger: logger,
	}
}

// Persist decodes the upload, scales it to fill the thumbnail box, crops the
// overflow from the top-left and writes <public>/courses/<id>.jpg. It returns
// the web path of the stored file. Any decode or dimension problem wraps
// apperror.ErrImageInvalid.
func (p *ImagePersister) Persist(ctx context.Context, courseID int64, upload io.Reader) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("persist cover: %w", err)
	}
	defer p.sem.Release(1)

	src, format, err := image.Decode(upload)
	if err != nil {
		return "", fmt.Errorf("%w: decode: %w", apperror.ErrImageInvalid, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() > p.cfg.MaxWidth || bounds.Dy() > p.cfg.MaxHeight {
		return "", fmt.Errorf("%w: %dx%d exceeds the %dx%d limit",
			apperror.ErrImageInvalid, bounds.Dx(), bounds.Dy(), p.cfg.MaxWidth, p.cfg.MaxHeight)
	}

	thumb := p.fillResize(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("%w: encode: %w", apperror.ErrImageInvalid, err)
	}

	dir := filepath.Join(p.cfg.PublicDir, "courses")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: store: %w", apperror.ErrImageInvalid, err)
	}
	name := fmt.Sprintf("%d.jpg", courseID)
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("%w: store: %w", apperror.ErrImageInvalid, err)
	}

	p.logger.Info("Cover persisted",
		zap.Int64("course_id", courseID),
		zap.String("format", format),
		zap.Int("bytes", buf.Len()))
	return "/courses/" + name, nil
}

// fillResize scales the source so it covers the thumbnail box, then keeps the
// top-left corner. Aspect ratio is preserved; the overflow is discarded.
func (p *ImagePersister) fillResize(src image.Image) image.Image {
	box := image.Rect(0, 0, p.cfg.ThumbWidth, p.cfg.ThumbHeight)
	srcBounds := src.Bounds()

	scale := math.Max(
		float64(box.Dx())/float64(srcBounds.Dx()),
		float64(box.Dy())/float64(srcBounds.Dy()),
	)
	scaledW := int(math.Ceil(float64(srcBounds.Dx()) * scale))
	scaledH := int(math.Ceil(float64(srcBounds.Dy()) * scale))

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, srcBounds, draw.Src, nil)

	thumb := image.NewRGBA(box)
	draw.Draw(thumb, box, scaled, image.Point{}, draw.Src)
	return thumb
}
