package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"l0-obliterator/internal/logger"
)

type ImageLoader struct {
	logger logger.Logger
}

func NewImageLoader(log logger.Logger) *ImageLoader {
	return &ImageLoader{logger: log}
}

func (l *ImageLoader) LoadFromFile(path string) (*ImageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	l.logger.Debug("ImageLoader", "image data read", map[string]interface{}{
		"path":       path,
		"size_bytes": len(data),
	})

	imageData, err := l.LoadFromBytes(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, err
	}
	imageData.Path = path
	return imageData, nil
}

func (l *ImageLoader) LoadFromBytes(data []byte, extension string) (*ImageData, error) {
	// Decode with OpenCV first, keeping the source channel layout.
	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err == nil && !mat.Empty() {
		t, convErr := matToTensor(mat)
		mat.Close()
		if convErr == nil {
			imageData := &ImageData{
				Tensor:   t,
				Width:    t.W,
				Height:   t.H,
				Channels: t.C,
				Format:   l.determineActualFormat(extension, ""),
			}

			l.logger.Info("ImageLoader", "image loaded", map[string]interface{}{
				"decoder":  "opencv",
				"width":    imageData.Width,
				"height":   imageData.Height,
				"channels": imageData.Channels,
				"format":   imageData.Format,
			})
			return imageData, nil
		}
		l.logger.Debug("ImageLoader", "decoded Mat not usable, falling back", map[string]interface{}{
			"reason": convErr.Error(),
		})
	} else if err == nil {
		mat.Close()
	}

	// Standard-library fallback covers formats OpenCV was built without.
	img, stdFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	t, err := imageToTensor(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert decoded image: %w", err)
	}

	imageData := &ImageData{
		Tensor:   t,
		Width:    t.W,
		Height:   t.H,
		Channels: t.C,
		Format:   l.determineActualFormat(extension, stdFormat),
	}

	l.logger.Info("ImageLoader", "image loaded", map[string]interface{}{
		"decoder":  "stdlib",
		"width":    imageData.Width,
		"height":   imageData.Height,
		"channels": imageData.Channels,
		"format":   imageData.Format,
	})
	return imageData, nil
}

func (l *ImageLoader) determineActualFormat(extension, stdLibFormat string) string {
	switch extension {
	case ".tiff", ".tif":
		return "tiff"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	default:
		if stdLibFormat != "" {
			return stdLibFormat
		}
		return "unknown"
	}
}
