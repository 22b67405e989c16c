package pipeline

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"l0-obliterator/internal/logger"
)

type ImageSaver struct {
	logger logger.Logger
}

func NewImageSaver(log logger.Logger) *ImageSaver {
	return &ImageSaver{logger: log}
}

// SaveToFile rescales the tensor to 8-bit samples and encodes it. The
// format is chosen from the destination extension, falling back to the
// source format, then PNG.
func (s *ImageSaver) SaveToFile(path string, imageData *ImageData) error {
	if imageData == nil || imageData.Tensor == nil {
		return fmt.Errorf("no image data to save")
	}

	format := formatFromExtension(strings.ToLower(filepath.Ext(path)))
	if format == "" {
		format = imageData.Format
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	return s.SaveToWriter(file, imageData, format)
}

func (s *ImageSaver) SaveToWriter(writer io.Writer, imageData *ImageData, format string) error {
	if imageData == nil || imageData.Tensor == nil {
		return fmt.Errorf("no image data to save")
	}

	img, err := tensorToImage(imageData.Tensor)
	if err != nil {
		return fmt.Errorf("failed to convert tensor for encoding: %w", err)
	}

	if format == "" {
		format = "png"
	}

	s.logger.Debug("ImageSaver", "saving image", map[string]interface{}{
		"format": format,
		"width":  imageData.Width,
		"height": imageData.Height,
	})

	switch format {
	case "jpeg":
		err = jpeg.Encode(writer, img, &jpeg.Options{Quality: 95})
	case "png":
		err = png.Encode(writer, img)
	case "tiff":
		err = tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate})
	case "bmp":
		err = bmp.Encode(writer, img)
	default:
		s.logger.Warning("ImageSaver", "unknown format, using PNG", map[string]interface{}{
			"requested_format": format,
		})
		err = png.Encode(writer, img)
	}

	if err != nil {
		s.logger.Error("ImageSaver", err, map[string]interface{}{
			"format": format,
		})
		return err
	}

	s.logger.Info("ImageSaver", "image saved", map[string]interface{}{
		"format": format,
	})
	return nil
}

func formatFromExtension(extension string) string {
	switch extension {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".tiff", ".tif":
		return "tiff"
	case ".bmp":
		return "bmp"
	default:
		return ""
	}
}
