package app

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// Значения по умолчанию для приёма снимков.
const (
	DefaultMinImageSide  = 100
	DefaultMaxImageBytes = 20 << 20
)

var (
	ErrEmptyImage        = errors.New("image is empty")
	ErrImageTooLarge     = errors.New("image file is too large")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrImageTooSmall     = errors.New("image resolution is too small")
)

// ImageIntake проверяет снимок до анализа: формат JPEG/PNG, минимальное разрешение и размер файла.
type ImageIntake struct {
	minSide  int
	maxBytes int64
}

// NewImageIntake создаёт проверку. Неположительные значения заменяются значениями по умолчанию.
func NewImageIntake(minSide int, maxBytes int64) *ImageIntake {
	if minSide <= 0 {
		minSide = DefaultMinImageSide
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &ImageIntake{minSide: minSide, maxBytes: maxBytes}
}

// MinSide минимальная сторона снимка в пикселях.
func (in *ImageIntake) MinSide() int {
	return in.minSide
}

// MaxBytes предельный размер файла снимка.
func (in *ImageIntake) MaxBytes() int64 {
	return in.maxBytes
}

// CheckSize проверяет только размер файла, до его загрузки.
func (in *ImageIntake) CheckSize(n int64) error {
	if n > in.maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, n, in.maxBytes)
	}
	return nil
}

// Check читает заголовок снимка и возвращает его формат и размеры.
func (in *ImageIntake) Check(data []byte) (image.Config, string, error) {
	if len(data) == 0 {
		return image.Config{}, "", ErrEmptyImage
	}
	if err := in.CheckSize(int64(len(data))); err != nil {
		return image.Config{}, "", err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if format != "jpeg" && format != "png" {
		return cfg, format, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if cfg.Width < in.minSide || cfg.Height < in.minSide {
		return cfg, format, fmt.Errorf("%w: %dx%d, minimum %dx%d",
			ErrImageTooSmall, cfg.Width, cfg.Height, in.minSide, in.minSide)
	}
	return cfg, format, nil
}
