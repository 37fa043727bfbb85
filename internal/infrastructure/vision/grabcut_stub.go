//go:build !gocv
// +build !gocv

package vision

import (
	"errors"
	"image"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

// OpenCVAvailable сообщает, собрана ли поддержка OpenCV.
const OpenCVAvailable = false

// OpenCVGrabCut заглушка сегментатора OpenCV (сборка без тега gocv).
type OpenCVGrabCut struct {
	Iterations int
}

var _ port.ForegroundSegmenter = (*OpenCVGrabCut)(nil)

// NewOpenCVGrabCut создаёт сегментатор-заглушку.
func NewOpenCVGrabCut(p Policy) *OpenCVGrabCut {
	return &OpenCVGrabCut{Iterations: p.GrabCutIterations}
}

// Name возвращает имя реализации.
func (g *OpenCVGrabCut) Name() string { return "opencv" }

// Segment возвращает ошибку, если сборка без тега gocv.
func (g *OpenCVGrabCut) Segment(img *image.RGBA, hint image.Rectangle) (*entity.Mask, error) {
	_ = img
	_ = hint
	return nil, errors.New("gocv build tag is not enabled")
}
