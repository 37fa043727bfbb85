//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

// OpenCVAvailable сообщает, собрана ли поддержка OpenCV.
const OpenCVAvailable = true

// OpenCVGrabCut сегментатор на cv::grabCut.
type OpenCVGrabCut struct {
	Iterations int
}

var _ port.ForegroundSegmenter = (*OpenCVGrabCut)(nil)

// NewOpenCVGrabCut создаёт сегментатор OpenCV с бюджетом итераций из политики.
func NewOpenCVGrabCut(p Policy) *OpenCVGrabCut {
	return &OpenCVGrabCut{Iterations: p.GrabCutIterations}
}

// Name возвращает имя реализации.
func (g *OpenCVGrabCut) Name() string { return "opencv" }

// Segment запускает grabCut с инициализацией прямоугольником.
func (g *OpenCVGrabCut) Segment(img *image.RGBA, hint image.Rectangle) (*entity.Mask, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	mat, err := rgbaToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	w, h := mat.Cols(), mat.Rows()
	mask := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	defer mask.Close()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	gocv.GrabCut(mat, &mask, hint, &bgdModel, &fgdModel, g.Iterations, gocv.GCInitWithRect)

	out := entity.NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// 1 — точно передний план, 3 — вероятно передний план
			if v := mask.GetUCharAt(y, x); v == 1 || v == 3 {
				out.Set(x, y, true)
			}
		}
	}
	return out, nil
}

// rgbaToMat превращает RGBA в BGR gocv.Mat.
func rgbaToMat(img *image.RGBA) (gocv.Mat, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	bgr := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			bgr = append(bgr, img.Pix[i+2], img.Pix[i+1], img.Pix[i])
		}
	}
	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, bgr)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to build mat: %w", err)
	}
	return mat, nil
}
