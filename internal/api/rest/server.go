package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "dermacheck/internal/application"
	"dermacheck/internal/domain/entity"
	"dermacheck/internal/infrastructure/storage"
)

// Server HTTP API проверки очагов
type Server struct {
	assessments *app.AssessmentService
	intake      *app.ImageIntake
	logger      *zap.Logger
}

// NewServer создаёт сервер поверх сервиса оценки
func NewServer(assessments *app.AssessmentService, intake *app.ImageIntake, logger *zap.Logger) *Server {
	return &Server{assessments: assessments, intake: intake, logger: logger}
}

// SetupRouter регистрирует маршруты
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = s.intake.MaxBytes()

	r.GET("/healthz", s.Health)

	v1 := r.Group("/v1")
	v1.POST("/assessments", s.CreateAssessment)
	v1.GET("/lesions/:id/timeline", s.Timeline)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// assessmentResponse плоское JSON-представление оценки.
type assessmentResponse struct {
	ID                  string                 `json:"id,omitempty"`
	LesionID            string                 `json:"lesion_id,omitempty"`
	Asymmetry           int                    `json:"asymmetry"`
	Border              int                    `json:"border"`
	Color               int                    `json:"color"`
	Diameter            int                    `json:"diameter"`
	Evolution           int                    `json:"evolution"`
	Total               int                    `json:"total"`
	RiskLevel           entity.RiskLevel       `json:"risk_level,omitempty"`
	Confidence          entity.Confidence      `json:"confidence,omitempty"`
	SegmentationMethod  entity.Method          `json:"segmentation_method,omitempty"`
	DiameterMM          float64                `json:"diameter_mm"`
	RejectionReason     entity.RejectionReason `json:"rejection_reason,omitempty"`
	RejectionDetail     string                 `json:"rejection_detail,omitempty"`
	CalibrationAnomaly  bool                   `json:"calibration_anomaly"`
	InsufficientHistory bool                   `json:"insufficient_history"`
	Descriptions        entity.Descriptions    `json:"descriptions"`
	AssessedAt          time.Time              `json:"assessed_at"`
	Alerts              []entity.Alert         `json:"alerts,omitempty"`
	Interpretation      *entity.Interpretation `json:"interpretation,omitempty"`
	HighlightedJPEG     []byte                 `json:"highlighted_jpeg,omitempty"`
}

func newAssessmentResponse(out *app.AssessmentOutput, withOverlay bool) assessmentResponse {
	a := out.Assessment
	resp := assessmentResponse{
		ID:                  a.ID,
		LesionID:            a.LesionID,
		Asymmetry:           a.Scores.Asymmetry,
		Border:              a.Scores.Border,
		Color:               a.Scores.Color,
		Diameter:            a.Scores.Diameter,
		Evolution:           a.Scores.Evolution,
		Total:               a.Total,
		RiskLevel:           a.RiskLevel,
		Confidence:          a.Confidence,
		SegmentationMethod:  a.SegmentationMethod,
		DiameterMM:          a.DiameterMM,
		CalibrationAnomaly:  a.CalibrationAnomaly,
		InsufficientHistory: a.InsufficientHistory,
		Descriptions:        a.Descriptions,
		AssessedAt:          a.AssessedAt,
		Alerts:              out.Alerts,
		Interpretation:      out.Interpretation,
	}
	if a.Rejection != nil {
		resp.RejectionReason = a.Rejection.Reason
		resp.RejectionDetail = a.Rejection.Detail
	}
	if withOverlay {
		resp.HighlightedJPEG = out.Highlighted
	}
	return resp
}

// CreateAssessment принимает multipart-форму: image, lesion_id, body_location.
// Отказ анализа возвращается со статусом 422 и телом оценки.
func (s *Server) CreateAssessment(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if err := s.intake.CheckSize(file.Size); err != nil {
		s.intakeError(c, err)
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.intake.MaxBytes()+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	if _, _, err := s.intake.Check(data); err != nil {
		s.intakeError(c, err)
		return
	}

	out, err := s.assessments.Assess(c.Request.Context(), app.AssessmentRequest{
		ImageData:    data,
		LesionID:     c.PostForm("lesion_id"),
		BodyLocation: c.PostForm("body_location"),
	})
	if err != nil {
		s.logger.Error("assessment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assess image"})
		return
	}

	withOverlay, _ := strconv.ParseBool(c.DefaultQuery("overlay", "false"))
	status := http.StatusOK
	if out.Assessment.Rejected() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, newAssessmentResponse(out, withOverlay))
}

// intakeError отвечает на снимок, не прошедший входную проверку.
func (s *Server) intakeError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, app.ErrImageTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	s.logger.Info("image rejected at intake", zap.Error(err))
	c.JSON(status, gin.H{
		"error":            "invalid image",
		"rejection_reason": "invalid_image",
		"rejection_detail": err.Error(),
	})
}

// Timeline возвращает историю очага.
func (s *Server) Timeline(c *gin.Context) {
	lesionID := c.Param("id")
	entries, err := s.assessments.History(c.Request.Context(), lesionID)
	if errors.Is(err, storage.ErrLesionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesion not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to load timeline", zap.String("lesion_id", lesionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load timeline"})
		return
	}

	var alerts []entity.Alert
	if n := len(entries); n >= 2 {
		alerts = app.CheckAlerts(&entries[n-2], &entries[n-1])
	}
	c.JSON(http.StatusOK, gin.H{
		"lesion_id": lesionID,
		"entries":   entries,
		"alerts":    alerts,
	})
}
