package handlers

import (
	"database/sql"
	"encoding/json"
	"math/rand"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gearreport/internal/config"
	"gearreport/internal/models"
	"gearreport/internal/observability"
	"gearreport/internal/services"
	"gearreport/internal/stats"
	contextutils "gearreport/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
)

// SubmissionHandler handles the public intake, gallery, and impact endpoints
type SubmissionHandler struct {
	submissionService services.SubmissionServiceInterface
	imageService      services.ImageServiceInterface
	config            *config.Config
	logger            *observability.Logger
	validate          *validator.Validate
}

// NewSubmissionHandler creates a new SubmissionHandler instance
func NewSubmissionHandler(submissionService services.SubmissionServiceInterface, imageService services.ImageServiceInterface, cfg *config.Config, logger *observability.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		imageService:      imageService,
		config:            cfg,
		logger:            logger,
		validate:          validator.New(),
	}
}

// GallerySubmission is the public view of an approved submission.
// Contact details are withheld and coordinates are privacy-jittered.
type GallerySubmission struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Location  string                  `json:"location"`
	Latitude  *float64                `json:"latitude,omitempty"`
	Longitude *float64                `json:"longitude,omitempty"`
	Message   string                  `json:"message,omitempty"`
	Images    []string                `json:"images"`
	Equipment []models.EquipmentEntry `json:"equipment"`
	CreatedAt string                  `json:"created_at"`
}

// CreateSubmission handles POST /v1/submissions. The multipart form carries
// the contact fields, optional equipment JSON, and 1-5 photos. Photos are
// stored first; any storage failure aborts the whole submission.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "create_submission")
	defer observability.FinishSpan(span, nil)

	form, err := c.MultipartForm()
	if err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid multipart form",
			"",
			err,
		))
		return
	}

	sub := models.Submission{
		Name:     strings.TrimSpace(c.PostForm("name")),
		Email:    strings.TrimSpace(c.PostForm("email")),
		Phone:    strings.TrimSpace(c.PostForm("phone")),
		Location: strings.TrimSpace(c.PostForm("location")),
	}

	if sub.Name == "" {
		HandleValidationError(c, "name", sub.Name, "name is required")
		return
	}
	if sub.Location == "" {
		HandleValidationError(c, "location", sub.Location, "location is required")
		return
	}
	if sub.Email != "" {
		if err := h.validate.Var(sub.Email, "email"); err != nil {
			HandleValidationError(c, "email", sub.Email, "not a valid email address")
			return
		}
	}

	if ok := h.parseCoordinates(c, &sub); !ok {
		return
	}

	if message := strings.TrimSpace(c.PostForm("message")); message != "" {
		sub.Message = sql.NullString{String: message, Valid: true}
	}

	if equipmentJSON := c.PostForm("equipment"); equipmentJSON != "" {
		var equipment []models.EquipmentEntry
		if err := json.Unmarshal([]byte(equipmentJSON), &equipment); err != nil {
			HandleValidationError(c, "equipment", equipmentJSON, "not valid JSON")
			return
		}
		for _, entry := range equipment {
			if !models.ValidQuantity(entry.Category, entry.Quantity) {
				HandleValidationError(c, "equipment", string(entry.Category)+"/"+entry.Quantity,
					"unknown category or quantity outside its domain")
				return
			}
		}
		sub.Equipment = equipment
	}

	files := form.File["images"]
	if len(files) < 1 || len(files) > config.MaxSubmissionImages {
		HandleValidationError(c, "images", len(files), "between 1 and 5 photos are required")
		return
	}
	span.SetAttributes(attribute.Int("submission.image_count", len(files)))

	uploads, err := h.openUploads(files)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	defer closeUploads(uploads)

	imageUploads := make([]services.ImageUpload, len(uploads))
	for i, u := range uploads {
		imageUploads[i] = u.ImageUpload
	}
	urls, err := h.imageService.UploadImages(c.Request.Context(), imageUploads)
	if err != nil {
		h.logger.Error(c.Request.Context(), "Photo storage failed, submission aborted", err)
		HandleAppError(c, err)
		return
	}
	sub.Images = urls

	created, err := h.submissionService.CreateSubmission(c.Request.Context(), &sub)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         created.ID,
		"status":     created.Status,
		"created_at": created.CreatedAt.Format(time.RFC3339),
	})
}

// parseCoordinates reads the optional latitude/longitude pair. Both must be
// present together and in range; a lone or malformed value is rejected.
func (h *SubmissionHandler) parseCoordinates(c *gin.Context, sub *models.Submission) bool {
	latStr := strings.TrimSpace(c.PostForm("latitude"))
	lngStr := strings.TrimSpace(c.PostForm("longitude"))
	if latStr == "" && lngStr == "" {
		return true
	}
	if latStr == "" || lngStr == "" {
		HandleValidationError(c, "coordinates", latStr+","+lngStr, "latitude and longitude must be provided together")
		return false
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lng, lngErr := strconv.ParseFloat(lngStr, 64)
	if latErr != nil || lngErr != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		HandleValidationError(c, "coordinates", latStr+","+lngStr, "not a valid coordinate pair")
		return false
	}

	sub.Latitude = sql.NullFloat64{Float64: lat, Valid: true}
	sub.Longitude = sql.NullFloat64{Float64: lng, Valid: true}
	return true
}

type openedUpload struct {
	services.ImageUpload
	file multipart.File
}

// openUploads opens each uploaded photo and checks its size and type.
func (h *SubmissionHandler) openUploads(files []*multipart.FileHeader) ([]openedUpload, error) {
	uploads := make([]openedUpload, 0, len(files))
	for _, header := range files {
		if header.Size > config.MaxImageSizeBytes {
			closeUploads(uploads)
			return nil, contextutils.NewAppError(
				contextutils.ErrorCodeInvalidInput,
				contextutils.SeverityWarn,
				"Photo too large",
				header.Filename,
			)
		}

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			closeUploads(uploads)
			return nil, contextutils.NewAppError(
				contextutils.ErrorCodeInvalidFormat,
				contextutils.SeverityWarn,
				"Only image files are accepted",
				header.Filename,
			)
		}

		file, err := header.Open()
		if err != nil {
			closeUploads(uploads)
			return nil, contextutils.WrapError(err, "failed to read uploaded photo")
		}

		uploads = append(uploads, openedUpload{
			ImageUpload: services.ImageUpload{
				Filename:    header.Filename,
				ContentType: contentType,
				Body:        file,
				Size:        header.Size,
			},
			file: file,
		})
	}
	return uploads, nil
}

func closeUploads(uploads []openedUpload) {
	for _, u := range uploads {
		_ = u.file.Close()
	}
}

// GetGallery handles GET /v1/gallery: approved submissions, newest first,
// with jittered coordinates and no contact details.
func (h *SubmissionHandler) GetGallery(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_gallery")
	defer observability.FinishSpan(span, nil)

	approved, err := h.submissionService.GetApprovedSubmissions(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	gallery := make([]GallerySubmission, 0, len(approved))
	for i := range approved {
		gallery = append(gallery, h.toGallerySubmission(&approved[i], rnd))
	}

	span.SetAttributes(attribute.Int("gallery.count", len(gallery)))
	c.JSON(http.StatusOK, gin.H{"submissions": gallery})
}

func (h *SubmissionHandler) toGallerySubmission(sub *models.Submission, rnd *rand.Rand) GallerySubmission {
	out := GallerySubmission{
		ID:        sub.ID,
		Name:      sub.Name,
		Location:  sub.Location,
		Images:    sub.Images,
		Equipment: sub.Equipment,
		CreatedAt: sub.CreatedAt.Format(time.RFC3339),
	}
	if sub.Message.Valid {
		out.Message = sub.Message.String
	}
	if sub.HasCoordinates() {
		lat, lng := stats.JitterCoordinates(
			sub.Latitude.Float64, sub.Longitude.Float64,
			h.config.Gallery.JitterRadiusDeg, rnd)
		out.Latitude = &lat
		out.Longitude = &lng
	}
	return out
}

// GetImpact handles GET /v1/impact: the aggregate impact summary over
// approved submissions plus the composed share message.
func (h *SubmissionHandler) GetImpact(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_impact")
	defer observability.FinishSpan(span, nil)

	approved, err := h.submissionService.GetApprovedSubmissions(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}

	impact := stats.CalculateImpactStats(approved)
	c.JSON(http.StatusOK, gin.H{
		"stats":   impact,
		"message": stats.ImpactMessage(impact),
	})
}
