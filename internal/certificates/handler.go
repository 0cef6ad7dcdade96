package certificates

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"certificate-portal/certificate-backend/internal/config"
	"certificate-portal/certificate-backend/pkg/storage"
)

const (
	formDateLayout    = "2006-01-02"
	displayDateLayout = "02-01-2006"
)

// certificateForm mirrors the submission form. Dates arrive as YYYY-MM-DD
// and are printed as DD-MM-YYYY.
type certificateForm struct {
	FullName         string `form:"full_name" json:"full_name" binding:"required"`
	DateOfBirth      string `form:"date_of_birth" json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	Title            string `form:"title" json:"title" binding:"required"`
	IssueDate        string `form:"issue_date" json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	IssuedByName     string `form:"issued_by_name" json:"issued_by_name" binding:"required"`
	IssuedByPosition string `form:"issued_by_position" json:"issued_by_position" binding:"required"`
}

// toRequest converts the form into a Request. An empty issue date means
// today.
func (f certificateForm) toRequest(now time.Time) (*Request, error) {
	dob, err := reformatDate(f.DateOfBirth)
	if err != nil {
		return nil, newError(KindValidation, "parse date_of_birth", err)
	}
	issued := now.Format(displayDateLayout)
	if f.IssueDate != "" {
		if issued, err = reformatDate(f.IssueDate); err != nil {
			return nil, newError(KindValidation, "parse issue_date", err)
		}
	}
	return &Request{
		FullName:         strings.TrimSpace(f.FullName),
		DateOfBirth:      dob,
		Title:            strings.TrimSpace(f.Title),
		IssueDate:        issued,
		IssuedByName:     strings.TrimSpace(f.IssuedByName),
		IssuedByPosition: strings.TrimSpace(f.IssuedByPosition),
	}, nil
}

func reformatDate(s string) (string, error) {
	t, err := time.Parse(formDateLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(displayDateLayout), nil
}

type Handler struct {
	service         Service
	logger          *zap.Logger
	maxImageBytes   int64
	maxRequestBytes int64
	now             func() time.Time
}

func NewHandler(service Service, logger *zap.Logger, uploads config.UploadsConfig) *Handler {
	return &Handler{
		service:         service,
		logger:          logger,
		maxImageBytes:   uploads.MaxImageBytes,
		maxRequestBytes: uploads.MaxRequestBytes,
		now:             time.Now,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	certs := rg.Group("/certificates")
	{
		certs.POST("", h.Generate)
		certs.POST("/preview", h.Preview)
		certs.GET("/:id/download", h.Download)
	}
}

// Generate handles POST /api/v1/certificates
func (h *Handler) Generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)

	var form certificateForm
	if err := c.ShouldBind(&form); err != nil {
		h.writeBindError(c, err)
		return
	}
	req, err := form.toRequest(h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}

	uploads := []struct {
		field string
		dst   *[]byte
	}{
		{"background_image", &req.Background},
		{"photo", &req.Photo},
		{"signature", &req.Signature},
	}
	for _, u := range uploads {
		data, status, err := h.readUpload(c, u.field)
		if err != nil {
			c.JSON(status, gin.H{"status": "error", "error": err.Error()})
			return
		}
		*u.dst = data
	}

	doc, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("X-Certificate-Id", doc.ID.String())
	c.Header("X-Certificate-Code", string(doc.Code))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}

// Preview handles POST /api/v1/certificates/preview
func (h *Handler) Preview(c *gin.Context) {
	var form certificateForm
	if err := c.ShouldBind(&form); err != nil {
		h.writeBindError(c, err)
		return
	}
	req, err := form.toRequest(h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}

	lines, err := h.service.Preview(req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

// Download handles GET /api/v1/certificates/:id/download
func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid id"})
		return
	}

	reader, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", Filename),
	})
}

func (h *Handler) readUpload(c *gin.Context, field string) ([]byte, int, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, http.StatusBadRequest, fieldError(field)
	}
	if fh.Size > h.maxImageBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("field %s exceeds %d bytes", field, h.maxImageBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to open %s", field)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to read %s", field)
	}
	if int64(len(data)) > h.maxImageBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("field %s exceeds %d bytes", field, h.maxImageBytes)
	}
	if len(data) == 0 {
		return nil, http.StatusBadRequest, fieldError(field)
	}
	return data, http.StatusOK, nil
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": validationMessage(verrs)})
	case errors.As(err, &maxErr):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"status": "error", "error": "request body too large"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
	case errors.Is(err, ErrImageDecode), errors.Is(err, ErrEncoding):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "certificate not found"})
	default:
		h.logger.Error("Certificate request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "internal server error"})
	}
}

func validationMessage(errs validator.ValidationErrors) string {
	var msgs []string
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("field %s must be a date in YYYY-MM-DD format", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}
