package certificates

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Filename is the suggested download name of every certificate.
const Filename = "certificate.pdf"

// Request carries the validated form values and the raw bytes of the three
// uploaded images. Dates are already formatted for display.
type Request struct {
	FullName         string
	DateOfBirth      string
	Title            string
	IssueDate        string
	IssuedByName     string
	IssuedByPosition string

	Background []byte
	Photo      []byte
	Signature  []byte
}

// Validate reports the first missing field or image as a KindValidation
// error.
func (r *Request) Validate() error {
	if err := r.ValidateFields(); err != nil {
		return err
	}

	images := []struct {
		name string
		data []byte
	}{
		{"background_image", r.Background},
		{"photo", r.Photo},
		{"signature", r.Signature},
	}
	for _, img := range images {
		if len(img.data) == 0 {
			return newError(KindValidation, "validate request", fieldError(img.name))
		}
	}
	return nil
}

// ValidateFields checks the six text fields only.
func (r *Request) ValidateFields() error {
	fields := []struct {
		name  string
		value string
	}{
		{"full_name", r.FullName},
		{"date_of_birth", r.DateOfBirth},
		{"title", r.Title},
		{"issue_date", r.IssueDate},
		{"issued_by_name", r.IssuedByName},
		{"issued_by_position", r.IssuedByPosition},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return newError(KindValidation, "validate request", fieldError(f.name))
		}
	}
	return nil
}

type fieldError string

func (f fieldError) Error() string {
	return "field " + string(f) + " is required"
}

// Document is a rendered certificate.
type Document struct {
	ID        uuid.UUID    `json:"id"`
	Code      TrackingCode `json:"code"`
	Timestamp string       `json:"timestamp"`
	IssuedAt  time.Time    `json:"issued_at"`
	Filename  string       `json:"filename"`
	Key       string       `json:"key"`
	Size      int64        `json:"size"`
	Data      []byte       `json:"-"`
}

// StorageKey returns the key under which the certificate for id is stored.
func StorageKey(id uuid.UUID) string {
	return "certificates/" + id.String() + "/" + Filename
}
