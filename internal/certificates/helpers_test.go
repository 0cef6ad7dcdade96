package certificates

import (
	"bytes"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

var fixedTracking = Tracking{
	Code:      "KDO-BMG-482913",
	Timestamp: "2024-06-15 10:30:00",
	IssuedAt:  time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
}

func encodeImage(t *testing.T, w, h int, c color.NRGBA, format imaging.Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, c), format))
	return buf.Bytes()
}

func sampleRequest(t *testing.T) *Request {
	t.Helper()
	return &Request{
		FullName:         "Jane Doe",
		DateOfBirth:      "01-01-1990",
		Title:            "Volunteer",
		IssueDate:        "15-06-2024",
		IssuedByName:     "John Smith",
		IssuedByPosition: "Director",
		Background:       encodeImage(t, 120, 170, color.NRGBA{R: 240, G: 230, B: 200, A: 255}, imaging.JPEG),
		Photo:            encodeImage(t, 90, 120, color.NRGBA{R: 60, G: 90, B: 150, A: 255}, imaging.JPEG),
		Signature:        encodeImage(t, 200, 100, color.NRGBA{R: 0, G: 0, B: 0, A: 128}, imaging.PNG),
	}
}
