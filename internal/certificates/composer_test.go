package certificates

import (
	"bytes"
	"fmt"
	"image"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certificate-portal/certificate-backend/pkg/pdf"
)

func testArtifacts(t *testing.T, req *Request) Artifacts {
	t.Helper()
	bar, err := EncodeBarcode(fixedTracking.Code)
	require.NoError(t, err)
	photo, err := DecodeImage("decode photo", req.Photo, 0)
	require.NoError(t, err)
	return Artifacts{Tracking: fixedTracking, Barcode: bar, Photo: MaskCircular(photo, 150)}
}

func compose(t *testing.T, req *Request, a Artifacts) ([]byte, error) {
	t.Helper()
	return composeWith(t, false, req, a)
}

func composeWith(t *testing.T, compress bool, req *Request, a Artifacts) ([]byte, error) {
	t.Helper()
	var buf bytes.Buffer
	err := NewComposer(NewLayout(pdf.A4), compress, 0).Compose(&buf, req, a)
	return buf.Bytes(), err
}

func TestComposeWritesSinglePage(t *testing.T) {
	req := sampleRequest(t)
	out, err := compose(t, req, testArtifacts(t, req))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Len(t, regexp.MustCompile(`/Type /Page\b`).FindAll(out, -1), 1)
	assert.Contains(t, string(out), "/MediaBox [0 0 595.28 841.89]")

	for _, text := range []string{
		"(Code: KDO-BMG-482913) Tj",
		"(Generated: 2024-06-15 10:30:00) Tj",
		"(Certificate of Assignment) Tj",
		"(Jane Doe) Tj",
		"(born on 01-01-1990) Tj",
		"(Volunteer) Tj",
		"(Issued on: 15-06-2024) Tj",
		"(Issued By: John Smith) Tj",
		"(Position: Director) Tj",
		"(Website: kdo.org.au) Tj",
	} {
		assert.Contains(t, string(out), text)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(fmt.Sprintf("compress=%t", compress), func(t *testing.T) {
			req := sampleRequest(t)
			a := testArtifacts(t, req)

			first, err := composeWith(t, compress, req, a)
			require.NoError(t, err)
			second, err := composeWith(t, compress, req, a)
			require.NoError(t, err)
			assert.Equal(t, first, second)

			if compress {
				assert.NotContains(t, string(first), "(Jane Doe) Tj")
			} else {
				assert.Contains(t, string(first), "(Jane Doe) Tj")
			}
		})
	}
}

func TestComposeEmbedsImages(t *testing.T) {
	req := sampleRequest(t)
	out, err := compose(t, req, testArtifacts(t, req))
	require.NoError(t, err)

	// Four placed images plus the soft masks of the photo and signature.
	assert.Len(t, regexp.MustCompile(`/Subtype /Image`).FindAll(out, -1), 6)
	assert.Contains(t, string(out), "/Filter /DCTDecode")
}

func TestComposeRejectsUndecodableImages(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Request)
	}{
		{"background", func(r *Request) { r.Background = []byte("not an image") }},
		{"signature", func(r *Request) { r.Signature = []byte{0xff, 0xd8, 0x00} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleRequest(t)
			a := testArtifacts(t, req)
			tt.modify(req)

			out, err := compose(t, req, a)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrImageDecode)
			assert.Empty(t, out)
		})
	}
}

func TestComposeMissingArtifact(t *testing.T) {
	req := sampleRequest(t)
	a := testArtifacts(t, req)
	a.Barcode = nil

	out, err := compose(t, req, a)
	assert.ErrorIs(t, err, ErrRender)
	assert.Empty(t, out)
}

func TestComposeEmptyPhotoFails(t *testing.T) {
	req := sampleRequest(t)
	a := testArtifacts(t, req)
	a.Photo = image.NewNRGBA(image.Rect(0, 0, 0, 0))

	out, err := compose(t, req, a)
	assert.ErrorIs(t, err, ErrRender)
	assert.Empty(t, out)
}
