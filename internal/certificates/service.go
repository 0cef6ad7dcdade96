package certificates

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"certificate-portal/certificate-backend/internal/config"
	"certificate-portal/certificate-backend/internal/metrics"
	"certificate-portal/certificate-backend/pkg/pdf"
	"certificate-portal/certificate-backend/pkg/storage"
)

type Service interface {
	Generate(ctx context.Context, req *Request) (*Document, error)
	Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
	Preview(req *Request) ([]Line, error)
}

type certificateService struct {
	codes       CodeSource
	composer    *Composer
	store       storage.Store
	metrics     *metrics.Metrics
	logger      *zap.Logger
	photoPixels int
	maxPixels   int64
	newID       func() uuid.UUID
}

func NewService(cfg config.CertificateConfig, uploads config.UploadsConfig, codes CodeSource, store storage.Store, m *metrics.Metrics, logger *zap.Logger) Service {
	return &certificateService{
		codes:       codes,
		composer:    NewComposer(NewLayout(pdf.A4), cfg.Compress, uploads.MaxImagePixels),
		store:       store,
		metrics:     m,
		logger:      logger,
		photoPixels: cfg.PhotoPixels,
		maxPixels:   uploads.MaxImagePixels,
		newID:       uuid.New,
	}
}

// Generate runs the rendering pipeline and stores the PDF under a key
// derived from a fresh request id. Either a complete document is stored and
// returned or nothing is.
func (s *certificateService) Generate(ctx context.Context, req *Request) (*Document, error) {
	start := time.Now()
	id := s.newID()
	log := s.logger.With(zap.String("request_id", id.String()))

	doc, err := s.generate(ctx, id, req)
	s.metrics.ObserveRender(start)
	if err != nil {
		kind := KindOf(err)
		if kind == "" {
			kind = "canceled"
		}
		s.metrics.IncrementFailure(string(kind))
		log.Error("Certificate generation failed", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}

	s.metrics.IncrementGenerated()
	log.Info("Certificate generated",
		zap.String("code", string(doc.Code)),
		zap.String("key", doc.Key),
		zap.Int64("size", doc.Size),
		zap.Duration("elapsed", time.Since(start)),
	)
	return doc, nil
}

func (s *certificateService) generate(ctx context.Context, id uuid.UUID, req *Request) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tracking := s.codes.Next()
	bar, err := EncodeBarcode(tracking.Code)
	if err != nil {
		return nil, err
	}

	photo, err := DecodeImage("decode photo", req.Photo, s.maxPixels)
	if err != nil {
		return nil, err
	}
	masked := MaskCircular(photo, s.photoPixels)

	var buf bytes.Buffer
	if err := s.composer.Compose(&buf, req, Artifacts{Tracking: tracking, Barcode: bar, Photo: masked}); err != nil {
		return nil, err
	}

	key := StorageKey(id)
	if err := s.store.Put(ctx, key, bytes.NewReader(buf.Bytes()), "application/pdf"); err != nil {
		return nil, newError(KindRender, "store certificate", err)
	}

	return &Document{
		ID:        id,
		Code:      tracking.Code,
		Timestamp: tracking.Timestamp,
		IssuedAt:  tracking.IssuedAt,
		Filename:  Filename,
		Key:       key,
		Size:      int64(buf.Len()),
		Data:      buf.Bytes(),
	}, nil
}

func (s *certificateService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	return s.store.Get(ctx, StorageKey(id))
}

// Preview returns the text lines a certificate for req would carry, without
// the per-certificate tracking header.
func (s *certificateService) Preview(req *Request) ([]Line, error) {
	if err := req.ValidateFields(); err != nil {
		return nil, err
	}
	l := s.composer.Layout()
	var lines []Line
	lines = append(lines, l.BodyLines(req)...)
	lines = append(lines, l.IssuerLines(req)...)
	lines = append(lines, l.FooterLines()...)
	return lines, nil
}
