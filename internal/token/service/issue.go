package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"qrpass/internal/token/models"
	"qrpass/internal/token/verifyurl"
	dErrors "qrpass/pkg/domain-errors"
	"qrpass/pkg/requestcontext"
)

// LocalExpiryLayout renders ExpiresAtLocal.
const LocalExpiryLayout = "15:04:05 02.01.2006 (MST)"

// Issue creates a token record and returns its identifier, verification URL
// and QR image. Each call yields a new identifier; a store failure aborts the
// issuance without retry.
func (s *Service) Issue(ctx context.Context, req models.IssueRequest) (*models.IssueResult, error) {
	ctx, span := s.tracer.Start(ctx, "token.Issue")
	defer span.End()

	ttl := s.defaultTTL
	if req.TTLSeconds != nil {
		if *req.TTLSeconds > models.MaxTTLSeconds {
			span.SetStatus(codes.Error, "ttl out of range")
			return nil, dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("expire must not exceed %d seconds", models.MaxTTLSeconds))
		}
		// non-positive values are passed through; the store drops the record
		ttl = time.Duration(*req.TTLSeconds) * time.Second
	}
	locale := req.Locale
	if locale == "" {
		locale = s.locale
	}

	id, err := s.allocateIdentifier(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "allocate identifier")
		return nil, err
	}
	span.SetAttributes(attribute.String("token.id", id))

	url, host := verifyurl.Build(req.Host, id, s.generator.NewNonce(), locale)
	if host.Fallback() {
		s.logger.DebugContext(ctx, "host encoding failed, using raw host",
			"request_id", requestcontext.RequestID(ctx),
			"host", req.Host,
			"error", host.Err,
		)
		s.metrics.IncrementHostFallback()
	}

	png, err := s.encoder.Encode(url, s.qrScale)
	if err != nil {
		span.SetStatus(codes.Error, "encode qr")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render QR code")
	}

	record := models.Record{
		ID:     id,
		Fields: req.Fields,
		QR:     base64.StdEncoding.EncodeToString(png),
	}
	if err := s.store.WriteFields(ctx, id, record.StoreFields()); err != nil {
		span.SetStatus(codes.Error, "write record")
		return nil, storeError(err, "failed to store token")
	}
	if err := s.store.SetExpiry(ctx, id, ttl); err != nil {
		span.SetStatus(codes.Error, "set expiry")
		return nil, storeError(err, "failed to set token expiry")
	}

	expiresAt := requestcontext.Now(ctx).Add(ttl)
	s.metrics.IncrementIssued()
	s.logger.InfoContext(ctx, "token issued",
		"request_id", requestcontext.RequestID(ctx),
		"operator", requestcontext.Operator(ctx),
		"token_id", id,
		"ttl_seconds", int(ttl/time.Second),
	)

	return &models.IssueResult{
		ID:             id,
		URL:            url,
		QR:             png,
		ExpiresAt:      expiresAt,
		ExpiresAtLocal: localExpiry(expiresAt, req.Fields[models.FieldTimezone]),
	}, nil
}

// allocateIdentifier draws identifiers until one is not live, at most
// collisionRetries+1 times. With no retries configured the first draw is used
// unchecked.
func (s *Service) allocateIdentifier(ctx context.Context) (string, error) {
	for attempt := 0; ; attempt++ {
		id, err := s.generator.NewIdentifier()
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate identifier")
		}
		if s.collisionRetries == 0 {
			return id, nil
		}
		exists, err := s.store.Exists(ctx, id)
		if err != nil {
			return "", storeError(err, "failed to check identifier")
		}
		if !exists {
			return id, nil
		}
		s.logger.WarnContext(ctx, "identifier collision",
			"request_id", requestcontext.RequestID(ctx),
			"attempt", attempt+1,
		)
		if attempt >= s.collisionRetries {
			return "", dErrors.New(dErrors.CodeConflict, "could not allocate a free identifier")
		}
	}
}

// localExpiry formats t in the named IANA zone, or returns "" when the zone is
// empty or unknown.
func localExpiry(t time.Time, zone string) string {
	if zone == "" {
		return ""
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return ""
	}
	return t.In(loc).Format(LocalExpiryLayout)
}
