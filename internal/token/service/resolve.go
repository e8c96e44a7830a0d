package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"qrpass/internal/token/models"
	"qrpass/internal/token/verifyurl"
	"qrpass/pkg/requestcontext"
)

// Resolve decides how a verification request for id is answered. An id that
// is not live locally is assumed to belong to the canonical authority and is
// redirected there with rawQuery forwarded.
func (s *Service) Resolve(ctx context.Context, id, rawQuery string) (*models.Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "token.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("token.id", id))

	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to resolve token")
	}

	if !exists {
		s.metrics.IncrementResolve(string(models.OutcomeRedirect))
		s.logger.InfoContext(ctx, "unknown token, redirecting to authority",
			"request_id", requestcontext.RequestID(ctx),
			"token_id", id,
		)
		return &models.Resolution{
			Outcome:     models.OutcomeRedirect,
			ID:          id,
			RedirectURL: verifyurl.Redirect(s.authorityBaseURL, id, rawQuery),
		}, nil
	}

	s.metrics.IncrementResolve(string(models.OutcomeRender))
	return &models.Resolution{Outcome: models.OutcomeRender, ID: id}, nil
}

// Home is where the root path sends visitors.
func (s *Service) Home() string {
	return s.authorityBaseURL
}
