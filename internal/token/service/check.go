package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mehanizm/iuliia-go"
	"go.opentelemetry.io/otel/attribute"

	"qrpass/internal/token/models"
	dErrors "qrpass/pkg/domain-errors"
	"qrpass/pkg/requestcontext"
)

const (
	// DisplayDateLayout renders every date attribute.
	DisplayDateLayout = "02.01.2006"

	itemType     = "VERIFICATION_TOKEN"
	itemStatus   = "1"
	itemTitle    = "Сведения о владельце"
	itemEnTitle  = "Holder details"
	recoveryBack = -2 // months before evaluation time
	validMonths  = 6  // months after the recovery date
)

// Check returns the certificate view of a live record, or the empty
// CertificateCheck when the record is absent. Derived dates are computed from
// the request clock on every call.
func (s *Service) Check(ctx context.Context, id string) (*models.CertificateCheck, error) {
	ctx, span := s.tracer.Start(ctx, "token.Check")
	defer span.End()
	span.SetAttributes(attribute.String("token.id", id))

	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to check token")
	}
	if !exists {
		s.metrics.IncrementCheck("empty")
		return &models.CertificateCheck{}, nil
	}

	stored, err := s.store.ReadAll(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to read token")
	}
	if len(stored) == 0 {
		// expired between the two calls
		s.metrics.IncrementCheck("empty")
		return &models.CertificateCheck{}, nil
	}

	cert, err := buildCertificate(models.RecordFromStore(id, stored), requestcontext.Now(ctx))
	if err != nil {
		s.metrics.IncrementCheck("invalid")
		s.logger.WarnContext(ctx, "stored record is malformed",
			"request_id", requestcontext.RequestID(ctx),
			"token_id", id,
			"error", err,
		)
		return nil, err
	}
	s.metrics.IncrementCheck("found")
	return cert, nil
}

func buildCertificate(rec models.Record, now time.Time) (*models.CertificateCheck, error) {
	f := rec.Fields
	bday, err := time.Parse(models.BirthDayLayout, f[models.FieldBirthDay])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "birth date must be YYYY-MM-DD")
	}

	recovery := addMonths(now, recoveryBack)
	validUntil := addMonths(recovery, validMonths)

	last, first, second := f[models.FieldLastName], f[models.FieldFirstName], f[models.FieldSecondName]
	name := fmt.Sprintf("%s %s %s", mask(last), mask(first), mask(second))
	enName := fmt.Sprintf("%s %s %s",
		mask(iuliia.Wikipedia.Translate(last)),
		mask(iuliia.Wikipedia.Translate(first)),
		mask(iuliia.Wikipedia.Translate(second)),
	)
	passport := fmt.Sprintf("%s** ***%s", f[models.FieldSeries], f[models.FieldNumber])

	attrs := []models.Attribute{
		sameValue(models.AttrTypeDate, "Дата начала действия", "Effective from", recovery.Format(DisplayDateLayout), 1),
		sameValue(models.AttrTypeDate, "Действует до", "Valid until", validUntil.Format(DisplayDateLayout), 1),
		{
			Type:    models.AttrTypeFullName,
			Title:   "ФИО",
			EnTitle: "Full name",
			Value:   name,
			EnValue: enName,
			Order:   3,
		},
		sameValue(models.AttrTypePassport, "Паспорт", "National passport", passport, 4),
		sameValue(models.AttrTypeBirthDate, "Дата рождения", "Date of birth", bday.Format(DisplayDateLayout), 6),
	}

	return &models.CertificateCheck{
		Items: []models.CertificateItem{{
			Type:               itemType,
			ID:                 rec.ID,
			Attrs:              attrs,
			Title:              itemTitle,
			EnTitle:            itemEnTitle,
			QR:                 rec.QR,
			Status:             itemStatus,
			Order:              0,
			ExpiredAt:          validUntil.Format(DisplayDateLayout),
			ServiceUnavailable: false,
		}},
		HasNext: false,
	}, nil
}

func sameValue(typ, title, enTitle, value string, order int) models.Attribute {
	return models.Attribute{
		Type:    typ,
		Title:   title,
		EnTitle: enTitle,
		Value:   value,
		EnValue: value,
		Order:   order,
	}
}
