package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"qrpass/internal/token/models"
	dErrors "qrpass/pkg/domain-errors"
)

// IssueRequest is the HTTP request body for POST /qr-gen.
type IssueRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	SecondName string `json:"second_name"`
	BirthDay   string `json:"b_day"`
	Series     string `json:"series"`
	Number     string `json:"number"`
	Timezone   string `json:"timezone,omitempty"`
	// Expire is the validity in seconds. Non-positive values are accepted and
	// produce a record that is gone immediately.
	Expire *int   `json:"expire,omitempty"`
	Lang   string `json:"lang,omitempty"`
}

func (r *IssueRequest) Normalize() {
	if r == nil {
		return
	}
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.SecondName = strings.TrimSpace(r.SecondName)
	r.BirthDay = strings.TrimSpace(r.BirthDay)
	r.Series = strings.TrimSpace(r.Series)
	r.Number = strings.TrimSpace(r.Number)
	r.Timezone = strings.TrimSpace(r.Timezone)
	r.Lang = strings.ToLower(strings.TrimSpace(r.Lang))
}

// Validate implements httputil.Validatable.
func (r *IssueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	names := []struct{ field, value string }{
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"second_name", r.SecondName},
	}
	for _, n := range names {
		if !govalidator.StringLength(n.value, "1", "100") {
			return dErrors.New(dErrors.CodeValidation, n.field+" must be 1-100 characters")
		}
	}

	if _, err := time.Parse(models.BirthDayLayout, r.BirthDay); err != nil {
		return dErrors.New(dErrors.CodeValidation, "b_day must be YYYY-MM-DD")
	}

	if !govalidator.IsNumeric(r.Series) || !govalidator.StringLength(r.Series, "1", "10") {
		return dErrors.New(dErrors.CodeValidation, "series must be 1-10 digits")
	}
	if !govalidator.IsNumeric(r.Number) || !govalidator.StringLength(r.Number, "1", "10") {
		return dErrors.New(dErrors.CodeValidation, "number must be 1-10 digits")
	}

	if r.Timezone != "" {
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			return dErrors.New(dErrors.CodeValidation, "timezone must be an IANA zone name")
		}
	}

	if r.Expire != nil && *r.Expire > models.MaxTTLSeconds {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("expire must not exceed %d seconds", models.MaxTTLSeconds))
	}

	if r.Lang != "" && (!govalidator.IsAlpha(r.Lang) || !govalidator.StringLength(r.Lang, "2", "8")) {
		return dErrors.New(dErrors.CodeValidation, "lang must be 2-8 letters")
	}
	return nil
}

// Fields returns the identity attributes to persist.
func (r *IssueRequest) Fields() models.Fields {
	f := models.Fields{
		models.FieldFirstName:  r.FirstName,
		models.FieldLastName:   r.LastName,
		models.FieldSecondName: r.SecondName,
		models.FieldBirthDay:   r.BirthDay,
		models.FieldSeries:     r.Series,
		models.FieldNumber:     r.Number,
	}
	if r.Timezone != "" {
		f[models.FieldTimezone] = r.Timezone
	}
	return f
}
