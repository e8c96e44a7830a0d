package models

import (
	"sort"
	"time"
)

// Stored field names of a token record.
const (
	FieldFirstName  = "first_name"
	FieldLastName   = "last_name"
	FieldSecondName = "second_name"
	FieldBirthDay   = "b_day"
	FieldSeries     = "series"
	FieldNumber     = "number"
	FieldTimezone   = "timezone"
	FieldQR         = "qr"
)

// MaxTTLSeconds bounds an explicit validity. Larger values would overflow
// time.Duration and reach the store as a negative expiry.
const MaxTTLSeconds = 366 * 24 * 60 * 60

// BirthDayLayout is the stored format of FieldBirthDay.
const BirthDayLayout = "2006-01-02"

// IdentityFieldNames lists the identity attributes an issuer may persist.
var IdentityFieldNames = []string{
	FieldFirstName,
	FieldLastName,
	FieldSecondName,
	FieldBirthDay,
	FieldSeries,
	FieldNumber,
	FieldTimezone,
}

// Fields maps identity attribute names to values.
type Fields map[string]string

// Identity keeps only known identity attributes. Empty optional timezone is dropped.
func (f Fields) Identity() Fields {
	out := make(Fields, len(IdentityFieldNames))
	for _, name := range IdentityFieldNames {
		v, ok := f[name]
		if !ok {
			continue
		}
		if name == FieldTimezone && v == "" {
			continue
		}
		out[name] = v
	}
	return out
}

// Names returns the field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Record is a token record as held in the ephemeral store.
//
// Invariants:
//   - ID is the store key; the record exists only until its TTL elapses
//   - QR is the base64 PNG of the verification URL
type Record struct {
	ID     string
	Fields Fields
	QR     string
}

// StoreFields flattens the record into the hash written to the store.
func (r Record) StoreFields() map[string]string {
	out := make(map[string]string, len(r.Fields)+1)
	for k, v := range r.Fields.Identity() {
		out[k] = v
	}
	out[FieldQR] = r.QR
	return out
}

// RecordFromStore rebuilds a record from a stored hash.
func RecordFromStore(id string, stored map[string]string) Record {
	fields := make(Fields, len(stored))
	for k, v := range stored {
		if k == FieldQR {
			continue
		}
		fields[k] = v
	}
	return Record{ID: id, Fields: fields.Identity(), QR: stored[FieldQR]}
}

// IssueRequest is the input of token issuance.
type IssueRequest struct {
	Fields Fields
	// TTLSeconds overrides the default validity when non-nil. Non-positive
	// values are passed to the store unchanged; values above MaxTTLSeconds
	// are rejected.
	TTLSeconds *int
	// Host is the externally reachable host embedded in the URL.
	Host string
	// Locale is the lang query value; empty selects the service default.
	Locale string
}

// IssueResult is returned to the issuing operator.
type IssueResult struct {
	ID        string
	URL       string
	QR        []byte
	ExpiresAt time.Time
	// ExpiresAtLocal is ExpiresAt rendered in the record's timezone, or ""
	// when no valid timezone was supplied.
	ExpiresAtLocal string
}

// Outcome is the terminal state of a resolution.
type Outcome string

const (
	OutcomeRedirect Outcome = "redirect"
	OutcomeRender   Outcome = "render"
)

// Resolution tells the front end what to do with a verification request.
type Resolution struct {
	Outcome     Outcome
	ID          string
	RedirectURL string
}
