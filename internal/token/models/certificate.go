package models

import "encoding/json"

// Attribute types of a certificate item.
const (
	AttrTypeDate      = "date"
	AttrTypeFullName  = "fio"
	AttrTypePassport  = "passport"
	AttrTypeBirthDate = "birthDate"
)

// CertificateCheck is the response of a certificate check. The zero value is
// the explicit empty result and serializes to {}.
type CertificateCheck struct {
	Items   []CertificateItem `json:"items"`
	HasNext bool              `json:"hasNext"`
}

// CertificateItem is one certificate with its display attributes.
type CertificateItem struct {
	Type               string      `json:"type"`
	ID                 string      `json:"id"`
	Attrs              []Attribute `json:"attrs"`
	Title              string      `json:"title"`
	EnTitle            string      `json:"entitle"`
	QR                 string      `json:"qr"`
	Status             string      `json:"status"`
	Order              int         `json:"order"`
	ExpiredAt          string      `json:"expiredAt"`
	ServiceUnavailable bool        `json:"serviceUnavailable"`
}

// Attribute is a labelled display value in both scripts.
type Attribute struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	EnTitle string `json:"entitle"`
	Value   string `json:"value"`
	EnValue string `json:"envalue"`
	Order   int    `json:"order"`
}

// IsEmpty reports whether this is the not-found result.
func (c CertificateCheck) IsEmpty() bool {
	return len(c.Items) == 0
}

// MarshalJSON renders the empty result as {}.
func (c CertificateCheck) MarshalJSON() ([]byte, error) {
	if c.IsEmpty() {
		return []byte("{}"), nil
	}
	type plain CertificateCheck
	return json.Marshal(plain(c))
}
