package handler

import (
	"encoding/base64"
	"time"

	"qrpass/internal/platform/config"
	"qrpass/internal/token/models"
)

// RenderVerification tells the front end to show the verification page.
const RenderVerification = "verification"

// IssueResponse is the HTTP response for POST /qr-gen.
type IssueResponse struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	QR             string    `json:"qr"`
	ExpiresAt      time.Time `json:"expires_at"`
	ExpiresAtLocal string    `json:"expires_at_local,omitempty"`
}

// VerifyResponse is returned for a live identifier.
type VerifyResponse struct {
	Render string `json:"render"`
	ID     string `json:"id"`
}

// ProfileResponse is the HTTP response for GET /qr-gen/profile.
type ProfileResponse struct {
	Username string          `json:"username"`
	Identity config.Identity `json:"identity"`
}

// FromIssueResult converts a domain IssueResult to an HTTP response.
func FromIssueResult(result *models.IssueResult) *IssueResponse {
	return &IssueResponse{
		ID:             result.ID,
		URL:            result.URL,
		QR:             base64.StdEncoding.EncodeToString(result.QR),
		ExpiresAt:      result.ExpiresAt,
		ExpiresAtLocal: result.ExpiresAtLocal,
	}
}
