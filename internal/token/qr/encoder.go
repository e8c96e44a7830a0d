// Package qr renders verification URLs as PNG QR codes.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultScale is the number of pixels per QR module.
const DefaultScale = 4

// Encoder renders content with a fixed recovery level.
type Encoder struct {
	Level qrcode.RecoveryLevel
}

// NewEncoder returns an Encoder at medium (15%) recovery.
func NewEncoder() *Encoder {
	return &Encoder{Level: qrcode.Medium}
}

// Encode renders content as a PNG where every module is scale pixels wide.
// Non-positive scale falls back to DefaultScale. Output is deterministic.
func (e *Encoder) Encode(content string, scale int) ([]byte, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	// negative size selects pixels-per-module sizing
	png, err := qrcode.Encode(content, e.Level, -scale)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
