// Package labels prepares material QR codes for the print stations.
package labels

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrNoQRCode  = errors.New("material has no qr code")
	ErrNotPNG    = errors.New("qr code is not a png image")
	pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
)

// DecodeQRCode turns the base64 qrcode attribute into PNG bytes. Both bare
// base64 and data URLs are accepted.
func DecodeQRCode(encoded string) ([]byte, error) {
	s := strings.TrimSpace(encoded)
	if s == "" {
		return nil, ErrNoQRCode
	}
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// some encoders drop the padding
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, err
		}
	}
	if !bytes.HasPrefix(raw, pngSignature) {
		return nil, ErrNotPNG
	}
	return raw, nil
}
