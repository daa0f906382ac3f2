package report

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"example.com/nvcapgate/internal/nvcap"
)

const defaultQRSize = 128

// NVCAPToQR encodes an NVCAP value as a QR code PNG. The payload uses the
// grouped form calc prints, e.g. "05010100 08000100 ...", so a scan can be
// pasted next to the CLI output and compared directly.
func NVCAPToQR(value string, size int) ([]byte, error) {
	raw, err := parseNVCAP(value)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultQRSize
	}
	return qrcode.Encode(nvcap.FormatHex(raw), qrcode.Medium, size)
}

// parseNVCAP accepts the hex value with any spacing or case and requires it
// to hold exactly one packed capability word.
func parseNVCAP(value string) ([]byte, error) {
	clean := strings.Join(strings.Fields(value), "")
	if clean == "" {
		return nil, errors.New("nvcap value is empty")
	}
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("nvcap value %q: %w", value, err)
	}
	if len(raw) != nvcap.Size {
		return nil, fmt.Errorf("nvcap value is %d bytes, want %d", len(raw), nvcap.Size)
	}
	return raw, nil
}
