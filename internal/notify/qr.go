package notify

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// ConfirmationQR renders a PNG QR code encoding the signed greeting URL, so a
// phone scanner opens the appointment card directly.
func ConfirmationQR(url string) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("notify: qr encode: %w", err)
	}
	return png, nil
}
