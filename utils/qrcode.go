package utils

import (
	"github.com/skip2/go-qrcode"
)

// GenerateQRCode 生成二维码 — renders text as a 256x256 PNG.
func GenerateQRCode(text string) ([]byte, error) {
	return qrcode.Encode(text, qrcode.Medium, 256)
}
