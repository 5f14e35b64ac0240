package bytes

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// EncodeHex renders data as uppercase hex, matching the original
// runtime's encodeHexString output.
func EncodeHex(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}

// DecodeHex parses a hex string (either case) back to bytes.
func DecodeHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// EncodeBase64 renders data using the standard, padded base64 alphabet.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 parses standard, padded base64 back to bytes.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
