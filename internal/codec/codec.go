// Package codec implements the byte encodings used inside pairing and
// redemption codes: uppercase hex, padded standard base64, and the 4-byte
// minute-resolution timestamp.
package codec

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// HexEncode returns the uppercase hex representation of b, two characters per byte.
func HexEncode(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// HexDecode parses a hex string in either case.
func HexDecode(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex: %v", ErrDecode, err)
	}
	return b, nil
}

// Base64Encode encodes b with the standard alphabet and padding.
func Base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Base64Decode decodes a padded standard base64 string.
func Base64Decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrDecode, err)
	}
	return b, nil
}
