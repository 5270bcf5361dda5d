package service

import (
	"crypto/sha256"

	"github.com/allisson/ticketsentry/internal/codec"
)

type sha224Fingerprinter struct{}

// NewSHA224Fingerprinter hashes the full code text followed by the hex printer
// id and hex nonce. Two codes collide only on exact replay.
func NewSHA224Fingerprinter() Fingerprinter {
	return &sha224Fingerprinter{}
}

// Fingerprint returns the uppercase hex SHA-224 digest.
func (f *sha224Fingerprinter) Fingerprint(code, printerIDHex, nonceHex string) string {
	h := sha256.New224()
	_, _ = h.Write([]byte(code))
	_, _ = h.Write([]byte(printerIDHex))
	_, _ = h.Write([]byte(nonceHex))
	return codec.HexEncode(h.Sum(nil))
}
