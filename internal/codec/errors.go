package codec

import (
	"github.com/allisson/ticketsentry/internal/errors"
)

var (
	// ErrDecode indicates malformed hex/base64 input or an undecodable timestamp.
	ErrDecode = errors.Wrap(errors.ErrInvalidInput, "decode error")

	// ErrTimestampOutOfRange indicates a year outside 2000-2255, which the one-byte
	// year offset cannot represent.
	ErrTimestampOutOfRange = errors.Wrap(errors.ErrInvalidInput, "timestamp out of range")
)
