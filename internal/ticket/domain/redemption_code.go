package domain

import (
	"encoding/binary"
	"fmt"

	"github.com/allisson/ticketsentry/internal/codec"
)

// RedemptionCode is the decoded form of ctrl + payout + base64(id ‖ ciphertext).
type RedemptionCode struct {
	TimestampMode bool
	Payout        string
	PrinterID     []byte
	Ciphertext    []byte
}

// Ctrl returns the control character for the code's mode.
func (r *RedemptionCode) Ctrl() byte {
	if r.TimestampMode {
		return CtrlRedeemTimestamp
	}
	return CtrlRedeemMarker
}

// String encodes the code as its 41-character text form.
func (r *RedemptionCode) String() string {
	payload := make([]byte, 0, redemptionPayloadSize)
	payload = append(payload, r.PrinterID...)
	payload = append(payload, r.Ciphertext...)
	return string(r.Ctrl()) + r.Payout + codec.Base64Encode(payload)
}

// ParseRedemptionCode decodes a redemption code without decrypting it.
func ParseRedemptionCode(code string) (*RedemptionCode, error) {
	if len(code) != RedemptionCodeLength {
		return nil, ErrInvalidFormat
	}
	if code[0] != CtrlRedeemMarker && code[0] != CtrlRedeemTimestamp {
		return nil, ErrInvalidFormat
	}

	payload, err := codec.Base64Decode(code[1+PayoutLength:])
	if err != nil {
		return nil, err
	}
	if len(payload) != redemptionPayloadSize {
		return nil, fmt.Errorf("%w: redemption payload is %d bytes", codec.ErrDecode, len(payload))
	}

	return &RedemptionCode{
		TimestampMode: code[0] == CtrlRedeemTimestamp,
		Payout:        code[1 : 1+PayoutLength],
		PrinterID:     payload[:PrinterIDSize],
		Ciphertext:    payload[PrinterIDSize:],
	}, nil
}

// Plaintext is the semantically defined 16-byte redemption payload:
// payout(8) ‖ nonce(4, big-endian) ‖ tail(4).
type Plaintext struct {
	Payout []byte
	Nonce  []byte
	Tail   []byte
}

// NewPlaintext assembles the payload block for an issued ticket.
func NewPlaintext(payout string, nonce uint32, tail []byte) ([]byte, error) {
	if err := ValidatePayout(payout); err != nil {
		return nil, err
	}
	if len(tail) != TailSize {
		return nil, fmt.Errorf("%w: tail must be %d bytes", ErrInvalidFormat, TailSize)
	}

	block := make([]byte, 0, PlaintextSize)
	block = append(block, payout...)
	block = binary.BigEndian.AppendUint32(block, nonce)
	block = append(block, tail...)
	return block, nil
}

// SplitPlaintext slices the leading 16 bytes of a decrypted payload. Bytes
// beyond PlaintextSize are padding and are ignored.
func SplitPlaintext(block []byte) (*Plaintext, error) {
	if len(block) < PlaintextSize {
		return nil, fmt.Errorf("%w: plaintext is %d bytes", codec.ErrDecode, len(block))
	}
	return &Plaintext{
		Payout: block[:PayoutLength],
		Nonce:  block[PayoutLength : PayoutLength+NonceSize],
		Tail:   block[PayoutLength+NonceSize : PlaintextSize],
	}, nil
}
