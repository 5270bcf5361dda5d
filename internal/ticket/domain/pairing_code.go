package domain

import (
	"fmt"

	"github.com/allisson/ticketsentry/internal/codec"
)

// PairingCode is the decoded form of 'X' + serial + base64(id ‖ iv ‖ key).
type PairingCode struct {
	SerialNumber string
	Triplet      SecurityTriplet
}

// FormatPairingCode builds the 46-character pairing code.
func FormatPairingCode(serialNumber string, triplet SecurityTriplet) (string, error) {
	if err := ValidateSerialNumber(serialNumber); err != nil {
		return "", err
	}
	if err := triplet.Validate(); err != nil {
		return "", err
	}

	payload := make([]byte, 0, pairingPayloadSize)
	payload = append(payload, triplet.PrinterID...)
	payload = append(payload, triplet.IV...)
	payload = append(payload, triplet.Key...)

	return string(CtrlPairing) + serialNumber + codec.Base64Encode(payload), nil
}

// ParsePairingCode decodes a pairing code. The serial number is informational
// and is not checked against any registry.
func ParsePairingCode(code string) (*PairingCode, error) {
	if len(code) != PairingCodeLength || code[0] != CtrlPairing {
		return nil, ErrInvalidFormat
	}

	payload, err := codec.Base64Decode(code[1+SerialNumberLength:])
	if err != nil {
		return nil, err
	}
	if len(payload) != pairingPayloadSize {
		return nil, fmt.Errorf("%w: pairing payload is %d bytes", codec.ErrDecode, len(payload))
	}

	return &PairingCode{
		SerialNumber: code[1 : 1+SerialNumberLength],
		Triplet: SecurityTriplet{
			PrinterID: payload[:PrinterIDSize],
			IV:        payload[PrinterIDSize : PrinterIDSize+4],
			Key:       payload[PrinterIDSize+4:],
		},
	}, nil
}
