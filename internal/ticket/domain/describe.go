package domain

import (
	"fmt"

	"github.com/allisson/ticketsentry/internal/codec"
)

// DiagnosticTimeLayout renders decoded timestamps in diagnostics.
const DiagnosticTimeLayout = "2006-01-02 15:04:05"

// Describe decomposes a pairing or redemption code for human inspection. It
// dispatches on length and control character only, never decrypts and never
// fails: problems are reported in the returned text.
//
// Redemption fields are raw ciphertext slices at the offsets of the plaintext
// layout; they are not the decrypted values.
func Describe(code string) string {
	switch len(code) {
	case PairingCodeLength:
		return describePairing(code)
	case RedemptionCodeLength:
		return describeRedemption(code)
	default:
		return "Unknown code format"
	}
}

func describePairing(code string) string {
	if code[0] != CtrlPairing {
		return fmt.Sprintf("Pairing is missing control code %c", CtrlPairing)
	}

	payload, err := codec.Base64Decode(code[1+SerialNumberLength:])
	if err != nil || len(payload) != pairingPayloadSize {
		return "Pairing payload is not a valid base64 security triplet"
	}

	return fmt.Sprintf(
		"SN# %s, PID %s, IV=%s, AES=%s",
		code[1:1+SerialNumberLength],
		codec.HexEncode(payload[:PrinterIDSize]),
		codec.HexEncode(payload[PrinterIDSize:PrinterIDSize+4]),
		codec.HexEncode(payload[PrinterIDSize+4:]),
	)
}

func describeRedemption(code string) string {
	if code[0] != CtrlRedeemMarker && code[0] != CtrlRedeemTimestamp {
		return fmt.Sprintf(
			"Redemption is missing control code %c or %c",
			CtrlRedeemMarker,
			CtrlRedeemTimestamp,
		)
	}

	payout := code[1 : 1+PayoutLength]
	payload, err := codec.Base64Decode(code[1+PayoutLength:])
	if err != nil || len(payload) != redemptionPayloadSize {
		return "Redemption payload is not a valid base64 ticket"
	}

	printerID := payload[:PrinterIDSize]
	cipherPayout := payload[6:12]
	cipherNonce := payload[12:16]
	cipherTail := payload[16:20]

	if code[0] == CtrlRedeemTimestamp {
		decoded := "invalid"
		if ts, err := codec.DecodeTimestamp(cipherTail); err == nil {
			decoded = ts.Format(DiagnosticTimeLayout)
		}
		return fmt.Sprintf(
			"Payout %s, PID %s, cipher_payout=%s, cipher_nonce=%s, timestamp=%s, decoded_timestamp=%s",
			PrettyPayout(payout),
			codec.HexEncode(printerID),
			codec.HexEncode(cipherPayout),
			codec.HexEncode(cipherNonce),
			codec.HexEncode(cipherTail),
			decoded,
		)
	}

	return fmt.Sprintf(
		"Payout %s, PID %s, cipher_payout=%s, cipher_nonce=%s, cipher_padding=%s",
		PrettyPayout(payout),
		codec.HexEncode(printerID),
		codec.HexEncode(cipherPayout),
		codec.HexEncode(cipherNonce),
		codec.HexEncode(cipherTail),
	)
}
