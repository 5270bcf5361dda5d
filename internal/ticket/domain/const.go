// Package domain defines the code formats, identities and records of the offline
// ticket protocol shared by issuers and validators.
package domain

// Control characters leading every code.
const (
	CtrlPairing         byte = 'X'
	CtrlRedeemMarker    byte = 'Y'
	CtrlRedeemTimestamp byte = 'Z'
)

// Code and field sizes.
const (
	PairingCodeLength    = 46
	RedemptionCodeLength = 41

	SerialNumberLength = 9
	PayoutLength       = 8
	PrinterIDSize      = 6
	NonceSize          = 4
	TailSize           = 4

	// PlaintextSize is the semantically defined prefix of a redemption payload.
	PlaintextSize = PayoutLength + NonceSize + TailSize

	// CiphertextSize is the encrypted payload carried by a redemption code.
	CiphertextSize = 16

	pairingPayloadSize    = PrinterIDSize + 4 + 16
	redemptionPayloadSize = PrinterIDSize + CiphertextSize
)

// NonTimestampTail fills the plaintext tail of 'Y' codes.
var NonTimestampTail = []byte("#$%&")
