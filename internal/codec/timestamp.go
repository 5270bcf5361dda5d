package codec

import (
	"fmt"
	"time"
)

const (
	// TimestampSize is the encoded width of a timestamp.
	TimestampSize = 4

	// MinTimestampYear and MaxTimestampYear bound the one-byte year offset.
	MinTimestampYear = 2000
	MaxTimestampYear = 2255

	minutesPerDay = 24 * 60
)

// EncodeTimestamp packs t into 4 bytes: byte 0 is year-2000, bytes 1-3 are the
// big-endian count of minutes since January 1st of that year. Seconds are
// dropped. The wall clock fields of t are used as-is, without zone conversion.
func EncodeTimestamp(t time.Time) ([]byte, error) {
	year := t.Year()
	if year < MinTimestampYear || year > MaxTimestampYear {
		return nil, fmt.Errorf("%w: year %d", ErrTimestampOutOfRange, year)
	}

	minutes := t.Minute() + t.Hour()*60 + (t.YearDay()-1)*minutesPerDay

	return []byte{
		byte(year - MinTimestampYear),
		byte(minutes >> 16),
		byte(minutes >> 8),
		byte(minutes),
	}, nil
}

// DecodeTimestamp is the inverse of EncodeTimestamp. Any 4 bytes decode to
// some instant: a minute count larger than one year simply rolls forward,
// so bytes that never were a timestamp produce a valid but meaningless date.
// It fails only on a wrong input width or when the rolled-forward year is
// beyond MaxTimestampYear. The result is in UTC.
func DecodeTimestamp(b []byte) (time.Time, error) {
	if len(b) != TimestampSize {
		return time.Time{}, fmt.Errorf("%w: timestamp must be %d bytes, got %d", ErrDecode, TimestampSize, len(b))
	}

	year := MinTimestampYear + int(b[0])
	minutes := int(b[1])<<16 | int(b[2])<<8 | int(b[3])

	t := time.Date(year, time.January, 1, 0, minutes, 0, 0, time.UTC)
	if t.Year() > MaxTimestampYear {
		return time.Time{}, fmt.Errorf("%w: %w: year %d", ErrDecode, ErrTimestampOutOfRange, t.Year())
	}

	return t, nil
}
