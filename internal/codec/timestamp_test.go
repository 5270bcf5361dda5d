package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTimestamp(t *testing.T) {
	t.Run("leap year mid march", func(t *testing.T) {
		b, err := EncodeTimestamp(time.Date(2024, time.March, 15, 10, 30, 45, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, []byte{0x18, 0x01, 0xa2, 0xb6}, b)
	})

	t.Run("start of range", func(t *testing.T) {
		b, err := EncodeTimestamp(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, b)
	})

	t.Run("end of range", func(t *testing.T) {
		b, err := EncodeTimestamp(time.Date(2255, time.December, 31, 23, 59, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, byte(0xff), b[0])
	})

	t.Run("year before range", func(t *testing.T) {
		_, err := EncodeTimestamp(time.Date(1999, time.December, 31, 23, 59, 0, 0, time.UTC))
		assert.ErrorIs(t, err, ErrTimestampOutOfRange)
	})

	t.Run("year after range", func(t *testing.T) {
		_, err := EncodeTimestamp(time.Date(2256, time.January, 1, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, ErrTimestampOutOfRange)
	})
}

func TestDecodeTimestamp(t *testing.T) {
	t.Run("known bytes", func(t *testing.T) {
		ts, err := DecodeTimestamp([]byte{0x18, 0x01, 0xa2, 0xb6})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC), ts)
	})

	t.Run("fixed marker decodes to a meaningless date", func(t *testing.T) {
		ts, err := DecodeTimestamp([]byte("#$%&"))
		require.NoError(t, err)
		assert.Equal(t, time.Date(2039, time.July, 4, 0, 6, 0, 0, time.UTC), ts)
	})

	t.Run("minutes overflow rolls forward", func(t *testing.T) {
		ts, err := DecodeTimestamp([]byte{0x4e, 0xa1, 0xc6, 0x18})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2098, time.February, 27, 12, 8, 0, 0, time.UTC), ts)
	})

	t.Run("rolled past the last year", func(t *testing.T) {
		_, err := DecodeTimestamp([]byte{0xff, 0xff, 0xff, 0xff})
		assert.ErrorIs(t, err, ErrDecode)
		assert.ErrorIs(t, err, ErrTimestampOutOfRange)
	})

	t.Run("wrong width", func(t *testing.T) {
		_, err := DecodeTimestamp([]byte{0x18, 0x01, 0xa2})
		assert.ErrorIs(t, err, ErrDecode)
	})
}

func TestTimestampRoundTrip(t *testing.T) {
	start := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	for year := MinTimestampYear; year <= MaxTimestampYear; year += 17 {
		for _, offset := range []time.Duration{0, 59 * time.Minute, 40*24*time.Hour + 13*time.Hour + 7*time.Minute, 364 * 24 * time.Hour} {
			want := start.AddDate(year-MinTimestampYear, 0, 0).Add(offset).Truncate(time.Minute)

			b, err := EncodeTimestamp(want)
			require.NoError(t, err)

			got, err := DecodeTimestamp(b)
			require.NoError(t, err)
			assert.Equal(t, want, got, "year %d offset %s", year, offset)
		}
	}
}
