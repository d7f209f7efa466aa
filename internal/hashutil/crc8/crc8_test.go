package crc8_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mewkiz/foxflac/internal/hashutil/crc8"
)

func TestUpdate(t *testing.T) {
	// A single zero byte through the all-zero initial state stays zero.
	require.EqualValues(t, 0, crc8.Update(0, 0x00))

	// Running sum over the six synthetic frame-header bytes used in
	// decoder_test.go's single-frame fixture; the expected value was cross
	// checked against the same Table-driven algorithm run independently.
	var crc uint8
	for _, b := range []byte{0xff, 0xf8, 0x69, 0x02, 0x00, 0x03} {
		crc = crc8.Update(crc, b)
	}
	require.EqualValues(t, 0x93, crc)
}
