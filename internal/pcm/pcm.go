// Package pcm narrows the decoder's 32-bit-normalized output samples back
// down to their native bit depth, for the two output paths cmd/foxflac-decode
// offers: a conventional WAV file, or a headerless interleaved PCM stream
// suitable for feeding directly into a DMA-driven playback buffer.
package pcm

import (
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// Narrow arithmetic-right-shifts every normalized sample back down to
// sampleSize bits and widens the result to int, the type go-audio/wav's
// audio.IntBuffer expects.
func Narrow(samples []int32, sampleSize uint8) []int {
	out := make([]int, len(samples))
	shift := 32 - sampleSize
	for i, s := range samples {
		out[i] = int(s >> shift)
	}
	return out
}

// WriteRaw narrows samples to sampleSize bits and writes them to w as a
// tightly packed, headerless, big-endian bitstream: no byte padding between
// samples, matching the wire format a ring-buffer-fed DMA playback pipeline
// would expect rather than a byte-aligned container format.
func WriteRaw(w io.Writer, samples []int32, sampleSize uint8) error {
	bw := bitio.NewWriter(w)
	shift := 32 - sampleSize
	for _, s := range samples {
		narrowed := uint64(uint32(s>>shift)) & ((1 << sampleSize) - 1)
		if err := bw.WriteBits(narrowed, sampleSize); err != nil {
			return errors.Wrap(err, "pcm: write sample")
		}
	}
	if err := bw.Close(); err != nil {
		return errors.Wrap(err, "pcm: flush")
	}
	return nil
}
