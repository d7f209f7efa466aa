package foxflac_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mewkiz/foxflac"
	"github.com/mewkiz/foxflac/meta"
)

// streamInfoOnly is the 42-byte STREAMINFO-only stream used throughout the
// metadata scenarios: min_block_size=max_block_size=4096, min_frame_size=16,
// max_frame_size=12695, sample_rate=44100, channels=2, sample_size=16,
// n_samples=9062550.
var streamInfoOnly = []byte{
	0x66, 0x4c, 0x61, 0x43, 0x80, 0x00, 0x00, 0x22, 0x10, 0x00, 0x10, 0x00,
	0x00, 0x00, 0x10, 0x00, 0x31, 0x97, 0x0a, 0xc4, 0x42, 0xf0, 0x00, 0x8a,
	0x48, 0x96, 0x45, 0x61, 0x31, 0x02, 0x8b, 0xfb, 0x21, 0xe5, 0x5f, 0xfb,
	0x6e, 0xdf, 0x48, 0xce, 0x9f, 0xae,
}

// multiBlockMeta carries the same STREAMINFO followed by an empty SEEKTABLE
// and a 4-byte placeholder VORBIS_COMMENT.
var multiBlockMeta = []byte{
	0x66, 0x4c, 0x61, 0x43, 0x00, 0x00, 0x00, 0x22, 0x10, 0x00, 0x10, 0x00,
	0x00, 0x00, 0x10, 0x00, 0x31, 0x97, 0x0a, 0xc4, 0x42, 0xf0, 0x00, 0x8a,
	0x48, 0x96, 0x45, 0x61, 0x31, 0x02, 0x8b, 0xfb, 0x21, 0xe5, 0x5f, 0xfb,
	0x6e, 0xdf, 0x48, 0xce, 0x9f, 0xae,
	0x03, 0x00, 0x00, 0x00,
	0x84, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00,
}

// invalidLengthMeta declares a STREAMINFO body of 33 bytes, one short of
// the format's fixed 34.
var invalidLengthMeta = []byte{
	0x66, 0x4c, 0x61, 0x43, 0x80, 0x00, 0x00, 0x21, 0x10, 0x00, 0x10, 0x00,
	0x00, 0x00, 0x10, 0x00, 0x31, 0x97, 0x0a, 0xc4, 0x42, 0xf0, 0x00, 0x8a,
	0x48, 0x96, 0x45, 0x61, 0x31, 0x02, 0x8b, 0xfb, 0x21, 0xe5, 0x5f, 0xfb,
	0x6e, 0xdf, 0x48, 0xce, 0x9f,
}

// singleFrameMeta is a minimal STREAMINFO declaring block_size=4, mono,
// 8-bit samples, 4 total samples, matching singleFrame below.
var singleFrameMeta = []byte{
	0x66, 0x4c, 0x61, 0x43, 0x80, 0x00, 0x00, 0x22, 0x00, 0x04, 0x00, 0x04,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0a, 0xc4, 0x40, 0x70, 0x00, 0x00,
	0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// singleFrame is one fixed-predictor-order-2 mono frame, block_size=4,
// 8-bit samples, Rice parameter 2, warm-up samples {10, 12} and residuals
// {1, -2}, decoding to {10, 12, 15, 16} before the 32-bit normalization
// shift, {167772160, 201326592, 251658240, 268435456} after it.
var singleFrame = []byte{
	0xff, 0xf8, 0x69, 0x02, 0x00, 0x03, 0x93, 0x14, 0x0a, 0x0c, 0x00, 0xb7,
	0x21, 0x8d,
}

var singleFrameSamples = []int32{167772160, 201326592, 251658240, 268435456}

func newTestDecoder(t *testing.T) *foxflac.Decoder {
	t.Helper()
	dec, err := foxflac.NewDecoder(foxflac.MaxBlockSize, foxflac.MaxChannelCount)
	require.NoError(t, err)
	return dec
}

func TestMetadataOnly(t *testing.T) {
	dec := newTestDecoder(t)

	consumed, produced, state := dec.Process(streamInfoOnly, nil)
	require.Equal(t, len(streamInfoOnly), consumed)
	require.Equal(t, 0, produced)
	require.Equal(t, foxflac.StateEndOfMetadata, state)

	checkStreamInfo := func(key meta.Key, want int64) {
		got, ok := dec.StreamInfo(key)
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	checkStreamInfo(meta.KeyMinBlockSize, 4096)
	checkStreamInfo(meta.KeyMaxBlockSize, 4096)
	checkStreamInfo(meta.KeyMinFrameSize, 16)
	checkStreamInfo(meta.KeyMaxFrameSize, 12695)
	checkStreamInfo(meta.KeySampleRate, 44100)
	checkStreamInfo(meta.KeyChannelCount, 2)
	checkStreamInfo(meta.KeySampleSize, 16)
	checkStreamInfo(meta.KeySampleCount, 9062550)

	wantMD5 := []byte{0x45, 0x61, 0x31, 0x02, 0x8b, 0xfb, 0x21, 0xe5, 0x5f, 0xfb, 0x6e, 0xdf, 0x48, 0xce, 0x9f, 0xae}
	for i, want := range wantMD5 {
		got, ok := dec.StreamInfo(meta.KeyMD5Sum0 + meta.Key(i))
		require.True(t, ok)
		require.EqualValues(t, want, got)
	}
}

func TestMultiBlockMetadata(t *testing.T) {
	dec := newTestDecoder(t)

	transitions := 0
	in := multiBlockMeta
	for {
		consumed, _, state := dec.Process(in, nil)
		in = in[consumed:]
		if state == foxflac.StateEndOfMetadata {
			transitions++
		}
		if len(in) == 0 || state == foxflac.StateErr {
			break
		}
		if state == foxflac.StateSearchFrame {
			break
		}
	}
	require.Equal(t, 1, transitions)

	sampleRate, ok := dec.StreamInfo(meta.KeySampleRate)
	require.True(t, ok)
	require.EqualValues(t, 44100, sampleRate)
}

func TestInvalidMetadataLength(t *testing.T) {
	dec := newTestDecoder(t)

	_, _, state := dec.Process(invalidLengthMeta, nil)
	require.Equal(t, foxflac.StateErr, state)

	// Once in StateErr, further calls consume nothing and stay put.
	consumed, produced, state := dec.Process([]byte{0x00}, nil)
	require.Equal(t, 0, consumed)
	require.Equal(t, 0, produced)
	require.Equal(t, foxflac.StateErr, state)
}

func TestLeadingJunk(t *testing.T) {
	dec := newTestDecoder(t)

	junk := make([]byte, 100)
	for i := range junk {
		junk[i] = byte(i*7 + 3) // arbitrary, never spells "fLaC"
	}
	stream := append(junk, streamInfoOnly...)

	totalConsumed := 0
	in := stream
	var state foxflac.State
	for {
		var consumed int
		consumed, _, state = dec.Process(in, nil)
		totalConsumed += consumed
		in = in[consumed:]
		if state == foxflac.StateEndOfMetadata || state == foxflac.StateErr {
			break
		}
		if consumed == 0 {
			break
		}
	}
	require.Equal(t, foxflac.StateEndOfMetadata, state)
	require.Equal(t, len(stream), totalConsumed)
}

// driveToSamples feeds stream to dec in windows of inChunk bytes and drains
// through an output buffer of outCap samples, mirroring cmd/foxflac-decode's
// double loop: the outer loop hands over a fresh window only once the inner
// loop can no longer make progress with what it already has. Chunking both
// sides keeps every state the decoder passes through, rather than just the
// two that a single oversized call would expose, observable in the returned
// sequence of distinct states.
func driveToSamples(dec *foxflac.Decoder, stream []byte, inChunk, outCap int) (samples []int32, states []foxflac.State) {
	out := make([]int32, outCap)
	lastState := foxflac.State(255)
	pos := 0
	for {
		end := pos + inChunk
		if end > len(stream) {
			end = len(stream)
		}
		chunk := stream[pos:end]
		pos = end
		for {
			consumed, produced, state := dec.Process(chunk, out)
			chunk = chunk[consumed:]
			if state != lastState {
				states = append(states, state)
				lastState = state
			}
			samples = append(samples, out[:produced]...)
			if consumed == 0 && produced == 0 {
				break
			}
		}
		if end >= len(stream) {
			break
		}
	}
	// Keep draining once the whole stream has been handed over: the last
	// frame's samples may still be sitting in the decoder's output path.
	for {
		_, produced, state := dec.Process(nil, out)
		if state != lastState {
			states = append(states, state)
			lastState = state
		}
		samples = append(samples, out[:produced]...)
		if produced == 0 {
			break
		}
	}
	return samples, states
}

func TestSingleFixedPredictorFrame(t *testing.T) {
	dec := newTestDecoder(t)

	stream := append(append([]byte{}, singleFrameMeta...), singleFrame...)
	samples, states := driveToSamples(dec, stream, 1, 1)

	require.Equal(t, singleFrameSamples, samples)
	require.Equal(t, []foxflac.State{
		// The first byte ('f') only advances the signature-hunt's private
		// sub-state; d.state itself is still StateInit when Process returns.
		foxflac.StateInit,
		foxflac.StateInMetadata,
		foxflac.StateEndOfMetadata,
		foxflac.StateSearchFrame,
		foxflac.StateInFrame,
		foxflac.StateDecodedFrame,
		foxflac.StateEndOfFrame,
		foxflac.StateSearchFrame,
	}, states)
}

func TestBytewiseDrive(t *testing.T) {
	dec := newTestDecoder(t)
	stream := append(append([]byte{}, singleFrameMeta...), singleFrame...)

	var samples []int32
	var states []foxflac.State
	lastState := foxflac.State(255)
	out := make([]int32, 1)

	for _, b := range stream {
		chunk := []byte{b}
		for {
			consumed, produced, state := dec.Process(chunk, out)
			chunk = chunk[consumed:]
			if state != lastState {
				states = append(states, state)
				lastState = state
			}
			if produced > 0 {
				samples = append(samples, out[0])
			}
			if consumed == 0 && produced == 0 {
				break
			}
		}
	}
	// Drain any remaining decoded samples once the final byte has been fed.
	for {
		_, produced, state := dec.Process(nil, out)
		if state != lastState {
			states = append(states, state)
			lastState = state
		}
		if produced > 0 {
			samples = append(samples, out[0])
		}
		if produced == 0 {
			break
		}
	}

	require.Equal(t, singleFrameSamples, samples)

	// Collapse consecutive duplicate states (one-byte-at-a-time drive
	// revisits the same state across many calls) and compare against the
	// transition sequence from the bulk drive.
	var collapsed []foxflac.State
	for _, s := range states {
		if len(collapsed) == 0 || collapsed[len(collapsed)-1] != s {
			collapsed = append(collapsed, s)
		}
	}
	require.Equal(t, []foxflac.State{
		foxflac.StateInit,
		foxflac.StateInMetadata,
		foxflac.StateEndOfMetadata,
		foxflac.StateSearchFrame,
		foxflac.StateInFrame,
		foxflac.StateDecodedFrame,
		foxflac.StateEndOfFrame,
		foxflac.StateSearchFrame,
	}, collapsed)
}

func TestResetIsIdempotent(t *testing.T) {
	stream := append(append([]byte{}, singleFrameMeta...), singleFrame...)

	fresh := newTestDecoder(t)
	freshSamples, freshStates := driveToSamples(fresh, stream, 1, 1)

	reused := newTestDecoder(t)
	_, _, _ = reused.Process(streamInfoOnly, nil) // dirty it on an unrelated stream first
	reused.Reset()
	reusedSamples, reusedStates := driveToSamples(reused, stream, 1, 1)

	require.Equal(t, freshSamples, reusedSamples)
	require.Equal(t, freshStates, reusedStates)
}

// TestArbitraryChunking feeds the single-frame stream (its STREAMINFO header
// plus one frame) through the decoder split at arbitrary byte boundaries and checks the
// final decoded output is identical regardless of how the input was
// partitioned, matching the pull contract's "process at any pace" property.
func TestArbitraryChunking(t *testing.T) {
	stream := append(append([]byte{}, singleFrameMeta...), singleFrame...)

	rapid.Check(t, func(rt *rapid.T) {
		dec := newTestDecoder(t)
		chunkSizes := rapid.SliceOfN(rapid.IntRange(1, 8), 1, 64).Draw(rt, "chunkSizes")

		out := make([]int32, 1)
		var samples []int32
		pos := 0
		idx := 0
		for pos < len(stream) {
			size := chunkSizes[idx%len(chunkSizes)]
			idx++
			end := pos + size
			if end > len(stream) {
				end = len(stream)
			}
			chunk := stream[pos:end]
			for {
				consumed, produced, _ := dec.Process(chunk, out)
				chunk = chunk[consumed:]
				pos += consumed
				if produced > 0 {
					samples = append(samples, out[0])
				}
				if consumed == 0 && produced == 0 {
					break
				}
			}
		}
		// Keep draining once all input has been fed, mirroring the tail of
		// driveToSamples.
		for {
			_, produced, _ := dec.Process(nil, out)
			if produced > 0 {
				samples = append(samples, out[0])
			} else {
				break
			}
		}
		require.Equal(rt, singleFrameSamples, samples)
	})
}
