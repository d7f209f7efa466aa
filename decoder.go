/*
Links:
	http://flac.sourceforge.net/format.html
	http://flac.sourceforge.net/api/hierarchy.html
	https://github.com/xiph/flac
*/

// Package foxflac implements a pull-style FLAC (Free Lossless Audio Codec)
// decoder.
//
// Unlike a conventional io.Reader-based decoder, Decoder never blocks and
// never allocates once constructed: a caller drives it by repeatedly
// calling Process with whatever input bytes and output capacity happen to
// be available, including a single byte or a single sample slot at a time.
// The decoder reports exactly how much it consumed and produced, and its
// caller-visible State always reflects genuine progress through the
// stream.
package foxflac

import (
	"github.com/pkg/errors"

	"github.com/mewkiz/foxflac/frame"
	"github.com/mewkiz/foxflac/internal/bitstream"
	"github.com/mewkiz/foxflac/internal/hashutil/crc16"
	"github.com/mewkiz/foxflac/internal/hashutil/crc8"
	"github.com/mewkiz/foxflac/internal/rice"
	"github.com/mewkiz/foxflac/meta"
)

// MaxChannelCount is the largest channel count a FLAC stream may declare.
const MaxChannelCount = 8

// MaxBlockSize is the largest block size in samples a FLAC stream may use.
const MaxBlockSize = 65535

// Decoder is a single-stream FLAC decoder. Construct one with NewDecoder
// and drive it with repeated calls to Process; a Decoder decodes exactly
// one stream at a time, but Reset returns it to StateInit so it can be
// reused for another.
//
// A Decoder must not be driven from more than one goroutine concurrently,
// but distinct Decoder instances share no state and may run on separate
// goroutines freely.
type Decoder struct {
	maxBlockSize uint32
	maxChannels  uint8

	state State
	priv  privState

	reader *bitstream.Reader

	crc8  uint8
	crc16 uint16
	// sinkDual feeds consumed bytes into both running checksums (used
	// while reading frame header fields); sinkCRC16 feeds only the frame
	// checksum (used for everything from the subframes onward up to and
	// including the footer's own alignment padding). Both are constructed
	// once, in NewDecoder, to keep Process allocation-free.
	sinkDual  bitstream.ByteSink
	sinkCRC16 bitstream.ByteSink

	streamInfo meta.StreamInfo

	// Metadata scratch.
	metaHdr      meta.BlockHeader
	metaBytesRem uint32

	// Frame header scratch.
	fh             frame.Header
	blockSizeCode  uint8
	sampleRateCode uint8
	channelCode    uint8

	// Subframe scratch.
	chanCur int
	blkCur  int

	sfPred       frame.Pred
	sfOrder      uint8
	sfWastedBits uint8
	sfLPCPrec    uint8
	sfLPCShift   uint8
	sfCoefCur    int
	lpcCoeffs    [32]int64

	residualMethod uint8
	partitionOrder uint8
	riceDec        rice.Decoder

	// sampleBuf is the single backing allocation for every channel's
	// sample block, sized maxChannels*maxBlockSize and sliced into
	// channels below. Neither is ever reallocated after NewDecoder.
	sampleBuf []int32
	channels  [][]int32
}

// SizeRequired reports (for API parity with the library this decoder is
// modeled on) the byte size of the per-channel sample storage a Decoder
// with the given bounds uses: maxChannels*maxBlockSize 32-bit samples. Go's
// garbage collector makes the byte count itself advisory; NewDecoder
// performs the equivalent single allocation internally. SizeRequired
// returns 0 if maxBlockSize or maxChannels is out of range.
func SizeRequired(maxBlockSize uint32, maxChannels uint8) uint32 {
	if !validParams(maxBlockSize, maxChannels) {
		return 0
	}
	return uint32(maxChannels) * maxBlockSize * 4
}

func validParams(maxBlockSize uint32, maxChannels uint8) bool {
	return maxBlockSize >= 1 && maxBlockSize <= MaxBlockSize &&
		maxChannels >= 1 && maxChannels <= MaxChannelCount
}

// NewDecoder constructs a Decoder bounded to the given maximum block size
// (samples per channel per frame) and maximum channel count. Every buffer
// the decoder will ever need is allocated here, once; Process never
// allocates. An error is returned if the parameters are out of range.
func NewDecoder(maxBlockSize uint32, maxChannels uint8) (*Decoder, error) {
	if !validParams(maxBlockSize, maxChannels) {
		return nil, errors.Errorf("foxflac.NewDecoder: parameters out of range (max_block_size=%d, max_channels=%d)", maxBlockSize, maxChannels)
	}
	d := &Decoder{
		maxBlockSize: maxBlockSize,
		maxChannels:  maxChannels,
		reader:       bitstream.NewReader(),
		sampleBuf:    make([]int32, uint32(maxChannels)*maxBlockSize),
		channels:     make([][]int32, maxChannels),
	}
	for c := uint8(0); c < maxChannels; c++ {
		lo := uint32(c) * maxBlockSize
		d.channels[c] = d.sampleBuf[lo : lo+maxBlockSize]
	}
	d.sinkDual = func(b byte) {
		d.crc8 = crc8.Update(d.crc8, b)
		d.crc16 = crc16.Update(d.crc16, b)
	}
	d.sinkCRC16 = func(b byte) {
		d.crc16 = crc16.Update(d.crc16, b)
	}
	d.Reset()
	return d, nil
}

// Reset returns the decoder to StateInit, ready to decode a new stream. The
// configured bounds (maxBlockSize, maxChannels) and their backing buffers
// are kept; every other scratch field is cleared.
func (d *Decoder) Reset() {
	d.reader.Reset()
	d.state = StateInit
	d.priv = psSyncInit
	d.crc8 = 0
	d.crc16 = 0
	d.streamInfo = meta.StreamInfo{}
	d.metaHdr = meta.BlockHeader{Type: meta.TypeInvalid}
	d.metaBytesRem = 0
	d.fh = frame.Header{}
	d.blockSizeCode = 0
	d.sampleRateCode = 0
	d.channelCode = 0
	d.chanCur = 0
	d.blkCur = 0
	d.sfPred = 0
	d.sfOrder = 0
	d.sfWastedBits = 0
	d.sfLPCPrec = 0
	d.sfLPCShift = 0
	d.sfCoefCur = 0
	d.lpcCoeffs = [32]int64{}
	d.riceDec = rice.Decoder{}
	d.residualMethod = 0
	d.partitionOrder = 0
}

// State reports the decoder's current position in the stream.
func (d *Decoder) State() State {
	return d.state
}

// StreamInfo returns the value selected by key from the STREAMINFO block,
// valid from StateEndOfMetadata onward. ok is false for an unrecognized
// key, matching the "reserved sentinel" contract.
func (d *Decoder) StreamInfo(key meta.Key) (value int64, ok bool) {
	return d.streamInfo.Get(key)
}

// Process drives the decoder forward. It consumes a prefix of in and
// produces a prefix of out, reporting how much of each it actually used.
// out may be nil, in which case decoded samples are silently discarded (the
// decoder still advances and reports state transitions normally). Process
// never blocks: it returns as soon as it cannot make further progress with
// the input and output given, which may be immediately.
func (d *Decoder) Process(in []byte, out []int32) (consumed, produced int, state State) {
	if d.state == StateErr {
		return 0, 0, StateErr
	}
	d.reader.SetSource(in)

	outPos := 0
	oldState := d.state
	for {
		if d.state == StateErr {
			break
		}
		if oldState != d.state {
			oldState = d.state
			if d.state == StateEndOfMetadata || d.state == StateEndOfFrame {
				break
			}
		}

		var cont bool
		switch d.state {
		case StateInit:
			cont = d.processInit()
		case StateInMetadata:
			cont = d.processInMetadata()
		case StateEndOfMetadata, StateEndOfFrame:
			d.state = StateSearchFrame
			d.priv = psFrameSync
			cont = true
		case StateSearchFrame:
			cont = d.processSearchFrame()
		case StateInFrame:
			cont = d.processInFrame()
		case StateDecodedFrame:
			if out == nil {
				d.state = StateEndOfFrame
				cont = true
				break
			}
			var n int
			n, cont = d.processDecodedFrame(out[outPos:])
			outPos += n
		default:
			d.state = StateErr
			cont = false
		}
		if !cont {
			break
		}
	}

	return d.reader.Consumed(), outPos, d.state
}

// handleErr applies the decoder's two-tier error policy: while still
// hunting for metadata, any error is fatal, and handleErr returns false (no
// further progress is possible); once streaming frames, an error
// resynchronizes at the next frame sync code instead, and handleErr returns
// true (the state machine should keep dispatching, now hunting for sync).
// Both return values follow the boolean convention every process* method
// shares: true means "call me again", false means "out of input or output".
func (d *Decoder) handleErr() bool {
	if d.state < StateEndOfMetadata {
		d.state = StateErr
		return false
	}
	d.state = StateSearchFrame
	d.priv = psFrameSync
	return true
}
