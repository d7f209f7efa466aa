// Package frame holds the pure, stateless portions of FLAC frame decoding:
// the frame and subframe header field tables, channel assignment, and the
// inter-channel decorrelation transforms. None of these functions perform
// I/O; the bit-level reads that feed them live in the root decoder package,
// which alone owns the bitstream cursor and the running CRCs.
//
// ref: http://flac.sourceforge.net/format.html#frame_header
package frame

// SyncCode is the 14 most significant bits of the 15-bit pattern expected at
// the start of every frame header; the 15th bit is a reserved bit that must
// be zero, bundled into the same peek/compare since it is never treated as
// a field in its own right.
//
// ref: http://flac.sourceforge.net/format.html#frame_header
const SyncCode = 0x3FFE

// BlockSizeTail reports how the raw 4-bit block size code must be resolved:
// either it already names a block size, or a further 8 or 16 bits must be
// read from the stream to complete it.
type BlockSizeTail uint8

// Block size code resolutions.
const (
	// BlockSizeReserved marks code 0000, which never appears in a valid
	// stream.
	BlockSizeReserved BlockSizeTail = iota
	// BlockSizeFixed means the table entry already gives the block size.
	BlockSizeFixed
	// BlockSizeRead8 means one more byte follows, block size = byte+1.
	BlockSizeRead8
	// BlockSizeRead16 means two more bytes follow (big-endian), block size
	// = value+1.
	BlockSizeRead16
)

// blockSizeTable gives the fixed block size for each of the 16 codes that
// resolve directly; codes 0110 and 0111 instead resolve via BlockSizeRead8
// and BlockSizeRead16 respectively, and are listed as 0 here.
var blockSizeTable = [16]uint16{
	0:  0, // reserved
	1:  192,
	2:  576,
	3:  1152,
	4:  2304,
	5:  4608,
	6:  0, // read 8 bits
	7:  0, // read 16 bits
	8:  256,
	9:  512,
	10: 1024,
	11: 2048,
	12: 4096,
	13: 8192,
	14: 16384,
	15: 32768,
}

// ResolveBlockSize looks up the 4-bit block size code and reports how it
// must be completed.
func ResolveBlockSize(code uint8) (fixed uint16, tail BlockSizeTail) {
	switch code {
	case 0:
		return 0, BlockSizeReserved
	case 6:
		return 0, BlockSizeRead8
	case 7:
		return 0, BlockSizeRead16
	default:
		return blockSizeTable[code], BlockSizeFixed
	}
}

// SampleRateTail reports how the raw 4-bit sample rate code must be
// resolved.
type SampleRateTail uint8

// Sample rate code resolutions.
const (
	// SampleRateFromStreamInfo means the stream's STREAMINFO sample rate
	// applies (code 0000).
	SampleRateFromStreamInfo SampleRateTail = iota
	// SampleRateFixed means the table entry already gives the rate in Hz.
	SampleRateFixed
	// SampleRateRead8kHz means one more byte follows, rate = byte * 1000 Hz.
	SampleRateRead8kHz
	// SampleRateRead16Hz means two more bytes follow, rate in Hz directly.
	SampleRateRead16Hz
	// SampleRateRead16DaHz means two more bytes follow, rate = value * 10 Hz.
	SampleRateRead16DaHz
	// SampleRateInvalid marks code 1111, which never appears in a valid
	// stream.
	SampleRateInvalid
)

var sampleRateTable = [12]uint32{
	1:  88200,
	2:  176400,
	3:  192000,
	4:  8000,
	5:  16000,
	6:  22050,
	7:  24000,
	8:  32000,
	9:  44100,
	10: 48000,
	11: 96000,
}

// ResolveSampleRate looks up the 4-bit sample rate code and reports how it
// must be completed.
func ResolveSampleRate(code uint8) (fixed uint32, tail SampleRateTail) {
	switch code {
	case 0:
		return 0, SampleRateFromStreamInfo
	case 12:
		return 0, SampleRateRead8kHz
	case 13:
		return 0, SampleRateRead16Hz
	case 14:
		return 0, SampleRateRead16DaHz
	case 15:
		return 0, SampleRateInvalid
	default:
		return sampleRateTable[code], SampleRateFixed
	}
}

// SampleSizeTail reports how the raw 3-bit sample size code must be
// resolved.
type SampleSizeTail uint8

// Sample size code resolutions.
const (
	SampleSizeFromStreamInfo SampleSizeTail = iota
	SampleSizeFixed
	// SampleSizeReserved marks codes 011 and 111, which never appear in a
	// valid stream.
	SampleSizeReserved
)

var sampleSizeTable = [8]uint8{
	0: 0,
	1: 8,
	2: 12,
	3: 0, // reserved
	4: 16,
	5: 20,
	6: 24,
	7: 0, // reserved
}

// ResolveSampleSize looks up the 3-bit sample size code.
func ResolveSampleSize(code uint8) (fixed uint8, tail SampleSizeTail) {
	switch code {
	case 0:
		return 0, SampleSizeFromStreamInfo
	case 3, 7:
		return 0, SampleSizeReserved
	default:
		return sampleSizeTable[code], SampleSizeFixed
	}
}

// ChannelAssignment identifies how the frame's subframes map onto output
// channels: either independent channels (codes 0..7, 1..8 channels) or one
// of the three two-channel decorrelation modes.
//
// ref: http://flac.sourceforge.net/format.html#frame_header
type ChannelAssignment uint8

// Decorrelation modes, layered on top of the independent-channel codes 0..7.
const (
	LeftSideStereo  ChannelAssignment = 8
	RightSideStereo ChannelAssignment = 9
	MidSideStereo   ChannelAssignment = 10
)

// ResolveChannelAssignment validates the raw 4-bit channel assignment code.
// ok is false for the reserved codes 11..15.
func ResolveChannelAssignment(code uint8) (ca ChannelAssignment, ok bool) {
	if code > 10 {
		return 0, false
	}
	return ChannelAssignment(code), true
}

// ChannelCount returns the number of subframes (and therefore the number of
// encoded channel bitstreams) this assignment implies. The two stereo
// decorrelation modes still carry exactly two subframes.
func (ca ChannelAssignment) ChannelCount() uint8 {
	if ca <= 7 {
		return uint8(ca) + 1
	}
	return 2
}

// IsIndependent reports whether each subframe encodes its channel directly,
// with no cross-channel decorrelation to undo.
func (ca ChannelAssignment) IsIndependent() bool {
	return ca <= 7
}

// Header holds the resolved fields of a frame header, after every
// conditional tail has been read and validated.
type Header struct {
	// VariableBlocking is true when the header's coded integer carries a
	// sample number rather than a frame number (the "variable blocksize"
	// stream variant).
	VariableBlocking bool
	// BlockSize is the number of samples per channel in this frame.
	BlockSize uint16
	// SampleRate is in Hz, resolved either from the header or STREAMINFO.
	SampleRate uint32
	// ChannelAssignment selects independent channels or a decorrelation
	// mode.
	ChannelAssignment ChannelAssignment
	// SampleSize is the bits per sample, resolved either from the header
	// or STREAMINFO.
	SampleSize uint8
	// Num is the frame or sample number carried by the coded integer,
	// depending on VariableBlocking.
	Num uint64
}
