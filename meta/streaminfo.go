package meta

// StreamInfo holds the fields of the mandatory STREAMINFO metadata block,
// the only block whose contents the decoder core retains.
//
// ref: http://flac.sourceforge.net/format.html#metadata_block_streaminfo
type StreamInfo struct {
	// MinBlockSize and MaxBlockSize are the smallest and largest block size
	// (samples per channel per frame) used anywhere in the stream.
	MinBlockSize uint16
	MaxBlockSize uint16
	// MinFrameSize and MaxFrameSize are the smallest and largest frame size
	// in bytes, or 0 if unknown.
	MinFrameSize uint32
	MaxFrameSize uint32
	// SampleRate is given in Hz, 1 to 655350, or 0 if unknown.
	SampleRate uint32
	// ChannelCount is 1 to 8.
	ChannelCount uint8
	// SampleSize is the bits per sample, 4 to 32.
	SampleSize uint8
	// SampleCount is the total number of interchannel samples, or 0 if
	// unknown.
	SampleCount uint64
	// MD5 is the MD5 digest of the unencoded audio data, addressable byte
	// by byte through the Key values KeyMD5Sum0 to KeyMD5Sum0+15.
	MD5 [16]byte
}

// Key selects a single STREAMINFO field (or one byte of the MD5 digest) for
// Decoder.StreamInfo.
type Key uint8

// STREAMINFO field keys.
const (
	KeyMinBlockSize Key = 0
	KeyMaxBlockSize Key = 1
	KeyMinFrameSize Key = 2
	KeyMaxFrameSize Key = 3
	KeySampleRate   Key = 4
	KeyChannelCount Key = 5
	KeySampleSize   Key = 6
	KeySampleCount  Key = 7
	// KeyMD5Sum0 through the implicit KeyMD5Sum0+15 address the sixteen MD5
	// bytes individually: KeyMD5Sum0+i selects MD5[i].
	KeyMD5Sum0 Key = 128
)

// InvalidValue is returned by Get when key does not select a valid
// STREAMINFO field.
const InvalidValue = -1

// Get returns the value selected by key as a signed 64-bit integer, or
// (InvalidValue, false) if key is not recognized.
func (si *StreamInfo) Get(key Key) (value int64, ok bool) {
	switch {
	case key == KeyMinBlockSize:
		return int64(si.MinBlockSize), true
	case key == KeyMaxBlockSize:
		return int64(si.MaxBlockSize), true
	case key == KeyMinFrameSize:
		return int64(si.MinFrameSize), true
	case key == KeyMaxFrameSize:
		return int64(si.MaxFrameSize), true
	case key == KeySampleRate:
		return int64(si.SampleRate), true
	case key == KeyChannelCount:
		return int64(si.ChannelCount), true
	case key == KeySampleSize:
		return int64(si.SampleSize), true
	case key == KeySampleCount:
		return int64(si.SampleCount), true
	case key >= KeyMD5Sum0 && key <= KeyMD5Sum0+15:
		return int64(si.MD5[key-KeyMD5Sum0]), true
	default:
		return InvalidValue, false
	}
}
