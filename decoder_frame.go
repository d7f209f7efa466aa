package foxflac

import "github.com/mewkiz/foxflac/frame"

// processSearchFrame hunts for the 15-bit frame sync code and parses the
// frame header that follows it.
//
// ref: http://flac.sourceforge.net/format.html#frame_header
func (d *Decoder) processSearchFrame() bool {
	switch d.priv {
	case psFrameSync:
		if !d.reader.ByteAlign(nil) {
			return false
		}
		if !d.reader.CanRead(15) {
			return false
		}
		sync := d.reader.PeekMSB(15)
		if sync != 0x7FFC {
			d.reader.ReadMSB(8, nil) // assume frames are byte-aligned
			return true
		}
		d.crc8 = 0
		d.crc16 = 0
		d.reader.ReadMSB(15, d.sinkDual)
		d.priv = psFrameHeaderFixed

	case psFrameHeaderFixed:
		if !d.reader.CanRead(17) {
			return false
		}
		blockingStrategy := d.reader.ReadMSB(1, d.sinkDual)
		d.blockSizeCode = uint8(d.reader.ReadMSB(4, d.sinkDual))
		d.sampleRateCode = uint8(d.reader.ReadMSB(4, d.sinkDual))
		d.channelCode = uint8(d.reader.ReadMSB(4, d.sinkDual))
		sampleSizeCode := uint8(d.reader.ReadMSB(3, d.sinkDual))
		reserved := d.reader.ReadMSB(1, d.sinkDual)

		d.fh.VariableBlocking = blockingStrategy != 0

		ca, ok := frame.ResolveChannelAssignment(d.channelCode)
		if reserved != 0 || !ok {
			return d.handleErr()
		}

		d.fh.SampleRate = d.streamInfo.SampleRate
		d.fh.SampleSize = d.streamInfo.SampleSize

		blockSize, blockTail := frame.ResolveBlockSize(d.blockSizeCode)
		sampleRate, rateTail := frame.ResolveSampleRate(d.sampleRateCode)
		sampleSize, sizeTail := frame.ResolveSampleSize(sampleSizeCode)
		if blockTail == frame.BlockSizeReserved || rateTail == frame.SampleRateInvalid || sizeTail == frame.SampleSizeReserved {
			d.priv = psFrameSync
			return true
		}
		d.fh.ChannelAssignment = ca
		if blockTail == frame.BlockSizeFixed {
			d.fh.BlockSize = blockSize
		}
		if rateTail == frame.SampleRateFixed {
			d.fh.SampleRate = sampleRate
		}
		if sizeTail == frame.SampleSizeFixed {
			d.fh.SampleSize = sampleSize
		}
		d.priv = psFrameHeaderSyncInfo

	case psFrameHeaderSyncInfo:
		maxBytes := uint8(6)
		if d.fh.VariableBlocking {
			maxBytes = 7
		}
		num, ok := d.readUTF8CodedInt(maxBytes)
		if !ok {
			return false
		}
		if num == utf8Invalid {
			d.priv = psFrameSync
			return true
		}
		d.fh.Num = num
		d.priv = psFrameHeaderAux

	case psFrameHeaderAux:
		if !d.reader.CanRead(32) {
			return false
		}
		_, blockTail := frame.ResolveBlockSize(d.blockSizeCode)
		switch blockTail {
		case frame.BlockSizeRead8:
			d.fh.BlockSize = uint16(d.reader.ReadMSB(8, d.sinkDual)) + 1
		case frame.BlockSizeRead16:
			d.fh.BlockSize = uint16(d.reader.ReadMSB(16, d.sinkDual)) + 1
		}
		_, rateTail := frame.ResolveSampleRate(d.sampleRateCode)
		switch rateTail {
		case frame.SampleRateRead8kHz:
			d.fh.SampleRate = 1000 * uint32(d.reader.ReadMSB(8, d.sinkDual))
		case frame.SampleRateRead16Hz:
			d.fh.SampleRate = uint32(d.reader.ReadMSB(16, d.sinkDual))
		case frame.SampleRateRead16DaHz:
			d.fh.SampleRate = 10 * uint32(d.reader.ReadMSB(16, d.sinkDual))
		}
		d.priv = psFrameHeaderCRC

	case psFrameHeaderCRC:
		if !d.reader.CanRead(8) {
			return false
		}
		got := uint8(d.reader.ReadMSB(8, d.sinkCRC16))
		if got != d.crc8 {
			return d.handleErr()
		}
		if uint32(d.fh.BlockSize) > d.maxBlockSize || uint32(d.fh.ChannelAssignment.ChannelCount()) > uint32(d.maxChannels) {
			return d.handleErr()
		}
		d.state = StateInFrame
		d.priv = psSubframeHeader
		d.chanCur = 0

	default:
		return d.handleErr()
	}
	return true
}

// utf8Invalid is the sentinel readUTF8CodedInt returns when a malformed
// continuation byte invalidates the header currently being parsed.
const utf8Invalid = ^uint64(0)

// readUTF8CodedInt reads the frame header's UTF-8-style coded integer: up
// to maxBytes bytes, the first byte's leading-one run selecting how many
// continuation bytes follow. ok is false only when more input is needed;
// a malformed encoding is reported by returning (utf8Invalid, true).
func (d *Decoder) readUTF8CodedInt(maxBytes uint8) (value uint64, ok bool) {
	if !d.reader.CanRead(maxBytes * 8) {
		return 0, false
	}
	v := uint8(d.reader.ReadMSB(8, d.sinkDual))
	nOnes := uint8(0)
	for v&0x80 != 0 {
		v <<= 1
		nOnes++
	}
	if nOnes > maxBytes {
		return utf8Invalid, true
	}
	if nOnes == 0 {
		return uint64(v), true
	}
	tar := uint64(v >> nOnes)
	for i := uint8(1); i < nOnes; i++ {
		cont := uint8(d.reader.ReadMSB(8, d.sinkDual))
		if cont&0xC0 != 0x80 {
			return utf8Invalid, true
		}
		tar = (tar << 6) | uint64(cont&0x3F)
	}
	return tar, true
}
