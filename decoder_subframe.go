package foxflac

import (
	"github.com/mewkiz/foxflac/frame"
	"github.com/mewkiz/foxflac/internal/bits"
)

// subframeBPS returns the effective bit depth of the subframe currently
// being decoded: the stream's sample size, less any wasted bits stripped
// before encoding, plus one extra bit for the "side" channel of whichever
// stereo decorrelation mode is in effect.
func (d *Decoder) subframeBPS() uint8 {
	bps := d.fh.SampleSize - d.sfWastedBits
	switch {
	case d.fh.ChannelAssignment == frame.LeftSideStereo && d.chanCur == 1,
		d.fh.ChannelAssignment == frame.RightSideStereo && d.chanCur == 0,
		d.fh.ChannelAssignment == frame.MidSideStereo && d.chanCur == 1:
		bps++
	}
	return bps
}

// signExtend32 recovers the signed value of a width-bit two's complement
// field, as read MSB-first off the bitstream.
func signExtend32(v uint64, width uint8) int32 {
	return int32(bits.IntN(v, uint(width)))
}

// processInFrame decodes the subframes of the current frame, one channel at
// a time, then validates the frame footer and performs inter-channel
// decorrelation and output normalization.
//
// ref: http://flac.sourceforge.net/format.html#subframe
func (d *Decoder) processInFrame() bool {
	var blk []int32
	if d.chanCur < len(d.channels) {
		blk = d.channels[d.chanCur]
	}
	blkN := int(d.fh.BlockSize)

	switch d.priv {
	case psSubframeHeader:
		if !d.reader.CanRead(40) {
			return false
		}
		d.blkCur = 0

		padding := d.reader.ReadMSB(1, d.sinkCRC16)
		valid := padding == 0

		typeCode := uint8(d.reader.ReadMSB(6, d.sinkCRC16))
		pred, order, ok := frame.ResolveSubframeType(typeCode)
		if !ok {
			return d.handleErr()
		}
		d.sfPred = pred
		d.sfOrder = order
		switch pred {
		case frame.PredLPC:
			d.priv = psSubframeLPCWarmup
		case frame.PredFixed:
			d.priv = psSubframeFixedWarmup
			valid = valid && order <= 4
		case frame.PredVerbatim:
			d.priv = psSubframeVerbatim
		default:
			d.priv = psSubframeConstant
		}

		wasted := d.reader.ReadMSB(1, d.sinkCRC16)
		d.sfWastedBits = 0
		if wasted != 0 {
			for i := uint8(1); i <= 30; i++ {
				bit := d.reader.ReadMSB(1, d.sinkCRC16)
				if bit == 1 {
					d.sfWastedBits = i
					break
				}
			}
			valid = valid && d.sfWastedBits > 0 && d.sfWastedBits < d.fh.SampleSize
		}
		valid = valid && blkN >= int(d.sfOrder)
		if !valid {
			return d.handleErr()
		}

	case psSubframeConstant:
		bps := d.subframeBPS()
		if bps == 0 || bps > 32 {
			return d.handleErr()
		}
		if !d.reader.CanRead(bps) {
			return false
		}
		v := signExtend32(d.reader.ReadMSB(bps, d.sinkCRC16), bps)
		for i := 0; i < blkN; i++ {
			blk[i] = v
		}
		d.priv = psSubframeFinalize

	case psSubframeVerbatim, psSubframeFixedWarmup, psSubframeLPCWarmup:
		bps := d.subframeBPS()
		if bps == 0 || bps > 32 {
			return d.handleErr()
		}
		n := int(d.sfOrder)
		if d.priv == psSubframeVerbatim {
			n = blkN
		}
		for d.blkCur < n {
			if !d.reader.CanRead(bps) {
				return false
			}
			blk[d.blkCur] = signExtend32(d.reader.ReadMSB(bps, d.sinkCRC16), bps)
			d.blkCur++
		}
		switch d.priv {
		case psSubframeVerbatim:
			d.priv = psSubframeFinalize
		case psSubframeFixedWarmup:
			d.priv = psSubframeResidualHeader
		case psSubframeLPCWarmup:
			d.priv = psSubframeLPCHeader
		}

	case psSubframeLPCHeader:
		if !d.reader.CanRead(9) {
			return false
		}
		prec := uint8(d.reader.ReadMSB(4, d.sinkCRC16))
		shift := d.reader.ReadMSB(5, d.sinkCRC16)
		if prec == 15 {
			return d.handleErr()
		}
		d.sfLPCPrec = prec + 1
		signedShift := signExtend32(shift, 5)
		if signedShift < 0 {
			return d.handleErr()
		}
		d.sfLPCShift = uint8(signedShift)
		d.sfCoefCur = 0
		d.priv = psSubframeLPCCoeffs

	case psSubframeLPCCoeffs:
		for d.sfCoefCur < int(d.sfOrder) {
			if !d.reader.CanRead(d.sfLPCPrec) {
				return false
			}
			coef := d.reader.ReadMSB(d.sfLPCPrec, d.sinkCRC16)
			d.lpcCoeffs[d.sfCoefCur] = int64(signExtend32(coef, d.sfLPCPrec))
			d.sfCoefCur++
		}
		d.priv = psSubframeResidualHeader

	case psSubframeResidualHeader:
		if !d.reader.CanRead(6) {
			return false
		}
		d.residualMethod = uint8(d.reader.ReadMSB(2, d.sinkCRC16))
		if d.residualMethod > 1 {
			return d.handleErr()
		}
		d.partitionOrder = uint8(d.reader.ReadMSB(4, d.sinkCRC16))
		d.riceDec.Init(int(d.sfOrder), blkN, d.residualMethod, d.partitionOrder)
		d.priv = psSubframeResidualBody

	case psSubframeResidualBody:
		done, ok := d.riceDec.Decode(d.reader, d.sinkCRC16, blk)
		if !ok {
			return d.handleErr()
		}
		if !done {
			return false
		}
		var coeffs []int64
		var shift uint8
		if d.sfPred == frame.PredFixed {
			coeffs = frame.FixedCoeffs[d.sfOrder]
			shift = 0
		} else {
			coeffs = d.lpcCoeffs[:d.sfOrder]
			shift = d.sfLPCShift
		}
		frame.RestoreLPC(blk[:blkN], int(d.sfOrder), coeffs, shift)
		d.priv = psSubframeFinalize

	case psSubframeFinalize:
		if d.sfWastedBits != 0 {
			shift := d.sfWastedBits
			for i := 0; i < blkN; i++ {
				blk[i] <<= shift
			}
		}
		d.chanCur++
		if d.chanCur < int(d.fh.ChannelAssignment.ChannelCount()) {
			d.priv = psSubframeHeader
		} else {
			d.priv = psFrameFooter
		}

	case psFrameFooter:
		if !d.reader.ByteAlign(d.sinkCRC16) {
			return false
		}
		if !d.reader.CanRead(16) {
			return false
		}
		got := uint16(d.reader.ReadMSB(16, nil))
		if got != d.crc16 {
			return d.handleErr()
		}

		switch d.fh.ChannelAssignment {
		case frame.LeftSideStereo:
			frame.UndoLeftSide(d.channels[0][:blkN], d.channels[1][:blkN])
		case frame.RightSideStereo:
			frame.UndoRightSide(d.channels[0][:blkN], d.channels[1][:blkN])
		case frame.MidSideStereo:
			frame.UndoMidSide(d.channels[0][:blkN], d.channels[1][:blkN])
		}

		if shift := 32 - d.fh.SampleSize; shift != 0 {
			cc := int(d.fh.ChannelAssignment.ChannelCount())
			for c := 0; c < cc; c++ {
				ch := d.channels[c]
				for i := 0; i < blkN; i++ {
					ch[i] <<= shift
				}
			}
		}

		d.blkCur = 0
		d.chanCur = 0
		d.state = StateDecodedFrame

	default:
		return d.handleErr()
	}
	return true
}
