// Package rice implements FLAC's partitioned Rice/Golomb residual coding: a
// resumable decoder that can be driven across arbitrarily small reads of the
// underlying bitstream, matching the pull-style contract the rest of the
// decoder is built around.
//
// ref: http://flac.sourceforge.net/format.html#residual
package rice

import (
	"math/bits"

	"github.com/mewkiz/foxflac/internal/bitstream"
	intbits "github.com/mewkiz/foxflac/internal/bits"
)

// phase is the Decoder's private sub-state, mirroring the granularity a
// resumable state machine needs to pick up mid-partition after starved
// input.
type phase uint8

const (
	phaseParam phase = iota
	phaseUnary
	phaseRemainder
	phaseVerbatim
	phaseFinalize
)

// Decoder decodes one subframe's worth of partitioned Rice-coded residual,
// writing samples directly into the caller's channel buffer. A Decoder may
// be reused across subframes via Init.
type Decoder struct {
	paramWidth uint8 // 4 for method 0, 5 for method 1
	order      int
	blockSize  int

	partitionOrder uint8
	numPartitions  uint16
	partitionCur   uint16
	// partitionLeft is the number of residuals still to read in the current
	// partition.
	partitionLeft uint16

	param         uint8
	verbatimWidth uint8
	unaryCount    uint32

	pos   int // next index in buf to write
	phase phase
}

// Init starts decoding a new subframe's residual. order is the subframe's
// predictor order (warm-up sample count, already populated in buf);
// blockSize is the subframe's total sample count. method is the 2-bit
// residual coding method (0 or 1; 2 and 3 are invalid and must be rejected
// by the caller before calling Init). partitionOrder is the 4-bit field
// read immediately after method.
func (d *Decoder) Init(order, blockSize int, method uint8, partitionOrder uint8) {
	d.order = order
	d.blockSize = blockSize
	d.partitionOrder = partitionOrder
	d.numPartitions = 1 << partitionOrder
	d.partitionCur = 0
	d.pos = order
	d.phase = phaseParam
	if method == 0 {
		d.paramWidth = 4
	} else {
		d.paramWidth = 5
	}
}

// Decode resumes decoding. It returns done=true once every residual for
// this subframe has been written into buf (buf[order:blockSize] holds the
// decoded residual values, ready for predictor restoration). ok is false if
// the stream proves malformed (a recoverable frame error, per the decoder's
// error taxonomy); the caller should resynchronize. If neither done nor a
// hard stop, Decode ran out of input and must be called again once more
// bytes are available.
func (d *Decoder) Decode(r *bitstream.Reader, sink bitstream.ByteSink, buf []int32) (done bool, ok bool) {
	for {
		switch d.phase {
		case phaseParam:
			if !r.CanRead(d.paramWidth + 5) {
				return false, true
			}
			d.param = uint8(r.ReadMSB(d.paramWidth, sink))
			escape := uint8(1)<<d.paramWidth - 1
			if d.param == escape {
				d.verbatimWidth = uint8(r.ReadMSB(5, sink))
				d.phase = phaseVerbatim
			} else {
				d.unaryCount = 0
				d.phase = phaseUnary
			}

			n := uint16(d.blockSize >> d.partitionOrder)
			if d.partitionCur == 0 {
				if int(n) < d.order {
					return false, false
				}
				n -= uint16(d.order)
			}
			if int(n)+d.pos > d.blockSize {
				return false, false
			}
			d.partitionLeft = n

		case phaseUnary:
			for d.partitionLeft > 0 {
				window, ok := r.TryPeekMSB(32)
				if ok {
					lz := bits.LeadingZeros32(uint32(window))
					if lz < 32 {
						r.ReadMSB(uint8(lz+1), sink)
						d.unaryCount += uint32(lz)
						d.phase = phaseRemainder
						break
					}
					r.ReadMSB(32, sink)
					d.unaryCount += 32
					continue
				}
				// Fewer than 32 bits buffered: fall back bit-by-bit so we
				// don't demand more input than is actually needed for a
				// short code near end-of-stream.
				bit, ok := r.TryReadMSB(1, sink)
				if !ok {
					return false, true
				}
				if bit == 1 {
					d.phase = phaseRemainder
					break
				}
				d.unaryCount++
			}
			if d.phase == phaseUnary {
				// The loop body never ran: this partition holds no
				// residuals (its share of the block is zero, or the first
				// partition's share equals the predictor order).
				d.phase = phaseFinalize
			}

		case phaseRemainder:
			var rem uint32
			if d.param > 0 {
				v, ok := r.TryReadMSB(d.param, sink)
				if !ok {
					return false, true
				}
				rem = uint32(v)
			}
			val := (d.unaryCount << d.param) | rem
			buf[d.pos] = intbits.DecodeZigZag(val)
			d.pos++
			d.partitionLeft--
			d.unaryCount = 0
			if d.partitionLeft > 0 {
				d.phase = phaseUnary
			} else {
				d.phase = phaseFinalize
			}

		case phaseVerbatim:
			for d.partitionLeft > 0 {
				if d.verbatimWidth == 0 {
					buf[d.pos] = 0
				} else {
					v, ok := r.TryReadMSB(d.verbatimWidth, sink)
					if !ok {
						return false, true
					}
					buf[d.pos] = int32(intbits.IntN(v, uint(d.verbatimWidth)))
				}
				d.pos++
				d.partitionLeft--
			}
			d.phase = phaseFinalize

		case phaseFinalize:
			d.partitionCur++
			if d.partitionCur == d.numPartitions {
				return true, true
			}
			d.phase = phaseParam
		}
	}
}
