package frame

// Pred identifies the prediction method a subframe uses to reconstruct its
// samples.
//
// ref: http://flac.sourceforge.net/format.html#subframe_header
type Pred uint8

// Prediction methods.
const (
	PredConstant Pred = iota
	PredVerbatim
	PredFixed
	PredLPC
)

// SubframeHeader holds the resolved fields of a subframe header.
type SubframeHeader struct {
	Pred Pred
	// Order is the predictor order: always 0 for Constant and Verbatim,
	// 0..4 for Fixed, 1..32 for LPC.
	Order uint8
	// WastedBits is the number of low-order zero bits stripped from every
	// sample of this subframe before encoding; 0 if none.
	WastedBits uint8
}

// ResolveSubframeType decodes the 6-bit subframe type field into a
// prediction method and order. ok is false for the codes the format
// reserves (000010..000111, 001101..011111).
func ResolveSubframeType(code uint8) (pred Pred, order uint8, ok bool) {
	switch {
	case code == 0x00:
		return PredConstant, 0, true
	case code == 0x01:
		return PredVerbatim, 0, true
	case code&0x38 == 0x08 && code&0x07 <= 4:
		return PredFixed, code & 0x07, true
	case code&0x20 == 0x20:
		return PredLPC, (code & 0x1F) + 1, true
	default:
		return 0, 0, false
	}
}

// FixedCoeffs holds the fixed-predictor coefficient tables indexed by
// predictor order (0..4). Restoration runs these with a zero shift.
//
// ref: http://flac.sourceforge.net/format.html#subframe_fixed
var FixedCoeffs = [5][]int64{
	0: {},
	1: {1},
	2: {2, -1},
	3: {3, -3, 1},
	4: {4, -6, 4, -1},
}

// RestoreLPC runs the LPC (or fixed) predictor forward over buf, starting
// at index order, adding the predicted value back onto each residual
// already stored in buf. coeffs holds order taps applied to the order
// preceding samples, most recent first; shift is the accumulator's
// arithmetic right shift (0 for fixed predictors).
//
// ref: http://flac.sourceforge.net/format.html#subframe_lpc
func RestoreLPC(buf []int32, order int, coeffs []int64, shift uint8) {
	for i := order; i < len(buf); i++ {
		var accu int64
		for j := 0; j < order; j++ {
			accu += coeffs[j] * int64(buf[i-j-1])
		}
		buf[i] += int32(accu >> shift)
	}
}

// UndoLeftSide reconstructs the right channel of a left/side stereo frame
// in place: left is untouched, side holds left - right on entry and is
// overwritten with the reconstructed right channel (left - side).
func UndoLeftSide(left, side []int32) {
	for i := range side {
		side[i] = left[i] - side[i]
	}
}

// UndoRightSide reconstructs the left channel of a right/side stereo frame
// in place: right is untouched, left holds side = left - right on entry and
// is overwritten with the reconstructed left channel.
func UndoRightSide(left, right []int32) {
	for i := range left {
		left[i] = right[i] + left[i]
	}
}

// UndoMidSide reconstructs both channels of a mid/side stereo frame in
// place: mid holds the mid channel and side the side channel on entry; both
// are overwritten with the reconstructed left and right channels
// respectively.
func UndoMidSide(mid, side []int32) {
	for i := range mid {
		m := (mid[i] << 1) | (side[i] & 1)
		s := side[i]
		mid[i] = (m + s) >> 1
		side[i] = (m - s) >> 1
	}
}
