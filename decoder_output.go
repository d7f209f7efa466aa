package foxflac

// processDecodedFrame interleaves the current frame's reconstructed samples
// into out in sample-major order (every channel's sample i before any
// channel's sample i+1), resuming across calls wherever out runs out of
// room. It transitions to StateEndOfFrame once the whole block has been
// drained.
func (d *Decoder) processDecodedFrame(out []int32) (n int, cont bool) {
	blockSize := int(d.fh.BlockSize)
	channelCount := int(d.fh.ChannelAssignment.ChannelCount())

	for n < len(out) {
		if d.blkCur >= blockSize {
			d.state = StateEndOfFrame
			return n, true
		}
		out[n] = d.channels[d.chanCur][d.blkCur]
		n++
		d.chanCur++
		if d.chanCur >= channelCount {
			d.chanCur = 0
			d.blkCur++
		}
	}
	return n, false
}
