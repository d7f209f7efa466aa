package foxflac

// State is the decoder's caller-visible position in the stream. Every call
// to Process returns one of these.
type State uint8

// Decoder states.
const (
	// StateInit is the state of a freshly constructed or just-reset
	// decoder: nothing has been read yet.
	StateInit State = iota
	// StateInMetadata is entered after the "fLaC" signature has been
	// verified and metadata blocks are being read.
	StateInMetadata
	// StateEndOfMetadata is reached exactly once per stream, the instant
	// after the STREAMINFO block (and every other metadata block) has been
	// consumed. StreamInfo is guaranteed populated from this point on.
	StateEndOfMetadata
	// StateSearchFrame is the resynchronization state: the decoder is
	// scanning forward for the next 15-bit frame sync code. This is also
	// the state entered after a recoverable frame error.
	StateSearchFrame
	// StateInFrame means a valid frame header has been found and its
	// subframes are being decoded.
	StateInFrame
	// StateDecodedFrame means every subframe of the current frame has been
	// reconstructed and decorrelated; Process is now interleaving samples
	// into the caller's output buffer.
	StateDecodedFrame
	// StateEndOfFrame is reached once a decoded frame has been fully
	// drained into caller output; the decoder immediately proceeds back to
	// StateSearchFrame on the next Process call.
	StateEndOfFrame
	// StateErr is terminal: a fatal error (malformed metadata or an
	// internal invariant violation) has occurred. Every subsequent Process
	// call returns StateErr without consuming input.
	StateErr
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateInMetadata:
		return "IN_METADATA"
	case StateEndOfMetadata:
		return "END_OF_METADATA"
	case StateSearchFrame:
		return "SEARCH_FRAME"
	case StateInFrame:
		return "IN_FRAME"
	case StateDecodedFrame:
		return "DECODED_FRAME"
	case StateEndOfFrame:
		return "END_OF_FRAME"
	case StateErr:
		return "ERR"
	default:
		return "UNKNOWN"
	}
}

// privState is the fine-grained sub-state that lets the decoder resume
// mid-field after a Process call runs out of input or output. It is never
// exposed to callers and is kept alongside the caller-visible State, which
// the decoder sets separately.
type privState uint8

const (
	psSyncInit privState = iota
	psSyncF
	psSyncL
	psSyncA

	psMetadataHeader
	psMetadataSkip
	psMetadataStreamInfo

	psFrameSync

	psFrameHeaderFixed
	psFrameHeaderSyncInfo
	psFrameHeaderAux
	psFrameHeaderCRC

	psSubframeHeader
	psSubframeConstant
	psSubframeVerbatim
	psSubframeFixedWarmup
	psSubframeLPCWarmup
	psSubframeLPCHeader
	psSubframeLPCCoeffs
	psSubframeResidualHeader
	psSubframeResidualBody
	psSubframeFinalize

	psFrameFooter
)
