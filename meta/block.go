// Package meta defines the STREAMINFO data model and the metadata block type
// enumeration used while skipping the other METADATA_BLOCK kinds a FLAC
// stream may carry.
//
// ref: http://flac.sourceforge.net/format.html#metadata_block_header
package meta

// BlockType identifies the body format of a METADATA_BLOCK.
//
// ref: http://flac.sourceforge.net/format.html#metadata_block_header
type BlockType uint8

// Metadata block types.
const (
	TypeStreamInfo    BlockType = 0
	TypePadding       BlockType = 1
	TypeApplication   BlockType = 2
	TypeSeekTable     BlockType = 3
	TypeVorbisComment BlockType = 4
	TypeCueSheet      BlockType = 5
	TypePicture       BlockType = 6
	// TypeInvalid is the reserved block type (127) that marks a stream as
	// malformed wherever it appears.
	TypeInvalid BlockType = 127
)

var blockTypeNames = map[BlockType]string{
	TypeStreamInfo:    "stream info",
	TypePadding:       "padding",
	TypeApplication:   "application",
	TypeSeekTable:     "seek table",
	TypeVorbisComment: "vorbis comment",
	TypeCueSheet:      "cue sheet",
	TypePicture:       "picture",
	TypeInvalid:       "invalid",
}

// String returns the human-readable name of the block type. Unknown values
// (reserved, not yet allocated) report as "reserved".
func (t BlockType) String() string {
	if name, ok := blockTypeNames[t]; ok {
		return name
	}
	return "reserved"
}

// BlockHeader is the 32-bit header that precedes every METADATA_BLOCK body:
// a last-block flag, the block type, and the body length in bytes.
//
// ref: http://flac.sourceforge.net/format.html#metadata_block_header
type BlockHeader struct {
	// IsLast reports whether this is the last metadata block before the
	// audio frames begin.
	IsLast bool
	// Type is the block's body format.
	Type BlockType
	// Length is the body length in bytes, not including this header.
	Length uint32
}
