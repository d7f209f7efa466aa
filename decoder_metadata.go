package foxflac

import "github.com/mewkiz/foxflac/meta"

// processInit hunts for the four-byte "fLaC" signature that must open every
// stream, tolerating arbitrary bytes (e.g. a prepended ID3 tag) before it.
func (d *Decoder) processInit() bool {
	v, ok := d.reader.TryReadMSB(8, nil)
	if !ok {
		return false
	}
	b := byte(v)
	switch d.priv {
	case psSyncInit:
		if b == 'f' {
			d.priv = psSyncF
		}
	case psSyncF:
		if b == 'L' {
			d.priv = psSyncL
		} else {
			d.priv = psSyncInit
		}
	case psSyncL:
		if b == 'a' {
			d.priv = psSyncA
		} else {
			d.priv = psSyncInit
		}
	case psSyncA:
		if b == 'C' {
			d.state = StateInMetadata
			d.priv = psMetadataHeader
		} else {
			d.priv = psSyncInit
		}
	default:
		return d.handleErr()
	}
	return true
}

// processInMetadata reads the chain of METADATA_BLOCKs, extracting
// STREAMINFO fields and skipping every other block's bytes.
//
// ref: http://flac.sourceforge.net/format.html#metadata_block_header
func (d *Decoder) processInMetadata() bool {
	switch d.priv {
	case psMetadataHeader:
		if !d.reader.CanRead(32) {
			return false
		}
		d.metaHdr.IsLast = d.reader.ReadMSB(1, nil) != 0
		d.metaHdr.Type = meta.BlockType(d.reader.ReadMSB(7, nil))
		if d.metaHdr.Type == meta.TypeInvalid {
			return d.handleErr()
		}
		d.metaHdr.Length = uint32(d.reader.ReadMSB(24, nil))
		d.metaBytesRem = d.metaHdr.Length
		if d.metaHdr.Type == meta.TypeStreamInfo {
			d.priv = psMetadataStreamInfo
			if d.metaHdr.Length != 34 {
				return d.handleErr()
			}
		} else {
			d.priv = psMetadataSkip
		}

	case psMetadataStreamInfo:
		switch d.metaBytesRem {
		case 34:
			if !d.reader.CanRead(16) {
				return false
			}
			d.streamInfo.MinBlockSize = uint16(d.reader.ReadMSB(16, nil))
			d.metaBytesRem -= 2
		case 32:
			if !d.reader.CanRead(16) {
				return false
			}
			d.streamInfo.MaxBlockSize = uint16(d.reader.ReadMSB(16, nil))
			d.metaBytesRem -= 2
		case 30:
			if !d.reader.CanRead(24) {
				return false
			}
			d.streamInfo.MinFrameSize = uint32(d.reader.ReadMSB(24, nil))
			d.metaBytesRem -= 3
		case 27:
			if !d.reader.CanRead(24) {
				return false
			}
			d.streamInfo.MaxFrameSize = uint32(d.reader.ReadMSB(24, nil))
			d.metaBytesRem -= 3
		case 24:
			if !d.reader.CanRead(28) {
				return false
			}
			d.streamInfo.SampleRate = uint32(d.reader.ReadMSB(20, nil))
			d.streamInfo.ChannelCount = 1 + uint8(d.reader.ReadMSB(3, nil))
			d.streamInfo.SampleSize = 1 + uint8(d.reader.ReadMSB(5, nil))
			d.metaBytesRem -= 4
		case 20:
			if !d.reader.CanRead(36) {
				return false
			}
			d.streamInfo.SampleCount = d.reader.ReadMSB(36, nil)
			d.metaBytesRem -= 4
		case 0:
			d.priv = psMetadataSkip
		default:
			if d.metaBytesRem >= 1 && d.metaBytesRem <= 16 {
				if !d.reader.CanRead(8) {
					return false
				}
				d.streamInfo.MD5[16-d.metaBytesRem] = byte(d.reader.ReadMSB(8, nil))
				d.metaBytesRem--
			} else {
				return d.handleErr()
			}
		}

	case psMetadataSkip:
		n := d.metaBytesRem
		if n > 7 {
			n = 7
		}
		if n == 0 {
			if d.metaHdr.IsLast {
				d.state = StateEndOfMetadata
			} else {
				d.priv = psMetadataHeader
			}
			return true
		}
		nbits := uint8(n * 8)
		if !d.reader.CanRead(nbits) {
			return false
		}
		d.reader.ReadMSB(nbits, nil)
		d.metaBytesRem -= n

	default:
		return d.handleErr()
	}
	return true
}
