package audio

import "encoding/binary"

// SniffSampleRate recovers the sample rate declared in a raw container
// header, before any decoder gets a chance to resample. Formats are probed
// in order (WAV, FLAC, MP3, OGG); the first match wins. A recognized but
// malformed header never causes an error, it simply reports no match and
// the caller falls back to the decoder-reported rate.
func SniffSampleRate(data []byte) (int, bool) {
	if rate, ok := sniffWAV(data); ok {
		return rate, true
	}
	if rate, ok := sniffFLAC(data); ok {
		return rate, true
	}
	if rate, ok := sniffMP3(data); ok {
		return rate, true
	}
	if rate, ok := sniffOGG(data); ok {
		return rate, true
	}
	return 0, false
}

// sniffWAV walks RIFF chunks to the fmt chunk and reads its sample rate
// field. Chunk advancement honours the word alignment rule: an odd-sized
// chunk is followed by one pad byte.
func sniffWAV(data []byte) (int, bool) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, false
	}
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		if id == "fmt " {
			if pos+16 > len(data) {
				return 0, false
			}
			rate := int(binary.LittleEndian.Uint32(data[pos+12 : pos+16]))
			if rate == 0 {
				return 0, false
			}
			return rate, true
		}
		if size%2 == 1 {
			size++ // pad byte
		}
		pos += 8 + size
	}
	return 0, false
}

// sniffFLAC reads the 20-bit sample rate field packed into the STREAMINFO
// block. STREAMINFO is always the first metadata block, so the field sits
// at a fixed file offset: the high 20 bits of the 3 bytes at 18..20.
func sniffFLAC(data []byte) (int, bool) {
	if len(data) < 21 || string(data[0:4]) != "fLaC" {
		return 0, false
	}
	rate := int(data[18])<<12 | int(data[19])<<4 | int(data[20])>>4
	if rate == 0 {
		return 0, false
	}
	return rate, true
}

// MPEG audio sample rate tables indexed by the 2-bit sample rate index.
// Index 3 is reserved.
var (
	mpeg1Rates   = [3]int{44100, 48000, 32000}
	mpeg2Rates   = [3]int{22050, 24000, 16000}
	mpeg25Rates  = [3]int{11025, 12000, 8000}
	mp3ScanLimit = 4096
)

// sniffMP3 skips an optional ID3v2 tag, then scans for the first valid MPEG
// frame sync and decodes its version and sample rate index. Reserved or
// invalid header combinations are skipped and the scan continues.
func sniffMP3(data []byte) (int, bool) {
	pos := 0
	if len(data) >= 10 && string(data[0:3]) == "ID3" {
		// ID3v2 tag size is a 4-byte synchsafe integer: 7 meaningful bits
		// per byte, top bit always clear.
		size := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 | int(data[8]&0x7F)<<7 | int(data[9]&0x7F)
		pos = 10 + size
	}
	limit := pos + mp3ScanLimit
	if limit > len(data)-1 {
		limit = len(data) - 1
	}
	for i := pos; i < limit; i++ {
		if data[i] != 0xFF || data[i+1]&0xE0 != 0xE0 {
			continue
		}
		if i+2 >= len(data) {
			return 0, false
		}
		version := (data[i+1] >> 3) & 0x03
		rateIdx := (data[i+2] >> 2) & 0x03
		if version == 1 || rateIdx == 3 {
			continue // reserved bits, not a real frame header
		}
		switch version {
		case 3: // MPEG1
			return mpeg1Rates[rateIdx], true
		case 2: // MPEG2
			return mpeg2Rates[rateIdx], true
		case 0: // MPEG2.5
			return mpeg25Rates[rateIdx], true
		}
	}
	return 0, false
}

// oggScanLimit bounds the search for the Vorbis identification header; it
// always sits in the first page in well-formed streams.
const oggScanLimit = 8192

// sniffOGG locates the 7-byte Vorbis identification marker (packet type
// 0x01 followed by "vorbis") and reads the sample rate that follows the
// version and channel fields.
func sniffOGG(data []byte) (int, bool) {
	limit := len(data) - 16
	if limit > oggScanLimit {
		limit = oggScanLimit
	}
	for i := 0; i < limit; i++ {
		if data[i] != 0x01 || string(data[i+1:i+7]) != "vorbis" {
			continue
		}
		// marker(7) + version(4) + channels(1), then the 32-bit rate
		rate := int(binary.LittleEndian.Uint32(data[i+12 : i+16]))
		if rate == 0 {
			return 0, false
		}
		return rate, true
	}
	return 0, false
}
