// Package format defines the small closed enums shared by the compress and
// recordset packages. It intentionally holds no behavior beyond stringification.
package format

// CompressionType identifies the whole-block compression algorithm applied
// to a recordset payload. It never affects the bit-level wire format of a
// single encoded record, which is fixed regardless of CompressionType.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone disables compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd selects Zstandard.
	CompressionS2   CompressionType = 0x3 // CompressionS2 selects S2 (a Snappy derivative).
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 selects LZ4.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
