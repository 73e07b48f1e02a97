// Package format defines the identifiers shared by the plot frame wire format.
package format

import "strings"

type (
	// SeriesKind identifies one series of a plot frame.
	SeriesKind uint8
	// CompressionType identifies the codec applied to a frame body.
	CompressionType uint8
	// EncodingType identifies how float columns are laid out in a frame body.
	EncodingType uint8
)

const (
	SeriesActive    SeriesKind = 0x1 // SeriesActive holds the points used by the fit.
	SeriesExcluded  SeriesKind = 0x2 // SeriesExcluded holds masked or out-of-range points.
	SeriesGuess     SeriesKind = 0x3 // SeriesGuess is the model curve at the current guesses.
	SeriesFit       SeriesKind = 0x4 // SeriesFit is the model curve at the best-fit values.
	SeriesResiduals SeriesKind = 0x5 // SeriesResiduals holds studentized residuals of active points.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	EncodingRaw     EncodingType = 0x1 // EncodingRaw stores 8 bytes per value.
	EncodingGorilla EncodingType = 0x2 // EncodingGorilla XORs each value with its predecessor.
)

// Series lists every series kind in wire order.
var Series = []SeriesKind{SeriesActive, SeriesExcluded, SeriesGuess, SeriesFit, SeriesResiduals}

func (k SeriesKind) String() string {
	switch k {
	case SeriesActive:
		return "Active"
	case SeriesExcluded:
		return "Excluded"
	case SeriesGuess:
		return "Guess"
	case SeriesFit:
		return "Fit"
	case SeriesResiduals:
		return "Residuals"
	default:
		return "Unknown"
	}
}

// HasErrors reports whether the series carries an error column.
func (k SeriesKind) HasErrors() bool {
	return k == SeriesActive || k == SeriesExcluded || k == SeriesResiduals
}

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

func (e EncodingType) String() string {
	switch e {
	case EncodingRaw:
		return "Raw"
	case EncodingGorilla:
		return "Gorilla"
	default:
		return "Unknown"
	}
}

// ParseCompression maps a case-insensitive codec name to its type. ok is false for
// unknown names.
func ParseCompression(name string) (c CompressionType, ok bool) {
	switch strings.ToLower(name) {
	case "none", "":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
