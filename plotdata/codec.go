package plotdata

import (
	"fmt"
	"math"

	"github.com/arloliu/curvefit/compress"
	"github.com/arloliu/curvefit/endian"
	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/format"
	"github.com/arloliu/curvefit/internal/encoding"
	"github.com/arloliu/curvefit/internal/options"
	"github.com/arloliu/curvefit/internal/pool"
)

// Frame payload layout:
//
//	magic    [4]byte "CVFP"
//	version  uint8
//	codec    uint8   format.CompressionType of the body
//	flags    uint8   bit 0: big-endian body, bit 1: Gorilla columns
//	reserved uint8
//	modelID  uint64
//	body     compressed; strings as uint16 length + bytes, then x range, sizes, a flag
//	         byte and one block per format.SeriesKind: kind, uint32 count, columns.
//	         Gorilla columns are prefixed with their uint32 byte length.
const (
	frameMagic   = "CVFP"
	frameVersion = 1
	headerSize   = 16

	flagBigEndian = 1 << 0
	flagGorilla   = 1 << 1

	styleShowGuess     = 1 << 0
	styleShowResiduals = 1 << 1
)

type encodeConfig struct {
	compression format.CompressionType
	columns     format.EncodingType
	engine      endian.EndianEngine
}

// EncodeOption configures Encode.
type EncodeOption = options.Option[*encodeConfig]

// WithCompression selects the body codec. The default is format.CompressionNone.
func WithCompression(ct format.CompressionType) EncodeOption {
	return options.New(func(c *encodeConfig) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrInvalidSetting, err)
		}
		c.compression = ct

		return nil
	})
}

// WithColumnEncoding selects how float columns are stored. The default is
// format.EncodingRaw.
func WithColumnEncoding(et format.EncodingType) EncodeOption {
	return options.New(func(c *encodeConfig) error {
		if et != format.EncodingRaw && et != format.EncodingGorilla {
			return fmt.Errorf("%w: unsupported column encoding %s", errs.ErrInvalidSetting, et)
		}
		c.columns = et

		return nil
	})
}

// WithBigEndian writes the body in big-endian byte order.
func WithBigEndian() EncodeOption {
	return options.NoError(func(c *encodeConfig) {
		c.engine = endian.GetBigEndianEngine()
	})
}

// Encode serializes f.
func Encode(f *Frame, opts ...EncodeOption) ([]byte, error) {
	cfg := &encodeConfig{
		compression: format.CompressionNone,
		columns:     format.EncodingRaw,
		engine:      endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("%w: nil frame", errs.ErrInvalidFrame)
	}

	bb := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(bb)

	e := cfg.engine
	body := bb.B
	for _, s := range f.strings() {
		if len(s) > math.MaxUint16 {
			return nil, fmt.Errorf("%w: string of %d bytes is too long", errs.ErrInvalidFrame, len(s))
		}
		body = e.AppendUint16(body, uint16(len(s)))
		body = append(body, s...)
	}
	body = endian.AppendFloat64s(e, body, []float64{f.XMin, f.XMax, f.Style.MarkerSize, f.Style.LineWidth})

	var styleFlags byte
	if f.Style.ShowGuess {
		styleFlags |= styleShowGuess
	}
	if f.Style.ShowResiduals {
		styleFlags |= styleShowResiduals
	}
	body = append(body, styleFlags)

	for _, kind := range format.Series {
		cols := f.columns(kind)
		n := len(cols[0])
		for _, c := range cols[1:] {
			if len(c) != n {
				return nil, fmt.Errorf("%w: %s series has ragged columns", errs.ErrInvalidFrame, kind)
			}
		}
		body = append(body, byte(kind))
		body = e.AppendUint32(body, uint32(n))
		for _, c := range cols {
			if cfg.columns == format.EncodingGorilla {
				start := len(body)
				body = e.AppendUint32(body, 0)
				body = encoding.AppendGorilla(body, c)
				e.PutUint32(body[start:], uint32(len(body)-start-4))

				continue
			}
			body = endian.AppendFloat64s(e, body, c)
		}
	}
	bb.B = body

	codec, _ := compress.GetCodec(cfg.compression)
	packed, err := codec.Compress(bb.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to compress frame: %w", err)
	}

	out := make([]byte, 0, headerSize+len(packed))
	out = append(out, frameMagic...)
	out = append(out, frameVersion, byte(cfg.compression))
	var flags byte
	if e == endian.GetBigEndianEngine() {
		flags |= flagBigEndian
	}
	if cfg.columns == format.EncodingGorilla {
		flags |= flagGorilla
	}
	out = append(out, flags, 0)
	out = e.AppendUint64(out, f.ModelID)
	out = append(out, packed...)

	return out, nil
}

// Decode parses a payload produced by Encode.
//
// Returns ErrInvalidFrame if data is truncated, corrupt or of an unknown version.
func Decode(data []byte) (*Frame, error) {
	if len(data) < headerSize || string(data[:4]) != frameMagic {
		return nil, fmt.Errorf("%w: missing frame header", errs.ErrInvalidFrame)
	}
	if data[4] != frameVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidFrame, data[4])
	}

	codec, err := compress.GetCodec(format.CompressionType(data[5]))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidFrame, err)
	}
	var e endian.EndianEngine = endian.GetLittleEndianEngine()
	if data[6]&flagBigEndian != 0 {
		e = endian.GetBigEndianEngine()
	}

	body, err := codec.Decompress(data[headerSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidFrame, err)
	}

	f := &Frame{ModelID: e.Uint64(data[8:16])}
	r := &reader{buf: body, engine: e, gorilla: data[6]&flagGorilla != 0}
	for _, dst := range f.stringFields() {
		*dst = r.readString()
	}
	nums := r.readFloat64s(4)
	if r.err == nil {
		f.XMin, f.XMax, f.Style.MarkerSize, f.Style.LineWidth = nums[0], nums[1], nums[2], nums[3]
	}
	styleFlags := r.readByte()
	f.Style.ShowGuess = styleFlags&styleShowGuess != 0
	f.Style.ShowResiduals = styleFlags&styleShowResiduals != 0

	for _, kind := range format.Series {
		if got := format.SeriesKind(r.readByte()); r.err == nil && got != kind {
			return nil, fmt.Errorf("%w: expected %s series, found %s", errs.ErrInvalidFrame, kind, got)
		}
		n := int(r.readUint32())
		dst := f.columnRefs(kind)
		for _, col := range dst {
			*col = r.readColumn(n)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(r.buf) {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidFrame, len(r.buf)-r.off)
	}

	return f, nil
}

func (f *Frame) strings() []string {
	s := f.Style
	return []string{f.Model, s.Title, s.XLabel, s.YLabel, s.XScale, s.YScale, s.DataColor, s.FitColor, s.GuessColor}
}

func (f *Frame) stringFields() []*string {
	s := &f.Style
	return []*string{&f.Model, &s.Title, &s.XLabel, &s.YLabel, &s.XScale, &s.YScale, &s.DataColor, &s.FitColor, &s.GuessColor}
}

func (f *Frame) columns(kind format.SeriesKind) [][]float64 {
	refs := f.columnRefs(kind)
	out := make([][]float64, len(refs))
	for i, r := range refs {
		out[i] = *r
	}

	return out
}

func (f *Frame) columnRefs(kind format.SeriesKind) []*[]float64 {
	switch kind {
	case format.SeriesActive:
		return []*[]float64{&f.Active.X, &f.Active.Y, &f.Active.Err}
	case format.SeriesExcluded:
		return []*[]float64{&f.Excluded.X, &f.Excluded.Y, &f.Excluded.Err}
	case format.SeriesGuess:
		return []*[]float64{&f.Guess.X, &f.Guess.Y}
	case format.SeriesFit:
		return []*[]float64{&f.Fit.X, &f.Fit.Y}
	case format.SeriesResiduals:
		return []*[]float64{&f.Residuals.X, &f.Residuals.Y, &f.Residuals.Err}
	default:
		return nil
	}
}

// reader consumes a frame body and records the first failure.
type reader struct {
	buf     []byte
	off     int
	engine  endian.EndianEngine
	gorilla bool
	err     error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.err = fmt.Errorf("%w: truncated body at offset %d", errs.ErrInvalidFrame, r.off)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n

	return b
}

func (r *reader) readByte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *reader) readUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}

	return r.engine.Uint32(b)
}

func (r *reader) readString() string {
	b := r.take(2)
	if b == nil {
		return ""
	}

	return string(r.take(int(r.engine.Uint16(b))))
}

func (r *reader) readFloat64s(n int) []float64 {
	if n > (len(r.buf)-r.off)/8 {
		r.take(len(r.buf) + 1)
		return nil
	}
	b := r.take(n * 8)
	if b == nil || n == 0 {
		return nil
	}

	return endian.Float64s(r.engine, b)
}

func (r *reader) readColumn(n int) []float64 {
	if !r.gorilla {
		return r.readFloat64s(n)
	}

	size := int(r.readUint32())
	b := r.take(size)
	if r.err != nil {
		return nil
	}
	vs, err := encoding.DecodeGorilla(b, n)
	if err != nil {
		r.err = fmt.Errorf("%w: %w", errs.ErrInvalidFrame, err)
		return nil
	}

	return vs
}
