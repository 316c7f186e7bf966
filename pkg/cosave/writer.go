package cosave

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/jonboulle/clockwork"
	"github.com/klauspost/compress/zstd"

	"github.com/rawbytedev/hexscriptex/internal/common"
	"github.com/rawbytedev/hexscriptex/internal/structcodec"
	"github.com/rawbytedev/hexscriptex/pkg/forms"
)

type WriterOption func(w *Writer)

// WithLoadOrder records the load order the saved FormIDs refer to.
func WithLoadOrder(lo forms.LoadOrder) WriterOption {
	return func(w *Writer) { w.loadOrder = lo }
}

func WithClock(clock clockwork.Clock) WriterOption {
	return func(w *Writer) { w.clock = clock }
}

// WithCompression compresses the body with zstd at the given level.
func WithCompression(level zstd.EncoderLevel) WriterOption {
	return func(w *Writer) {
		w.compress = true
		w.level = level
	}
}

// Writer accumulates records in memory until Finish.
type Writer struct {
	loadOrder forms.LoadOrder
	clock     clockwork.Clock
	compress  bool
	level     zstd.EncoderLevel

	records  []byte
	count    uint32
	open     bool
	start    int
	finished bool
}

var _ RecordEncoder = (*Writer)(nil)

func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// OpenRecord closes the current record, if any, and starts a new one.
func (w *Writer) OpenRecord(typ, version uint32) error {
	if w.finished {
		return ErrNoRecord
	}
	if err := w.closeRecord(); err != nil {
		return err
	}
	w.start = len(w.records)
	w.records = common.AppendU32(w.records, typ)
	w.records = common.AppendU32(w.records, version)
	w.records = common.AppendU32(w.records, 0) // length placeholder
	w.open = true
	w.count++
	return nil
}

func (w *Writer) closeRecord() error {
	if !w.open {
		return nil
	}
	length := len(w.records) - w.start - RecordHeaderSize
	if uint64(length) > math.MaxUint32 {
		return fmt.Errorf("cosave: record too large: %d bytes", length)
	}
	binary.LittleEndian.PutUint32(w.records[w.start+8:], uint32(length))
	w.open = false
	return nil
}

func (w *Writer) WriteU32(v uint32) error {
	if !w.open {
		return ErrNoRecord
	}
	w.records = common.AppendU32(w.records, v)
	return nil
}

func (w *Writer) WriteI32(v int32) error { return w.WriteU32(uint32(v)) }

func (w *Writer) WriteF32(v float32) error { return w.WriteU32(math.Float32bits(v)) }

func (w *Writer) WriteBool(v bool) error {
	if !w.open {
		return ErrNoRecord
	}
	w.records = common.AppendBool(w.records, v)
	return nil
}

// WriteString writes a u16 length followed by the bytes of s.
func (w *Writer) WriteString(s string) error {
	if !w.open {
		return ErrNoRecord
	}
	if len(s) > MaxStringLen {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	w.records = common.AppendU16(w.records, uint16(len(s)))
	w.records = append(w.records, s...)
	return nil
}

// Finish closes the open record and writes the co-save to out. The writer
// accepts no further records afterwards.
func (w *Writer) Finish(out io.Writer) error {
	if w.finished {
		return ErrNoRecord
	}
	if err := w.closeRecord(); err != nil {
		return err
	}
	w.finished = true

	header, err := structcodec.Marshal(Header{
		SavedAt:      w.clock.Now().Unix(),
		Plugins:      w.loadOrder.Plugins,
		LightPlugins: w.loadOrder.Light,
	})
	if err != nil {
		return fmt.Errorf("cosave: failed to encode header: %w", err)
	}

	body := make([]byte, 0, 4+len(header)+4+len(w.records)+4)
	body = common.AppendU32(body, uint32(len(header)))
	body = append(body, header...)
	body = common.AppendU32(body, w.count)
	body = append(body, w.records...)
	body = common.AppendU32(body, crc32.ChecksumIEEE(body))

	var flags uint16
	if w.compress {
		flags |= FlagZstd
		body, err = compressBody(w.level, body)
		if err != nil {
			return fmt.Errorf("cosave: failed to compress body: %w", err)
		}
	}

	preamble := make([]byte, 0, PreambleSize)
	preamble = common.AppendU32(preamble, Magic)
	preamble = common.AppendU16(preamble, FormatVersion)
	preamble = common.AppendU16(preamble, flags)

	if _, err := out.Write(preamble); err != nil {
		return fmt.Errorf("cosave: failed to write preamble: %w", err)
	}
	if _, err := out.Write(body); err != nil {
		return fmt.Errorf("cosave: failed to write body: %w", err)
	}
	return nil
}

// Bytes finishes the co-save into memory.
func (w *Writer) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Finish(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
