package cosave

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/rawbytedev/hexscriptex/internal/structcodec"
	"github.com/rawbytedev/hexscriptex/pkg/forms"
)

type record struct {
	info RecordInfo
	data []byte
}

// Reader walks the records of a co-save. Primitive reads are bounded by
// the current record.
type Reader struct {
	header  Header
	saved   forms.LoadOrder
	current forms.LoadOrder
	flags   uint16

	records []record
	next    int
	cur     []byte
	off     int
}

var _ RecordDecoder = (*Reader)(nil)

// Open reads a whole co-save from r. current is the load order of the
// running session, used to resolve stored FormIDs.
func Open(r io.Reader, current forms.LoadOrder) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cosave: failed to read: %w", err)
	}
	return NewReader(data, current)
}

func NewReader(data []byte, current forms.LoadOrder) (*Reader, error) {
	if len(data) < PreambleSize {
		return nil, fmt.Errorf("%w: preamble: got %d bytes, expected %d", ErrTruncated, len(data), PreambleSize)
	}
	if magic := binary.LittleEndian.Uint32(data); magic != Magic {
		return nil, fmt.Errorf("%w: got %08x, expected %08x", ErrBadMagic, magic, Magic)
	}
	if version := binary.LittleEndian.Uint16(data[4:]); version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	flags := binary.LittleEndian.Uint16(data[6:])

	body := data[PreambleSize:]
	if flags&FlagZstd != 0 {
		var err error
		body, err = decompressBody(body)
		if err != nil {
			return nil, err
		}
	}

	if len(body) < 4 {
		return nil, fmt.Errorf("%w: missing checksum", ErrTruncated)
	}
	payload := body[:len(body)-4]
	if want := binary.LittleEndian.Uint32(body[len(body)-4:]); crc32.ChecksumIEEE(payload) != want {
		return nil, ErrChecksum
	}

	r := &Reader{current: current, flags: flags}
	if err := r.parse(payload); err != nil {
		return nil, err
	}
	r.saved = r.header.LoadOrder()
	return r, nil
}

func (r *Reader) parse(payload []byte) error {
	pos := 0
	u32 := func(what string) (uint32, error) {
		if len(payload)-pos < 4 {
			return 0, fmt.Errorf("%w: %s", ErrTruncated, what)
		}
		v := binary.LittleEndian.Uint32(payload[pos:])
		pos += 4
		return v, nil
	}

	hdrLen, err := u32("header length")
	if err != nil {
		return err
	}
	if uint64(hdrLen) > uint64(len(payload)-pos) {
		return fmt.Errorf("%w: header: got %d bytes, expected %d", ErrTruncated, len(payload)-pos, hdrLen)
	}
	if err := structcodec.Unmarshal(payload[pos:pos+int(hdrLen)], &r.header); err != nil {
		return fmt.Errorf("cosave: failed to decode header: %w", err)
	}
	pos += int(hdrLen)

	count, err := u32("record count")
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		var info RecordInfo
		if info.Type, err = u32(fmt.Sprintf("record %d type", i)); err != nil {
			return err
		}
		if info.Version, err = u32(fmt.Sprintf("record %d version", i)); err != nil {
			return err
		}
		if info.Length, err = u32(fmt.Sprintf("record %d length", i)); err != nil {
			return err
		}
		if uint64(info.Length) > uint64(len(payload)-pos) {
			return fmt.Errorf("%w: record %d (%s): got %d bytes, expected %d",
				ErrTruncated, i, info.TypeString(), len(payload)-pos, info.Length)
		}
		end := pos + int(info.Length)
		r.records = append(r.records, record{info: info, data: payload[pos:end]})
		pos = end
	}
	if pos != len(payload) {
		return fmt.Errorf("cosave: %d trailing bytes after records", len(payload)-pos)
	}
	return nil
}

func (r *Reader) Header() Header { return r.header }

// Compressed reports whether the body was stored zstd-compressed.
func (r *Reader) Compressed() bool { return r.flags&FlagZstd != 0 }

// Records lists every record without moving the read position.
func (r *Reader) Records() []RecordInfo {
	infos := make([]RecordInfo, len(r.records))
	for i, rec := range r.records {
		infos[i] = rec.info
	}
	return infos
}

// NextRecord moves to the next record, skipping anything left unread in
// the current one.
func (r *Reader) NextRecord() (RecordInfo, bool) {
	if r.next >= len(r.records) {
		r.cur, r.off = nil, 0
		return RecordInfo{}, false
	}
	rec := r.records[r.next]
	r.next++
	r.cur, r.off = rec.data, 0
	return rec.info, true
}

// Remaining reports the unread bytes of the current record.
func (r *Reader) Remaining() int { return len(r.cur) - r.off }

func (r *Reader) take(n int) ([]byte, error) {
	if r.cur == nil {
		return nil, ErrNoRecord
	}
	if n > len(r.cur)-r.off {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrRecordUnderflow, n, len(r.cur)-r.off)
	}
	b := r.cur[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (r *Reader) ReadString() (string, error) {
	b, err := r.take(2)
	if err != nil {
		return "", err
	}
	n := int(binary.LittleEndian.Uint16(b))
	if b, err = r.take(n); err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) ResolveFormID(id forms.FormID) (forms.FormID, bool) {
	return r.current.Resolve(r.saved, id)
}
