// Package structcodec encodes flat structs of primitives, strings and
// slices into a compact self-describing layout.
package structcodec

import (
	"errors"
	"reflect"
	"sync"

	"github.com/rawbytedev/hexscriptex/internal/common"
)

var (
	ErrNotStruct    = errors.New("structcodec: expected struct")
	ErrNotStructPtr = errors.New("structcodec: expected pointer to struct")
	ErrUnsupported  = errors.New("structcodec: unsupported type")
	ErrTruncated    = errors.New("structcodec: truncated input")
	ErrCorrupt      = errors.New("structcodec: corrupt offsets")
)

// Layout:
//
//	Header: varint N (field count)
//	VarOffsets: varint per variable-size field, relative to body start
//	Body: fields in declaration order; fixed fields little endian,
//	      strings and []byte as varint length + bytes,
//	      other slices as varint count + elements.
type Codec struct {
	mu   sync.RWMutex
	plan map[reflect.Type]*fieldPlan
}

type fieldPlan struct {
	fields   []fieldInfo
	varCount int
}

type fieldInfo struct {
	idx   int
	kind  reflect.Kind
	elem  reflect.Kind
	isVar bool
}

func New() *Codec {
	return &Codec{plan: make(map[reflect.Type]*fieldPlan)}
}

var std = New()

// Marshal encodes v with the package codec.
func Marshal(v any) ([]byte, error) { return std.Encode(v) }

// Unmarshal decodes data into out with the package codec.
func Unmarshal(data []byte, out any) error { return std.Decode(data, out) }

func (c *Codec) getPlan(t reflect.Type) (*fieldPlan, error) {
	c.mu.RLock()
	if plan, ok := c.plan[t]; ok {
		c.mu.RUnlock()
		return plan, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if plan, ok := c.plan[t]; ok {
		return plan, nil
	}

	plan := &fieldPlan{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" && !sf.Anonymous {
			continue // skip unexported
		}
		k := sf.Type.Kind()
		info := fieldInfo{idx: i, kind: k, isVar: !common.IsFixedKind(k)}
		switch {
		case common.IsFixedKind(k), k == reflect.String:
		case k == reflect.Slice:
			info.elem = sf.Type.Elem().Kind()
			if !common.IsFixedKind(info.elem) && info.elem != reflect.String {
				return nil, ErrUnsupported
			}
		default:
			return nil, ErrUnsupported
		}
		if info.isVar {
			plan.varCount++
		}
		plan.fields = append(plan.fields, info)
	}
	c.plan[t] = plan
	return plan, nil
}

func (c *Codec) Encode(val any) ([]byte, error) {
	v := reflect.ValueOf(val)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}
	plan, err := c.getPlan(v.Type())
	if err != nil {
		return nil, err
	}

	body := make([]byte, 0, 64)
	varOffsets := make([]int, 0, plan.varCount)
	for _, field := range plan.fields {
		fv := v.Field(field.idx)
		if !field.isVar {
			body = common.AppendFixed(body, fv)
			continue
		}
		varOffsets = append(varOffsets, len(body))
		switch {
		case field.kind == reflect.String:
			body = appendBytes(body, []byte(fv.String()))
		case field.elem == reflect.Uint8:
			body = appendBytes(body, fv.Bytes())
		default:
			l := fv.Len()
			body = common.WriteVarUint(body, uint64(l))
			for j := 0; j < l; j++ {
				elem := fv.Index(j)
				if field.elem == reflect.String {
					body = appendBytes(body, []byte(elem.String()))
				} else {
					body = common.AppendFixed(body, elem)
				}
			}
		}
	}

	out := common.WriteVarUint(make([]byte, 0, len(body)+2*len(varOffsets)+2), uint64(len(plan.fields)))
	for _, off := range varOffsets {
		out = common.WriteVarUint(out, uint64(off))
	}
	return append(out, body...), nil
}

func appendBytes(buf, b []byte) []byte {
	buf = common.WriteVarUint(buf, uint64(len(b)))
	return append(buf, b...)
}

// Decode fills out from data. Trailing fields missing from data keep their
// zero value; more fields than out declares is an error.
func (c *Codec) Decode(data []byte, out any) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return ErrNotStructPtr
	}
	dst := v.Elem()
	plan, err := c.getPlan(dst.Type())
	if err != nil {
		return err
	}

	N, n := common.ReadVarUint(data)
	if n == 0 {
		return ErrTruncated
	}
	if N > uint64(len(plan.fields)) {
		return ErrCorrupt
	}
	cursor := n
	fields := plan.fields[:N]

	var varOffsets []int
	for _, field := range fields {
		if field.isVar {
			off, n := common.ReadVarUint(data[cursor:])
			if n == 0 {
				return ErrTruncated
			}
			cursor += n
			varOffsets = append(varOffsets, int(off))
		}
	}

	body := data[cursor:]
	pos := 0
	var varIdx int
	for _, field := range fields {
		fv := dst.Field(field.idx)
		if !field.isVar {
			sz := common.FixedSize(field.kind)
			if pos+sz > len(body) {
				return ErrTruncated
			}
			common.SetFixed(fv, body[pos:pos+sz], field.kind)
			pos += sz
			continue
		}
		if varOffsets[varIdx] != pos {
			return ErrCorrupt
		}
		varIdx++

		switch {
		case field.kind == reflect.String:
			b, next, err := readBytes(body, pos)
			if err != nil {
				return err
			}
			fv.SetString(string(b))
			pos = next
		case field.elem == reflect.Uint8:
			b, next, err := readBytes(body, pos)
			if err != nil {
				return err
			}
			fv.SetBytes(append([]byte(nil), b...))
			pos = next
		default:
			cnt, n := common.ReadVarUint(body[pos:])
			if n == 0 || cnt > uint64(len(body)) {
				return ErrTruncated
			}
			pos += n
			slice := reflect.MakeSlice(fv.Type(), int(cnt), int(cnt))
			for i := 0; i < int(cnt); i++ {
				ev := slice.Index(i)
				if field.elem == reflect.String {
					b, next, err := readBytes(body, pos)
					if err != nil {
						return err
					}
					ev.SetString(string(b))
					pos = next
					continue
				}
				sz := common.FixedSize(field.elem)
				if pos+sz > len(body) {
					return ErrTruncated
				}
				common.SetFixed(ev, body[pos:pos+sz], field.elem)
				pos += sz
			}
			fv.Set(slice)
		}
	}
	return nil
}

func readBytes(body []byte, pos int) ([]byte, int, error) {
	l, n := common.ReadVarUint(body[pos:])
	if n == 0 {
		return nil, 0, ErrTruncated
	}
	start := pos + n
	if l > uint64(len(body)-start) {
		return nil, 0, ErrTruncated
	}
	end := start + int(l)
	return body[start:end], end, nil
}
