package optional

import (
	"errors"
	"fmt"

	"github.com/rawbytedev/hexscriptex/pkg/cosave"
	"github.com/rawbytedev/hexscriptex/pkg/forms"
)

var (
	ErrVersionMismatch = errors.New("optional: unsupported save version")
	ErrUnknownType     = errors.New("optional: unknown value type")
)

// Save writes [type u32][payload]. Form values store their FormID, or 0
// for an absent reference.
func (o *Optional) Save(enc cosave.Encoder) error {
	if err := enc.WriteU32(uint32(o.Type())); err != nil {
		return err
	}

	switch v := o.v.(type) {
	case intVariant:
		return enc.WriteI32(int32(v))
	case floatVariant:
		return enc.WriteF32(float32(v))
	case boolVariant:
		return enc.WriteBool(bool(v))
	case stringVariant:
		return enc.WriteString(v.text())
	case formVariant:
		return enc.WriteU32(uint32(v.ref.ID()))
	default:
		return nil
	}
}

// Load replaces the value with one read from dec. A version other than
// SaveVersion fails before anything is touched. A stored form whose plugin
// is gone, or that is not loaded, comes back as an absent reference.
//
// An unknown type tag fails with ErrUnknownType and leaves the value None,
// so the object store drops it rather than restoring a value with a tag no
// getter understands.
func (o *Optional) Load(dec cosave.Decoder, version uint32) error {
	if version != SaveVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrVersionMismatch, version, SaveVersion)
	}

	o.Reset()

	tag, err := dec.ReadU32()
	if err != nil {
		return fmt.Errorf("optional: failed to load type: %w", err)
	}

	switch t := Type(tag); t {
	case TypeNone:
		return nil
	case TypeInt:
		v, err := dec.ReadI32()
		if err != nil {
			return fmt.Errorf("optional: failed to load int: %w", err)
		}
		o.v = intVariant(v)
	case TypeFloat:
		v, err := dec.ReadF32()
		if err != nil {
			return fmt.Errorf("optional: failed to load float: %w", err)
		}
		o.v = floatVariant(v)
	case TypeBool:
		v, err := dec.ReadBool()
		if err != nil {
			return fmt.Errorf("optional: failed to load bool: %w", err)
		}
		o.v = boolVariant(v)
	case TypeString:
		v, err := dec.ReadString()
		if err != nil {
			return fmt.Errorf("optional: failed to load string: %w", err)
		}
		o.v = o.intern(v)
	case TypeForm:
		id, err := dec.ReadU32()
		if err != nil {
			return fmt.Errorf("optional: failed to load form id: %w", err)
		}
		o.v = formVariant{ref: o.resolveForm(dec, forms.FormID(id))}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownType, tag)
	}
	return nil
}

func (o *Optional) resolveForm(dec cosave.Decoder, id forms.FormID) forms.Ref {
	if id == 0 {
		return forms.NoRef
	}
	resolved, ok := dec.ResolveFormID(id)
	if !ok || o.env.Forms == nil {
		return forms.NoRef
	}
	return forms.RefTo(o.env.Forms.LookupFormByID(resolved))
}
