// Package optional implements SLTOptional, a script-visible value that is
// either empty or holds exactly one of an int, float, bool, string or form
// reference.
package optional

import (
	"fmt"
	"strconv"

	"github.com/rawbytedev/hexscriptex/pkg/forms"
	"github.com/rawbytedev/hexscriptex/pkg/strpool"
)

const (
	ClassName = "SLTOptional"

	// SaveVersion is the only serialized layout Load accepts.
	SaveVersion uint32 = 1
)

// Type is the tag of the active variant. Its numeric values are part of
// the save format and the script surface.
type Type uint32

const (
	TypeNone Type = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeString
	TypeForm
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	case TypeString:
		return "String"
	case TypeForm:
		return "Form"
	default:
		return "Type(" + strconv.FormatUint(uint64(t), 10) + ")"
	}
}

// StringPool is the host's text interning facility.
type StringPool interface {
	Intern(s string) strpool.FixedString
	Release(f strpool.FixedString)
}

// FormLookup finds live forms by identifier.
type FormLookup interface {
	LookupFormByID(id forms.FormID) *forms.Form
}

// Env carries the host services an Optional talks to.
type Env struct {
	Strings StringPool
	Forms   FormLookup
}

type variant interface {
	typ() Type
}

type intVariant int32
type floatVariant float32
type boolVariant bool
// stringVariant holds pooled text, or the raw text when no pool is set.
type stringVariant struct {
	s   strpool.FixedString
	raw string
}
type formVariant struct{ ref forms.Ref }

func (intVariant) typ() Type    { return TypeInt }
func (floatVariant) typ() Type  { return TypeFloat }
func (boolVariant) typ() Type   { return TypeBool }
func (stringVariant) typ() Type { return TypeString }
func (formVariant) typ() Type   { return TypeForm }

func (v stringVariant) text() string {
	if v.s.IsEmpty() {
		return v.raw
	}
	return v.s.String()
}

// Optional is not safe for concurrent use; the script runtime serializes
// calls into it.
type Optional struct {
	env Env
	v   variant // nil when empty
}

// New returns an empty value. Values restored from a save are also built
// with New and then filled by Load.
func New(env Env) *Optional {
	return &Optional{env: env}
}

func (o *Optional) ClassName() string { return ClassName }

func (o *Optional) ClassVersion() uint32 { return SaveVersion }

func (o *Optional) HasValue() bool { return o.v != nil }

func (o *Optional) Type() Type {
	if o.v == nil {
		return TypeNone
	}
	return o.v.typ()
}

// clear releases whatever the active variant is associated with.
func (o *Optional) clear() {
	if s, ok := o.v.(stringVariant); ok && !s.s.IsEmpty() && o.env.Strings != nil {
		o.env.Strings.Release(s.s)
	}
	o.v = nil
}

func (o *Optional) Reset() { o.clear() }

// Release is called when the value is destroyed.
func (o *Optional) Release() { o.clear() }

func (o *Optional) SetInt(v int32) {
	o.clear()
	o.v = intVariant(v)
}

func (o *Optional) SetFloat(v float32) {
	o.clear()
	o.v = floatVariant(v)
}

func (o *Optional) SetBool(v bool) {
	o.clear()
	o.v = boolVariant(v)
}

func (o *Optional) SetString(v string) {
	o.clear()
	o.v = o.intern(v)
}

// SetForm stores a form reference. An absent reference is still a Form
// value.
func (o *Optional) SetForm(ref forms.Ref) {
	o.clear()
	o.v = formVariant{ref: ref}
}

func (o *Optional) intern(s string) stringVariant {
	if o.env.Strings == nil {
		return stringVariant{raw: s}
	}
	return stringVariant{s: o.env.Strings.Intern(s)}
}

func (o *Optional) GetInt(def int32) int32 {
	if v, ok := o.v.(intVariant); ok {
		return int32(v)
	}
	return def
}

func (o *Optional) GetFloat(def float32) float32 {
	if v, ok := o.v.(floatVariant); ok {
		return float32(v)
	}
	return def
}

func (o *Optional) GetBool(def bool) bool {
	if v, ok := o.v.(boolVariant); ok {
		return bool(v)
	}
	return def
}

func (o *Optional) GetString(def string) string {
	if v, ok := o.v.(stringVariant); ok {
		return v.text()
	}
	return def
}

func (o *Optional) GetForm(def forms.Ref) forms.Ref {
	if v, ok := o.v.(formVariant); ok {
		return v.ref
	}
	return def
}

// The Unchecked getters skip the tag test. Callers check Type first; on a
// mismatch they get the zero value.

func (o *Optional) IntUnchecked() int32 {
	v, _ := o.v.(intVariant)
	return int32(v)
}

func (o *Optional) FloatUnchecked() float32 {
	v, _ := o.v.(floatVariant)
	return float32(v)
}

func (o *Optional) BoolUnchecked() bool {
	v, _ := o.v.(boolVariant)
	return bool(v)
}

func (o *Optional) StringUnchecked() string {
	v, _ := o.v.(stringVariant)
	return v.text()
}

func (o *Optional) FormUnchecked() forms.Ref {
	v, _ := o.v.(formVariant)
	return v.ref
}

func (o *Optional) String() string {
	switch v := o.v.(type) {
	case nil:
		return "None"
	case intVariant:
		return fmt.Sprintf("Int(%d)", int32(v))
	case floatVariant:
		return fmt.Sprintf("Float(%g)", float32(v))
	case boolVariant:
		return fmt.Sprintf("Bool(%t)", bool(v))
	case stringVariant:
		return fmt.Sprintf("String(%q)", v.text())
	case formVariant:
		if v.ref.IsNone() {
			return "Form(none)"
		}
		return fmt.Sprintf("Form(%s)", v.ref.ID())
	default:
		return "Optional(?)"
	}
}
