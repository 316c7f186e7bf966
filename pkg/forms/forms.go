// Package forms models engine content objects addressed by 32-bit FormIDs.
package forms

import (
	"errors"
	"fmt"
	"sync"
)

var ErrDuplicateForm = errors.New("forms: duplicate form id")

// FormID is a host-wide stable identifier. The high byte is the index of
// the owning plugin in the load order.
type FormID uint32

const (
	// LightModIndex marks forms owned by a light plugin; bits 12-23 carry
	// the light plugin index.
	LightModIndex byte = 0xFE
	// RuntimeModIndex marks forms created at runtime. They survive load
	// order changes untouched.
	RuntimeModIndex byte = 0xFF
)

func (id FormID) ModIndex() byte { return byte(id >> 24) }

func (id FormID) LightIndex() uint16 { return uint16(id>>12) & 0xFFF }

func (id FormID) WithModIndex(idx byte) FormID {
	return FormID(uint32(idx)<<24 | uint32(id)&0x00FFFFFF)
}

func (id FormID) String() string { return fmt.Sprintf("%08X", uint32(id)) }

type Form struct {
	ID       FormID
	EditorID string
}

// Ref is a non-owning reference to a Form. The zero value references
// nothing.
type Ref struct {
	form *Form
}

var NoRef = Ref{}

func RefTo(f *Form) Ref { return Ref{form: f} }

func (r Ref) Form() (*Form, bool) { return r.form, r.form != nil }

func (r Ref) IsNone() bool { return r.form == nil }

// ID returns the referenced FormID, or 0 when the reference is absent.
func (r Ref) ID() FormID {
	if r.form == nil {
		return 0
	}
	return r.form.ID
}

// Table holds the forms currently loaded in the session.
type Table struct {
	mu    sync.RWMutex
	forms map[FormID]*Form
}

func NewTable() *Table {
	return &Table{forms: make(map[FormID]*Form)}
}

func (t *Table) Add(f *Form) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, dup := t.forms[f.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateForm, f.ID)
	}
	t.forms[f.ID] = f
	return nil
}

// LookupFormByID returns the live form or nil when it is not loaded.
func (t *Table) LookupFormByID(id FormID) *Form {
	if id == 0 {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.forms[id]
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.forms)
}
