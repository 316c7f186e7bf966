package papyrus

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/rawbytedev/hexscriptex/pkg/forms"
	"github.com/rawbytedev/hexscriptex/pkg/objstore"
	"github.com/rawbytedev/hexscriptex/pkg/optional"
)

// OptionalHost carries what the SLTOptional functions need: the store the
// script handles point into and the environment new values are built with.
type OptionalHost struct {
	Objects *objstore.Store
	Env     optional.Env
}

// OptionalExports returns the SLTOptional function table. Values are
// passed to scripts as object handles and forms as FormID numbers, with 0
// meaning none. A handle that names no SLTOptional behaves as an empty
// value: getters return the default and setters do nothing. Integers
// outside the int32 range and form ids outside the uint32 range raise an
// argument error instead of wrapping.
func OptionalExports(host *OptionalHost) []NativeFunction {
	static := func(name string, fn lua.LGFunction) NativeFunction {
		return NativeFunction{Name: name, Class: optional.ClassName, Static: true, Flags: FlagNoWait, Fn: fn}
	}
	member := func(name string, fn lua.LGFunction) NativeFunction {
		return NativeFunction{Name: name, Class: optional.ClassName, Flags: FlagNoWait, Fn: fn}
	}

	return []NativeFunction{
		static("CreateEmpty", host.createEmpty),
		static("CreateInt", host.createInt),
		static("CreateFloat", host.createFloat),
		static("CreateBool", host.createBool),
		static("CreateString", host.createString),
		static("CreateForm", host.createForm),

		member("HasValue", host.hasValue),
		member("GetType", host.getType),
		member("Reset", host.reset),

		member("GetInt", host.getInt),
		member("GetFloat", host.getFloat),
		member("GetBool", host.getBool),
		member("GetString", host.getString),
		member("GetForm", host.getForm),

		member("SetInt", host.setInt),
		member("SetFloat", host.setFloat),
		member("SetBool", host.setBool),
		member("SetString", host.setString),
		member("SetForm", host.setForm),
	}
}

// RegisterOptionalFuncs binds the SLTOptional table into reg.
func RegisterOptionalFuncs(reg *Registry, host *OptionalHost) error {
	for _, fn := range OptionalExports(host) {
		if err := reg.RegisterFunction(fn); err != nil {
			return fmt.Errorf("failed to register %s functions: %w", optional.ClassName, err)
		}
	}
	return nil
}

func (h *OptionalHost) push(L *lua.LState, o *optional.Optional) int {
	L.Push(lua.LNumber(h.Objects.Store(o)))
	return 1
}

// target resolves the handle in argument 1. It returns nil when the handle
// is nil, out of range or not an SLTOptional.
func (h *OptionalHost) target(L *lua.LState) *optional.Optional {
	if L.Get(1) == lua.LNil {
		return nil
	}
	raw := L.CheckInt64(1)
	if raw <= 0 || raw > math.MaxInt32 {
		return nil
	}
	o, _ := objstore.Access[*optional.Optional](h.Objects, objstore.Handle(raw))
	return o
}

// intArg reads an int32 argument. Numbers outside the int32 range raise an
// argument error.
func intArg(L *lua.LState, n int) int32 {
	v := L.CheckInt64(n)
	if v < math.MinInt32 || v > math.MaxInt32 {
		L.ArgError(n, "integer out of range")
	}
	return int32(v)
}

func optIntArg(L *lua.LState, n int, def int32) int32 {
	if L.Get(n) == lua.LNil {
		return def
	}
	return intArg(L, n)
}

func formIDArg(L *lua.LState, n int) forms.FormID {
	v := L.OptInt64(n, 0)
	if v < 0 || v > math.MaxUint32 {
		L.ArgError(n, "form id out of range")
	}
	return forms.FormID(v)
}

func (h *OptionalHost) formArg(L *lua.LState, n int) forms.Ref {
	id := formIDArg(L, n)
	if id == 0 || h.Env.Forms == nil {
		return forms.NoRef
	}
	return forms.RefTo(h.Env.Forms.LookupFormByID(id))
}

func (h *OptionalHost) createEmpty(L *lua.LState) int {
	return h.push(L, optional.New(h.Env))
}

func (h *OptionalHost) createInt(L *lua.LState) int {
	o := optional.New(h.Env)
	o.SetInt(intArg(L, 1))
	return h.push(L, o)
}

func (h *OptionalHost) createFloat(L *lua.LState) int {
	o := optional.New(h.Env)
	o.SetFloat(float32(L.CheckNumber(1)))
	return h.push(L, o)
}

func (h *OptionalHost) createBool(L *lua.LState) int {
	o := optional.New(h.Env)
	o.SetBool(L.CheckBool(1))
	return h.push(L, o)
}

func (h *OptionalHost) createString(L *lua.LState) int {
	o := optional.New(h.Env)
	o.SetString(L.CheckString(1))
	return h.push(L, o)
}

func (h *OptionalHost) createForm(L *lua.LState) int {
	o := optional.New(h.Env)
	o.SetForm(h.formArg(L, 1))
	return h.push(L, o)
}

func (h *OptionalHost) hasValue(L *lua.LState) int {
	o := h.target(L)
	L.Push(lua.LBool(o != nil && o.HasValue()))
	return 1
}

func (h *OptionalHost) getType(L *lua.LState) int {
	t := optional.TypeNone
	if o := h.target(L); o != nil {
		t = o.Type()
	}
	L.Push(lua.LNumber(t))
	return 1
}

func (h *OptionalHost) reset(L *lua.LState) int {
	if o := h.target(L); o != nil {
		o.Reset()
	}
	return 0
}

func (h *OptionalHost) getInt(L *lua.LState) int {
	v := optIntArg(L, 2, 0)
	if o := h.target(L); o != nil {
		v = o.GetInt(v)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (h *OptionalHost) getFloat(L *lua.LState) int {
	v := float32(L.OptNumber(2, 0))
	if o := h.target(L); o != nil {
		v = o.GetFloat(v)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (h *OptionalHost) getBool(L *lua.LState) int {
	v := L.OptBool(2, false)
	if o := h.target(L); o != nil {
		v = o.GetBool(v)
	}
	L.Push(lua.LBool(v))
	return 1
}

func (h *OptionalHost) getString(L *lua.LState) int {
	v := L.OptString(2, "")
	if o := h.target(L); o != nil {
		v = o.GetString(v)
	}
	L.Push(lua.LString(v))
	return 1
}

func (h *OptionalHost) getForm(L *lua.LState) int {
	id := formIDArg(L, 2)
	if o := h.target(L); o != nil && o.Type() == optional.TypeForm {
		id = o.FormUnchecked().ID()
	}
	L.Push(lua.LNumber(id))
	return 1
}

func (h *OptionalHost) setInt(L *lua.LState) int {
	v := intArg(L, 2)
	if o := h.target(L); o != nil {
		o.SetInt(v)
	}
	return 0
}

func (h *OptionalHost) setFloat(L *lua.LState) int {
	v := float32(L.CheckNumber(2))
	if o := h.target(L); o != nil {
		o.SetFloat(v)
	}
	return 0
}

func (h *OptionalHost) setBool(L *lua.LState) int {
	v := L.CheckBool(2)
	if o := h.target(L); o != nil {
		o.SetBool(v)
	}
	return 0
}

func (h *OptionalHost) setString(L *lua.LState) int {
	v := L.CheckString(2)
	if o := h.target(L); o != nil {
		o.SetString(v)
	}
	return 0
}

func (h *OptionalHost) setForm(L *lua.LState) int {
	ref := h.formArg(L, 2)
	if o := h.target(L); o != nil {
		o.SetForm(ref)
	}
	return 0
}
