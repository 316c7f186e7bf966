// Package papyrus exposes native functions to scripts running on the
// embedded Lua VM. Functions are grouped by class; each class is a global
// table holding its functions.
package papyrus

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

type FunctionFlag uint32

const (
	// FlagNoWait marks a function that completes immediately and never
	// yields back to the scheduler.
	FlagNoWait FunctionFlag = 1 << iota
)

// NativeFunction describes one script-callable function. Static functions
// are called on the class; the others take the object handle as their
// first argument.
type NativeFunction struct {
	Name   string
	Class  string
	Static bool
	Flags  FunctionFlag
	Fn     lua.LGFunction
}

var (
	ErrInvalidFunction   = errors.New("papyrus: invalid native function")
	ErrDuplicateFunction = errors.New("papyrus: function already registered")
	ErrUnknownFunction   = errors.New("papyrus: unknown function")
)

type class struct {
	table *lua.LTable
	funcs map[string]*NativeFunction
}

type Registry struct {
	L      *lua.LState
	logger *zap.Logger

	mu      sync.RWMutex
	classes map[string]*class
}

func NewRegistry(L *lua.LState, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		L:       L,
		logger:  logger,
		classes: make(map[string]*class),
	}
}

// RegisterFunction binds fn into its class table, creating the table as a
// Lua global on first use.
func (r *Registry) RegisterFunction(fn NativeFunction) error {
	if fn.Name == "" || fn.Class == "" || fn.Fn == nil {
		return fmt.Errorf("%w: %q.%q", ErrInvalidFunction, fn.Class, fn.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.classes[fn.Class]
	if !ok {
		c = &class{table: r.L.NewTable(), funcs: make(map[string]*NativeFunction)}
		r.L.SetGlobal(fn.Class, c.table)
		r.classes[fn.Class] = c
	}
	if _, dup := c.funcs[fn.Name]; dup {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateFunction, fn.Class, fn.Name)
	}

	c.funcs[fn.Name] = &fn
	r.L.SetField(c.table, fn.Name, r.L.NewFunction(fn.Fn))

	r.logger.Debug("registered native function",
		zap.String("class", fn.Class),
		zap.String("name", fn.Name),
		zap.Bool("static", fn.Static))
	return nil
}

func (r *Registry) SetFunctionFlags(className, name string, flags FunctionFlag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn := r.lookup(className, name)
	if fn == nil {
		return fmt.Errorf("%w: %s.%s", ErrUnknownFunction, className, name)
	}
	fn.Flags = flags
	return nil
}

func (r *Registry) FunctionFlags(className, name string) (FunctionFlag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn := r.lookup(className, name)
	if fn == nil {
		return 0, false
	}
	return fn.Flags, true
}

// Functions lists the names registered under className, sorted.
func (r *Registry) Functions(className string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.classes[className]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(c.funcs))
	for name := range c.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(className, name string) *NativeFunction {
	c, ok := r.classes[className]
	if !ok {
		return nil
	}
	return c.funcs[name]
}
