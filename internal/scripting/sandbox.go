// Package scripting evaluates content scripts, such as Lua item catalogs, in
// a sandboxed GopherLua VM. It has no dependency on game domain packages.
package scripting

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget of a Sandbox created with a
// limit of 0.
const DefaultInstructionLimit = 1_000_000

// ErrInstructionLimit is returned when a script exhausts its opcode budget.
var ErrInstructionLimit = errors.New("scripting: instruction limit exceeded")

// unsafeGlobals are cleared after the base library is opened.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// budgetContext cancels itself once Done has been called limit times.
// GopherLua's main loop calls Done once per opcode, so this is an exact
// instruction count.
type budgetContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining atomic.Int64
}

func (c *budgetContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// Sandbox is a GopherLua VM limited to the base, table, string and math
// libraries and a fixed opcode budget shared by every evaluation.
//
// Not safe for concurrent use.
type Sandbox struct {
	L      *lua.LState
	budget *budgetContext
	limit  int64
}

// New creates a Sandbox.
//
// Precondition: limit >= 0; 0 selects DefaultInstructionLimit.
// Postcondition: Returns a Sandbox the caller must Close.
func New(limit int) *Sandbox {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	base, cancel := context.WithCancel(context.Background())
	budget := &budgetContext{Context: base, cancel: cancel}
	budget.remaining.Store(int64(limit))
	L.SetContext(budget)

	return &Sandbox{L: L, budget: budget, limit: int64(limit)}
}

// Close releases the VM.
func (s *Sandbox) Close() {
	s.budget.cancel()
	s.L.Close()
}

// Used returns the number of opcodes executed so far.
func (s *Sandbox) Used() int {
	return int(min(s.limit-s.budget.remaining.Load(), s.limit))
}

// EvalFile runs the script at path and returns its first return value, or
// lua.LNil when it returns nothing.
//
// Postcondition: on budget exhaustion the error wraps ErrInstructionLimit.
func (s *Sandbox) EvalFile(path string) (lua.LValue, error) {
	top := s.L.GetTop()
	if err := s.L.DoFile(path); err != nil {
		return lua.LNil, s.wrap(path, err)
	}
	return s.result(top), nil
}

// EvalString runs src, named name in error messages, and returns its first
// return value.
func (s *Sandbox) EvalString(name, src string) (lua.LValue, error) {
	top := s.L.GetTop()
	fn, err := s.L.LoadString(src)
	if err != nil {
		return lua.LNil, fmt.Errorf("%s: %w", name, err)
	}
	s.L.Push(fn)
	if err := s.L.PCall(0, lua.MultRet, nil); err != nil {
		return lua.LNil, s.wrap(name, err)
	}
	return s.result(top), nil
}

func (s *Sandbox) result(top int) lua.LValue {
	defer s.L.SetTop(top)
	if s.L.GetTop() == top {
		return lua.LNil
	}
	return s.L.Get(top + 1)
}

func (s *Sandbox) wrap(name string, err error) error {
	if s.budget.Err() != nil {
		return fmt.Errorf("%s: %w after %d opcodes", name, ErrInstructionLimit, s.limit)
	}
	return fmt.Errorf("%s: %w", name, err)
}
