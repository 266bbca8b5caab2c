// Package scripting runs sandboxed GopherLua scripts that steer monster
// behaviour. It knows nothing about combat; callers pass plain Lua values.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget of one hook call when none is configured.
const DefaultInstructionLimit = 100_000

// strippedGlobals are removed after the safe libraries open. Mood scripts
// only read numbers and return a word; none of these are needed.
var strippedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"}

// opBudget is a context whose Done channel closes once it has been polled
// more than n times. GopherLua polls Done once per executed opcode.
type opBudget struct {
	context.Context
	left   atomic.Int64
	cancel context.CancelFunc
}

func (b *opBudget) Done() <-chan struct{} {
	if b.left.Add(-1) < 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// budget arms L with a fresh allowance of limit opcodes (the default when
// limit <= 0) and returns the function that disarms it.
func budget(L *lua.LState, limit int) func() {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &opBudget{Context: ctx, cancel: cancel}
	b.left.Store(int64(limit))
	L.SetContext(b)
	return func() {
		cancel()
		L.RemoveContext()
	}
}

// NewSandboxedState returns a GopherLua state with only the base, table,
// string and math libraries, minus strippedGlobals and string.rep. When
// instLimit > 0 the state is armed with that budget for code run directly on
// it; Manager arms its own per call instead.
//
// Postcondition: the caller owns the LState and must Close it.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	if str, ok := L.GetGlobal(lua.StringLibName).(*lua.LTable); ok {
		str.RawSetString("rep", lua.LNil)
	}
	if instLimit > 0 {
		budget(L, instLimit)
	}
	return L
}
