package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine table into L:
//
//	engine.roll(n)  -> integer in [0, n), drawn from the shared roller
//	engine.log(msg) -> writes msg to the debug log
//
// Precondition: L must be from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "roll", L.NewFunction(m.luaRoll))
	L.SetField(engine, "log", L.NewFunction(m.luaLog))
	L.SetGlobal("engine", engine)
}

func (m *Manager) luaRoll(L *lua.LState) int {
	n := L.CheckInt(1)
	if n <= 0 {
		L.ArgError(1, "n must be > 0")
		return 0
	}
	L.Push(lua.LNumber(m.roller.Intn("script roll", n)))
	return 1
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Debug("script", zap.String("msg", L.CheckString(1)))
	return 0
}
