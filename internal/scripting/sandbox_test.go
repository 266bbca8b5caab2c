package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tilequest/internal/scripting"
)

func TestNewSandboxedState_Hardened(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	defer L.Close()
	for _, name := range []string{"os", "io", "debug", "package", "dofile", "loadfile", "load", "loadstring", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), name)
	}
	assert.Error(t, L.DoString(`return string.rep("x", 1e9)`))
}

func TestNewSandboxedState_MoodScriptRuns(t *testing.T) {
	L := scripting.NewSandboxedState(0)
	defer L.Close()
	require.NoError(t, L.DoString(`
		function mood(hp, max_hp)
			if hp * 4 <= max_hp then return string.lower("DEFEND") end
			return "attack"
		end
	`))
	require.NoError(t, L.CallByParam(lua.P{Fn: L.GetGlobal("mood"), NRet: 1, Protect: true}, lua.LNumber(2), lua.LNumber(10)))
	assert.Equal(t, "defend", L.Get(-1).String())
}

func TestNewSandboxedState_RunawayLoopStops(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 200).Draw(t, "limit")
		L := scripting.NewSandboxedState(limit)
		defer L.Close()
		if L.DoString(`local n = 0 while true do n = n + 1 end`) == nil {
			t.Fatalf("loop finished under a %d opcode budget", limit)
		}
	})
}
