package autoplay

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"escalator/internal/game"
)

// LuaPolicy delegates the choice to a script that defines
//
//	function choose(moves, state) ... end
//
// moves is an array of destinations in published order. state carries
// score, stock (cards left), waste (encoded top card, 0 when empty),
// status and tableau (rows of encoded slots). choose returns a destination.
type LuaPolicy struct {
	mu sync.Mutex
	L  *lua.LState
}

// NewLuaPolicy compiles source and checks that it defines choose.
func NewLuaPolicy(source string) (*LuaPolicy, error) {
	L := lua.NewState()
	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("load policy script: %w", err)
	}
	return newLuaPolicy(L)
}

// LoadLuaPolicy reads the script from path.
func LoadLuaPolicy(path string) (*LuaPolicy, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("load policy script %s: %w", path, err)
	}
	return newLuaPolicy(L)
}

func newLuaPolicy(L *lua.LState) (*LuaPolicy, error) {
	if L.GetGlobal("choose").Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("policy script does not define choose(moves, state)")
	}
	return &LuaPolicy{L: L}, nil
}

// Close releases the Lua state.
func (p *LuaPolicy) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.L.Close()
}

func (p *LuaPolicy) Choose(s game.Solitaire) (int, error) {
	moves := s.AvailableMoves()
	if len(moves) == 0 {
		return 0, ErrNoMoves
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	L := p.L
	movesTbl := L.NewTable()
	for i, mv := range moves {
		movesTbl.RawSetInt(i+1, lua.LNumber(mv.Destination))
	}
	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("choose"),
		NRet:    1,
		Protect: true,
	}, movesTbl, p.stateTable(s)); err != nil {
		return 0, fmt.Errorf("policy script: %w", err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("policy script returned %s, want a destination", ret.Type())
	}
	return int(n), nil
}

func (p *LuaPolicy) stateTable(s game.Solitaire) *lua.LTable {
	L := p.L
	enc := s.Encode()

	state := L.NewTable()
	state.RawSetString("score", lua.LNumber(s.Score()))
	state.RawSetString("stock", lua.LNumber(len(enc.Stock)))
	state.RawSetString("status", lua.LString(s.Status()))
	waste := 0
	if n := len(enc.Waste); n > 0 {
		waste = enc.Waste[n-1]
	}
	state.RawSetString("waste", lua.LNumber(waste))

	rows := L.NewTable()
	for r, row := range enc.Tableau {
		t := L.NewTable()
		for c, v := range row {
			t.RawSetInt(c+1, lua.LNumber(v))
		}
		rows.RawSetInt(r+1, t)
	}
	state.RawSetString("tableau", rows)
	return state
}
