// Package script runs Lua scripts driving the display.
//
// Globals available to scripts:
//
//	send(animation, ...)  sends animations as is, returns the last acknowledgment
//	reset()               sends the reset animation
//	play(sequence)        plays a sequence like `wakeup 2 happy` with the driver settings (auto reset, pause)
//	sleep(ms)             pauses the script
//	print(...)            logs its arguments
//	animations            table of the known animations indexed by name
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mdouchement/eyectl"
	"github.com/mdouchement/eyectl/eyes"
	"github.com/mdouchement/logger"
	lua "github.com/yuin/gopher-lua"
)

type Display interface {
	Send(ctx context.Context, a eyes.Animation) (string, error)
}

type Player interface {
	Play(ctx context.Context, seq []eyes.Animation) error
}

type Engine struct {
	display Display
	player  Player
	reset   eyes.Animation
}

func New(display Display, player Player, reset eyes.Animation) *Engine {
	return &Engine{
		display: display,
		player:  player,
		reset:   reset,
	}
}

func (e *Engine) RunFile(ctx context.Context, path string) error {
	return e.run(ctx, filepath.Base(path), func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

func (e *Engine) RunString(ctx context.Context, name, code string) error {
	return e.run(ctx, name, func(L *lua.LState) error {
		return L.DoString(code)
	})
}

func (e *Engine) run(ctx context.Context, name string, executor func(*lua.LState) error) error {
	log := logger.LogWith(ctx)
	log.Infof("Starting script %s", name)

	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	e.register(ctx, L)

	if err := executor(L); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	log.Infof("Script %s finished", name)
	return nil
}

func (e *Engine) register(ctx context.Context, L *lua.LState) {
	log := logger.LogWith(ctx)

	L.SetGlobal("send", L.NewFunction(func(L *lua.LState) int {
		var ack lua.LValue = lua.LNil
		for i := 1; i <= L.GetTop(); i++ {
			a := checkAnimation(L, i)
			log.Infof("Sending %s: %s", a, a.Frame())

			s, err := e.display.Send(ctx, a)
			if errors.Is(err, eyes.ErrInvalidAck) {
				log.WithError(err).Warn("Received non-UTF-8 acknowledgment")
				ack = lua.LNil
				continue
			}
			if err != nil {
				L.RaiseError("send: %v", err)
				return 0
			}
			ack = lua.LString(s)
		}

		L.Push(ack)
		return 1
	}))

	L.SetGlobal("reset", L.NewFunction(func(L *lua.LState) int {
		if _, err := e.display.Send(ctx, e.reset); err != nil && !errors.Is(err, eyes.ErrInvalidAck) {
			L.RaiseError("reset: %v", err)
		}
		return 0
	}))

	L.SetGlobal("play", L.NewFunction(func(L *lua.LState) int {
		seq, err := eyectl.ParseSequence(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}

		if err = e.player.Play(ctx, seq); err != nil {
			L.RaiseError("play: %v", err)
		}
		return 0
	}))

	L.SetGlobal("sleep", L.NewFunction(func(L *lua.LState) int {
		t := time.NewTimer(time.Duration(L.CheckInt(1)) * time.Millisecond)
		defer t.Stop()

		select {
		case <-t.C:
		case <-ctx.Done():
			L.RaiseError("sleep: %v", ctx.Err())
		}
		return 0
	}))

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		args := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			args = append(args, L.ToStringMeta(L.Get(i)).String())
		}
		log.Info("[lua] " + strings.Join(args, " "))
		return 0
	}))

	animations := L.NewTable()
	for _, a := range eyes.Animations() {
		L.SetField(animations, a.String(), lua.LNumber(a))
	}
	L.SetGlobal("animations", animations)
}

func checkAnimation(L *lua.LState, n int) eyes.Animation {
	switch v := L.Get(n).(type) {
	case lua.LNumber:
		return eyes.Animation(int(v))
	case lua.LString:
		a, err := eyes.ParseAnimation(string(v))
		if err != nil {
			L.ArgError(n, err.Error())
		}
		return a
	default:
		L.ArgError(n, "animation name or number expected")
		return 0
	}
}

// Path resolves name in dir unless it already points to an existing file.
func Path(dir, name string) (string, error) {
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return name, nil
	}

	if !strings.HasSuffix(name, ".lua") {
		name += ".lua"
	}
	clean := filepath.Base(name)
	if clean != name || strings.Contains(clean, "..") {
		return "", fmt.Errorf("%s: invalid script name", name)
	}
	if dir == "" {
		return "", fmt.Errorf("%s: script not found and no scripts_dir configured", name)
	}

	return filepath.Join(dir, clean), nil
}

// List returns the names of the scripts found in dir.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var scripts []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".lua" {
			scripts = append(scripts, strings.TrimSuffix(entry.Name(), ".lua"))
		}
	}
	return scripts, nil
}
