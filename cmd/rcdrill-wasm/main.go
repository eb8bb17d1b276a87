//go:build js && wasm

// Command rcdrill-wasm is the browser build of the session engine that
// every offline page embeds (see go generate in internal/offline). It reads the
// bundle's data island and exposes the session on globalThis.rcdrill.
package main

import (
	"context"
	"encoding/json"
	"strings"
	"syscall/js"
	"time"

	"github.com/abhisek/rcdrill/internal/offline"
	"github.com/abhisek/rcdrill/internal/session"
)

func main() {
	doc := js.Global().Get("document")
	island := doc.Call("getElementById", offline.DataIslandID).Get("textContent").String()

	b, err := offline.Load(strings.NewReader(`<script type="application/json" id="` +
		offline.DataIslandID + `">` + island + `</script>`))
	if err != nil {
		js.Global().Get("console").Call("error", "rcdrill: "+err.Error())
		return
	}
	s, err := offline.NewSession(b)
	if err != nil {
		js.Global().Get("console").Call("error", "rcdrill: "+err.Error())
		return
	}

	var onChange js.Value
	notify := func() {
		if onChange.Truthy() {
			onChange.Invoke()
		}
	}

	ctx := context.Background()
	call := func(f func() error) js.Func {
		return js.FuncOf(func(js.Value, []js.Value) any {
			if err := f(); err != nil {
				return err.Error()
			}
			return nil
		})
	}
	withIndex := func(f func(int) error) js.Func {
		return js.FuncOf(func(_ js.Value, args []js.Value) any {
			if len(args) == 0 {
				return "missing index"
			}
			if err := f(args[0].Int()); err != nil {
				return err.Error()
			}
			return nil
		})
	}

	api := map[string]any{
		"snapshot": js.FuncOf(func(js.Value, []js.Value) any {
			return encode(s.Snapshot())
		}),
		"result": js.FuncOf(func(js.Value, []js.Value) any {
			r, ok := s.Result()
			if !ok {
				return js.Null()
			}
			return encode(r)
		}),
		"start": call(func() error {
			id, err := s.Start()
			if err != nil {
				return err
			}
			go session.RunCountdown(ctx, s, id, time.Second, func(bool, error) { notify() })
			return nil
		}),
		"select":       withIndex(s.SelectIndex),
		"jump":         withIndex(s.Jump),
		"clear":        call(s.ClearAnswer),
		"toggleReview": call(s.ToggleReview),
		"next":         call(s.Next),
		"prev":         call(s.Prev),
		"submit": call(func() error {
			_, err := s.Submit(ctx)
			return err
		}),
		"onChange": js.FuncOf(func(_ js.Value, args []js.Value) any {
			if len(args) > 0 {
				onChange = args[0]
			}
			return nil
		}),
	}
	js.Global().Set("rcdrill", js.ValueOf(api))

	select {}
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
