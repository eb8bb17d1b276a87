//go:build !(js && wasm)

package offline

//go:generate mkdir -p assets/engine
//go:generate env GOOS=js GOARCH=wasm go build -trimpath -ldflags=-s -o assets/engine/rcdrill.wasm ../../cmd/rcdrill-wasm
//go:generate sh -c "cp \"$(go env GOROOT)/lib/wasm/wasm_exec.js\" assets/engine/wasm_exec.js"

import "embed"

// The engine is compiled by go generate. The wasm build excludes this file
// so an engine never embeds its predecessor.
//
//go:embed assets
var engineFS embed.FS

// BuiltinEngine returns the js/wasm session engine and its wasm_exec.js
// compiled into this binary. ok is false when go generate was not run
// before building.
func BuiltinEngine() (wasm, wasmExec []byte, ok bool) {
	wasm, err := engineFS.ReadFile(engineWasmPath)
	if err != nil || len(wasm) == 0 {
		return nil, nil, false
	}
	wasmExec, err = engineFS.ReadFile(engineExecPath)
	if err != nil || len(wasmExec) == 0 {
		return nil, nil, false
	}
	return wasm, wasmExec, true
}
