//go:build js && wasm

package offline

// BuiltinEngine is never available inside the engine itself.
func BuiltinEngine() (wasm, wasmExec []byte, ok bool) {
	return nil, nil, false
}
