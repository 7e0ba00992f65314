// Package preview serves a compiled document over HTTP and recompiles
// it on save. Connected browsers hold a websocket to the reload hub;
// every successful recompile pushes a reload message. File events are
// debounced so editor write bursts trigger one rebuild.
package preview
