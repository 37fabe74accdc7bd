// Package ports defines the interfaces and function types that connect the
// unparser core to its pluggable parts: the dispatcher, token and layout
// handlers, the walk procedure and the render cache used by service adapters.
package ports
