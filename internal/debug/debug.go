//go:build !debug

// Package debug traces the conversion when built with the debug tag.
package debug

const On = false

func Trace(msg string, args ...any) {}
