package logging

import (
	"context"

	"go.viam.com/utils"
)

// debugKey marks a context as traced. The value is a short tag that identifies the trace.
type debugKey struct{}

const debugTagLength = 6

// EnableDebugMode returns a context under which the C* log methods emit debug entries regardless
// of the logger's level. An empty tag is replaced with a random one.
func EnableDebugMode(ctx context.Context, tag string) context.Context {
	if tag == "" {
		tag = utils.RandomAlphaString(debugTagLength)
	}
	return context.WithValue(ctx, debugKey{}, tag)
}

// IsDebugMode reports whether ctx was returned by EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	return DebugTag(ctx) != ""
}

// DebugTag returns the tag ctx was traced with, or "".
func DebugTag(ctx context.Context) string {
	tag, _ := ctx.Value(debugKey{}).(string)
	return tag
}
