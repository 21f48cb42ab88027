package server

import "context"

type contextKey int

const ownerKey contextKey = iota

func withOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

func ownerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}
