package auth

import "context"

// withRoles returns a context carrying the given roles. Used by tests and by
// internal callers that need to act with a fixed identity.
func withRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, UserRolesKey, roles)
}

// SystemContext returns a context carrying the internal system identity,
// used for background work (notification dispatch, reconciliation retries)
// that runs outside an HTTP request.
func SystemContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, "system")
	ctx = context.WithValue(ctx, UserNameKey, "system")
	return withRoles(ctx, []string{"admin"})
}
