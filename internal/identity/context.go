package identity

import "context"

type ctxKey string

const emailKey ctxKey = "lyla.user_email"

// AnonymousNamespace is the storage namespace suffix used when no user is
// authenticated. Pre-login data written under it survives across sessions.
const AnonymousNamespace = "v1"

// WithUserEmail stores the authenticated user's email in context.
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

// UserEmailFromContext extracts the user email if present.
func UserEmailFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(emailKey)
	if val == nil {
		return "", false
	}
	email, ok := val.(string)
	return email, ok && email != ""
}

// Namespace returns the storage namespace for the given email, falling back
// to the anonymous namespace when the email is empty.
func Namespace(email string) string {
	if email == "" {
		return AnonymousNamespace
	}
	return email
}
