package domain

import "context"

// UserDirectory resolves identity references to display names. It is the read side of the
// user store that events point at through createdBy.
type UserDirectory interface {
	// DisplayNames returns the names of the given users keyed by id. Unknown ids are omitted.
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}
