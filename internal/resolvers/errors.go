package resolvers

import (
	"fmt"
	"strings"
)

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", strings.ToLower(e.Kind), e.ID)
}

// Extensions is picked up by graphql-go and rendered under "extensions".
func (e *NotFoundError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code": "NOT_FOUND",
		"kind": e.Kind,
		"id":   e.ID,
	}
}
