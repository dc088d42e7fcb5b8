package emailqueue

import (
	"fmt"
	"strings"
)

// qualifiedStructName derives the template class stored on a message from
// the template's Go type, e.g. "notifications.WelcomeEmail".
func qualifiedStructName(v any) string {
	s := fmt.Sprintf("%T", v)
	s = strings.TrimLeft(s, "*")

	return s
}
