package dispatch

import (
	"fmt"

	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/ports"
)

// StringToken is the default token handler: a direct textual coercion of the value.
// It is stateless and safe to share across unparsers.
func StringToken(_ ports.Dispatcher, _ domain.Node, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}
