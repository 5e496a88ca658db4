package engine

import (
	"strings"

	"github.com/google/uuid"
)

// Kite rejects tags longer than 20 characters.
const maxTagLen = 20

// newOrderTag returns a unique tag for correlating order postbacks.
func newOrderTag() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "wl" + id[:maxTagLen-2]
}
