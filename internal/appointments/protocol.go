package appointments

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateProtocol builds a confirmation code of the form
// <4-digit year><6-digit zero-padded random>, e.g. 2025001234.
// Uniqueness is enforced by the appointments.protocol constraint; callers
// regenerate on collision.
func GenerateProtocol() string {
	year := time.Now().Year()
	return fmt.Sprintf("%d%06d", year, rand.Intn(1_000_000))
}
