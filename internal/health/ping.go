package health

import "context"

// HealthPinger is implemented by stores that can check their backing connection
// directly. HealthPing returns nil when the store answers.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
