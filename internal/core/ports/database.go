// internal/core/ports/database.go
package ports

import "context"

// Database is what health reporting needs from the SQL store
type Database interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
}
