package auth

import (
	"embed"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the SQL migrations that create the users and
// roles tables along with the seeded role rows.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
