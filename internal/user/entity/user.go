package entity

import "github.com/google/uuid"

// User is a row of the `"user"` table. The table is owned by the registration
// flow; this module only reads it.
type User struct {
	ID        uuid.UUID `db:"id"`
	DiscordID string    `db:"discordId"`
	Name      string    `db:"name"`
}
