package entity

import "time"

// Status is the lifecycle state of a challenge.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
)

// MaxDescriptionLen bounds Challenge.Description, in characters.
const MaxDescriptionLen = 500

// Challenge is a score duel between two chat users inside one channel.
// PENDING -> ACTIVE -> COMPLETED, or PENDING -> REJECTED.
type Challenge struct {
	ID              int64      `db:"id"`
	ChallengerID    string     `db:"challenger_id"`
	ChallengedID    string     `db:"challenged_id"`
	ChannelID       string     `db:"channel_id"`
	Status          Status     `db:"status"`
	ChallengerScore int        `db:"challenger_score"`
	ChallengedScore int        `db:"challenged_score"`
	Description     *string    `db:"description"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	CompletedAt     *time.Time `db:"completed_at"`
}

// Involves reports whether userID is one of the two sides.
func (c *Challenge) Involves(userID string) bool {
	return userID == c.ChallengerID || userID == c.ChallengedID
}

// Leader returns the id of the side ahead on score, or "" on a tie.
func (c *Challenge) Leader() string {
	switch {
	case c.ChallengerScore > c.ChallengedScore:
		return c.ChallengerID
	case c.ChallengedScore > c.ChallengerScore:
		return c.ChallengedID
	default:
		return ""
	}
}
