package models

import "time"

// Comment is one user-submitted message for the administrator.
// Username is a snapshot, same rule as CodeLog.
type Comment struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Text      string    `db:"text"`
	Timestamp time.Time `db:"timestamp"`
}
