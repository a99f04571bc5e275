package models

import "time"

// CodeLog records one generated security code. Username is a snapshot
// taken at generation time so the row stays meaningful after the user
// is deleted.
type CodeLog struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Code      string    `db:"code"`
	Timestamp time.Time `db:"timestamp"`
}
