package domain

import (
	"fmt"
	"strconv"
)

// UserID identifies a participant. Discord snowflakes and JWT subjects both fit.
type UserID int64

func (u UserID) String() string {
	return strconv.FormatInt(int64(u), 10)
}

// Mention renders the id the way Discord expects it inside message content.
func (u UserID) Mention() string {
	return fmt.Sprintf("<@%d>", int64(u))
}

// ParseUserID parses a decimal user id (Discord snowflake, path param).
func ParseUserID(s string) (UserID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse user id %q: %w", s, err)
	}
	return UserID(n), nil
}
