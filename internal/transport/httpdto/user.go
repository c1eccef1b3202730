package httpdto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"facebrain/internal/domain/user"
)

// UserDTO represents a user in API responses. It never carries the password hash.
type UserDTO struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Entries int64     `json:"entries"`
	Joined  time.Time `json:"joined"`
}

func NewUserDTO(u user.User) UserDTO {
	return UserDTO{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Entries: u.Entries,
		Joined:  u.Joined,
	}
}

// UserID accepts either a JSON number or a numeric string.
type UserID int64

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*id = 0
			return nil
		}
	}
	v, err := ParseUserID(raw)
	if err != nil {
		return err
	}
	*id = UserID(v)
	return nil
}

var errInvalidUserID = errors.New("user id must be a positive integer")

// ParseUserID parses a positive decimal user id.
func ParseUserID(raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, errInvalidUserID
	}
	return v, nil
}
