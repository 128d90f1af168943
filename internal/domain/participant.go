package domain

import (
	"strings"
	"time"

	apperrors "github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/errors"
)

// Participant is someone currently present in the room. The name is the
// identity; equality is exact and case-sensitive.
type Participant struct {
	Name       string    `json:"name"`
	LastStatus time.Time `json:"lastStatus"`
}

// ValidateName rejects empty and whitespace-only names. The name is stored
// as given, surrounding spaces included.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.ErrInvalidName
	}
	return nil
}

// IsExpired reports whether the participant has gone at least timeout
// without a heartbeat.
func (p Participant) IsExpired(now time.Time, timeout time.Duration) bool {
	return now.Sub(p.LastStatus) >= timeout
}
