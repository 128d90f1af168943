package domain

import (
	"time"
)

// RateLimitDecision is the state of one client's fixed window after a hit.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

const (
	RateLimitScopeUser = "user"
	RateLimitScopeIP   = "ip"
)
