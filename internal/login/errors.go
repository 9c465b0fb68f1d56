package login

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid account number or password")
	ErrAccountLocked      = errors.New("account temporarily locked")
)

// ValidationError maps a form field to the reason it was rejected.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type LockoutError struct {
	RemainingSeconds int
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("%s, retry in %ds", ErrAccountLocked, e.RemainingSeconds)
}

func (e *LockoutError) Unwrap() error {
	return ErrAccountLocked
}
