package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Grid bounds for a puzzle level.
const (
	MinGridSide = 2
	MaxGridSide = 20
)

// MaxPieceIDLength bounds a single opaque piece identifier.
const MaxPieceIDLength = 64

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateLevelTitle checks if a level title is valid
func ValidateLevelTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if len(title) > 200 {
		return ValidationError{Field: "title", Message: "title must be at most 200 characters"}
	}
	return nil
}

// ValidateGrid checks puzzle grid dimensions
func ValidateGrid(rows, cols int) error {
	if rows < MinGridSide || rows > MaxGridSide {
		return ValidationError{Field: "rows", Message: fmt.Sprintf("rows must be between %d and %d", MinGridSide, MaxGridSide)}
	}
	if cols < MinGridSide || cols > MaxGridSide {
		return ValidationError{Field: "cols", Message: fmt.Sprintf("cols must be between %d and %d", MinGridSide, MaxGridSide)}
	}
	return nil
}

// ValidateSortOrder checks a level's progression position
func ValidateSortOrder(order int) error {
	if order < 1 {
		return ValidationError{Field: "sortOrder", Message: "sort order must be a positive integer"}
	}
	return nil
}

// ValidatePieceIDs checks a placed-piece list before it reaches the core:
// ids must be non-empty, reasonably short strings, and the list cannot exceed
// the largest possible grid.
func ValidatePieceIDs(ids []string) error {
	if len(ids) > MaxGridSide*MaxGridSide {
		return ValidationError{Field: "placedPieces", Message: "too many piece ids"}
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return ValidationError{Field: "placedPieces", Message: "piece ids must not be empty"}
		}
		if len(id) > MaxPieceIDLength {
			return ValidationError{Field: "placedPieces", Message: fmt.Sprintf("piece ids must be at most %d characters", MaxPieceIDLength)}
		}
	}
	return nil
}
