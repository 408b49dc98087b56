package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidUsername  = errors.New("invalid username")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrInvalidListName  = errors.New("wishlist name is required")
	ErrInvalidPriority  = errors.New("priority must be between 1 and 5")
	ErrInvalidCondition = errors.New("invalid card condition")
)

var (
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
)

var conditions = map[string]struct{}{
	"any":          {},
	"mint":         {},
	"near_mint":    {},
	"excellent":    {},
	"good":         {},
	"light_played": {},
	"played":       {},
	"poor":         {},
}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

func ValidateListName(name string) error {
	if strings.TrimSpace(name) == "" || len(name) > 100 {
		return ErrInvalidListName
	}
	return nil
}

func ValidatePriority(priority int) error {
	if priority < 1 || priority > 5 {
		return ErrInvalidPriority
	}
	return nil
}

func ValidateCondition(condition string) error {
	if _, ok := conditions[condition]; !ok {
		return ErrInvalidCondition
	}
	return nil
}
