package validators

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"reviewhub/internal/apperr"
)

const (
	MinScore = 1
	MaxScore = 10

	ScoreError = "Score has to be a value from 1 to 10."
)

var forbiddenUsernameChars = regexp.MustCompile(`[^A-Za-z0-9.@+\-]+`)

// ValidateYear rejects release years later than the current calendar year.
func ValidateYear(year int, now time.Time) error {
	if current := now.Year(); year > current {
		return apperr.ValidationField("year",
			fmt.Sprintf("Invalid year: %q. Value should be <= %q.", fmt.Sprint(year), fmt.Sprint(current)))
	}
	return nil
}

// ValidateUsername rejects reserved names and any character outside
// letters, digits and ".@+-". The message lists each offending symbol once.
func ValidateUsername(username string, reserved []string) error {
	if slices.Contains(reserved, username) {
		return apperr.ValidationField("username", fmt.Sprintf("Username %q is not allowed.", username))
	}

	matches := forbiddenUsernameChars.FindAllString(username, -1)
	if len(matches) == 0 {
		return nil
	}
	var symbols []string
	for _, m := range matches {
		for _, r := range m {
			if s := string(r); !slices.Contains(symbols, s) {
				symbols = append(symbols, s)
			}
		}
	}
	slices.Sort(symbols)
	return apperr.ValidationField("username", fmt.Sprintf(
		`"%s" is not allowed in username. Please use only letters, digits or ".@+-"`,
		strings.Join(symbols, "")))
}

// ValidateScore enforces the inclusive review score range.
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return apperr.ValidationField("score", ScoreError)
	}
	return nil
}
