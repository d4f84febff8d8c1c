package profiles

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// ValidationError lists every problem found with a profile or preferences.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation errors: " + strings.Join(e.Problems, ", ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

func invalid[T comparable](values []T, allowed []T) []string {
	var bad []string
	for _, v := range values {
		if !slices.Contains(allowed, v) {
			bad = append(bad, fmt.Sprint(v))
		}
	}
	return bad
}

// ValidateProfile checks p and reports every problem at once.
func ValidateProfile(p Profile) error {
	e := &ValidationError{}

	if p.UID == "" {
		e.add("user ID is required")
	}
	name := strings.TrimSpace(p.DisplayName)
	if utf8.RuneCountInString(name) < 2 {
		e.add("display name must be at least 2 characters")
	}
	if utf8.RuneCountInString(p.DisplayName) > 50 {
		e.add("display name must be at most 50 characters")
	}
	if p.Age < 18 || p.Age > 99 {
		e.add("age must be between 18 and 99")
	}
	if utf8.RuneCountInString(p.Bio) > 500 {
		e.add("bio must be at most 500 characters")
	}
	if len(p.Interests) > 10 {
		e.add("maximum 10 interests allowed")
	}
	if bad := invalid(p.Interests, Interests); len(bad) > 0 {
		e.add("invalid interests: %s", strings.Join(bad, ", "))
	}
	if p.GenderIdentity != "" && !slices.Contains(Genders, p.GenderIdentity) {
		e.add("invalid gender identity")
	}
	if bad := invalid(p.GenderPreference, Genders); len(bad) > 0 {
		e.add("invalid gender preferences: %s", strings.Join(bad, ", "))
	}
	if p.LookingFor != "" && !slices.Contains(LookingForOptions, p.LookingFor) {
		e.add("invalid looking for option")
	}
	if len(p.Photos) > 6 {
		e.add("maximum 6 photos allowed")
	}

	return e.orNil()
}

// ValidatePreferences checks p and reports every problem at once.
func ValidatePreferences(p Preferences) error {
	e := &ValidationError{}

	if p.AgeRange.Min < 18 || p.AgeRange.Min > 99 {
		e.add("minimum age must be between 18 and 99")
	}
	if p.AgeRange.Max < 18 || p.AgeRange.Max > 99 {
		e.add("maximum age must be between 18 and 99")
	}
	if p.AgeRange.Min > p.AgeRange.Max {
		e.add("minimum age cannot be greater than maximum age")
	}
	if p.MaxDistance < 5 || p.MaxDistance > 100 {
		e.add("maximum distance must be between 5 and 100 km")
	}
	if bad := invalid(p.GenderPreference, Genders); len(bad) > 0 {
		e.add("invalid gender preferences: %s", strings.Join(bad, ", "))
	}
	if bad := invalid(p.LookingFor, LookingForOptions); len(bad) > 0 {
		e.add("invalid looking for options: %s", strings.Join(bad, ", "))
	}

	return e.orNil()
}
