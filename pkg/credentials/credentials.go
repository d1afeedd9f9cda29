package credentials

import (
	"fmt"
	"strings"
)

// Credential is one (display name, bearer token) pair supplied by the
// operator. It is immutable once submitted.
type Credential struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// Set is the ordered credential list a session is started from.
type Set []Credential

// Normalize trims all entries and drops the ones that are entirely empty,
// mirroring how blank input rows are ignored on submission.
func (s Set) Normalize() Set {
	result := make(Set, 0, len(s))
	for _, c := range s {
		c.Name = strings.TrimSpace(c.Name)
		c.Token = strings.TrimSpace(c.Token)
		if c.Name == "" && c.Token == "" {
			continue
		}
		result = append(result, c)
	}
	return result
}

// Validate rejects the entire set when any remaining entry misses a name or
// token, or when nothing is left after normalization. No partial session is
// ever started from an invalid submission.
func (s Set) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("at least one name and API token pair is required")
	}
	for i, c := range s {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("entry %d: name must not be empty", i+1)
		}
		if strings.TrimSpace(c.Token) == "" {
			return fmt.Errorf("entry %d (%s): token must not be empty", i+1, c.Name)
		}
	}
	return nil
}

// Tokens returns all tokens of the set, used to register log scrubbing terms.
func (s Set) Tokens() []string {
	tokens := make([]string, 0, len(s))
	for _, c := range s {
		tokens = append(tokens, c.Token)
	}
	return tokens
}
