// Package skillfeed parses the skill lists of the external import feed.
//
// A skill list is a sequence of ";" separated tokens consumed in pairs:
//
//	<text>[Canonical Name]<text>;<rating>
//
// e.g. "[Java];4;[Go];2". The canonical name inside the brackets is
// slugified into a technology id. Ratings are parsed but not range checked.
package skillfeed

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedEntry is returned (wrapped) for any entry that does not match
// the grammar.
var ErrMalformedEntry = errors.New("skillfeed: malformed skill entry")

// Rating is one parsed (technology, rating) pair.
type Rating struct {
	TechnologyID string // slug
	Name         string // text between the brackets
	Value        int
}

// ParseEntries parses every entry of a record's skill list. Pairs may be
// spread over one entry ("[Java];4;[Go];2") or one per entry.
func ParseEntries(entries ...string) ([]Rating, error) {
	var tokens []string
	for _, entry := range entries {
		for _, tok := range strings.Split(entry, ";") {
			if tok = strings.TrimSpace(tok); tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}

	if len(tokens)%2 != 0 {
		return nil, fmt.Errorf("%w: %q has no rating", ErrMalformedEntry, tokens[len(tokens)-1])
	}

	out := make([]Rating, 0, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		r, err := ParsePair(tokens[i], tokens[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ParsePair parses a single technology token and its rating.
func ParsePair(techToken, rating string) (Rating, error) {
	name, err := bracketed(techToken)
	if err != nil {
		return Rating{}, err
	}

	slug := Slugify(name)
	if slug == "" {
		return Rating{}, fmt.Errorf("%w: %q has no usable technology name", ErrMalformedEntry, techToken)
	}

	value, err := strconv.Atoi(strings.TrimSpace(rating))
	if err != nil {
		return Rating{}, fmt.Errorf("%w: rating %q of %q is not an integer", ErrMalformedEntry, rating, techToken)
	}

	return Rating{TechnologyID: slug, Name: name, Value: value}, nil
}

func bracketed(token string) (string, error) {
	open := strings.IndexByte(token, '[')
	if open < 0 {
		return "", fmt.Errorf("%w: %q has no '['", ErrMalformedEntry, token)
	}
	end := strings.IndexByte(token[open+1:], ']')
	if end < 0 {
		return "", fmt.Errorf("%w: %q has no closing ']'", ErrMalformedEntry, token)
	}
	name := strings.TrimSpace(token[open+1 : open+1+end])
	if name == "" {
		return "", fmt.Errorf("%w: %q has an empty technology name", ErrMalformedEntry, token)
	}
	return name, nil
}

// LoginFromEmail returns the local part of an e-mail address, used as the
// directory sync key.
func LoginFromEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	at := strings.IndexByte(email, '@')
	if at == 0 || email == "" {
		return "", fmt.Errorf("%w: e-mail %q has no local part", ErrMalformedEntry, email)
	}
	if at < 0 {
		return email, nil
	}
	return email[:at], nil
}
