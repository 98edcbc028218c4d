package shard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var errInvalidPattern = errors.New("invalid brace pattern")

// ExpandBraces expands a webdataset shard pattern. {00000..00999}
// ranges keep the zero padding of their bounds, {a,b} lists every
// alternative, and groups may repeat or nest anywhere in the string.
func ExpandBraces(pattern string) ([]string, error) {
	i := strings.IndexByte(pattern, '{')
	if i < 0 {
		return []string{pattern}, nil
	}
	j, err := matchBrace(pattern, i)
	if err != nil {
		return nil, err
	}
	alts, err := expandGroup(pattern[i+1 : j])
	if err != nil {
		return nil, err
	}
	var out []string
	for _, alt := range alts {
		tails, err := ExpandBraces(alt + pattern[j+1:])
		if err != nil {
			return nil, err
		}
		for _, tail := range tails {
			out = append(out, pattern[:i]+tail)
		}
	}
	return out, nil
}

// matchBrace returns the index of the brace closing the one at open.
func matchBrace(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, errors.Wrap(errInvalidPattern, s)
}

// expandGroup expands the inside of one brace group: either a numeric
// range or a comma separated list of alternatives.
func expandGroup(group string) ([]string, error) {
	parts, err := splitAlternatives(group)
	if err != nil {
		return nil, err
	}
	if len(parts) == 1 {
		if lo, hi, ok := strings.Cut(parts[0], ".."); ok {
			return expandRange(lo, hi)
		}
	}
	return parts, nil
}

// splitAlternatives splits on commas outside nested braces.
func splitAlternatives(s string) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, errors.Wrap(errInvalidPattern, s)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.Wrap(errInvalidPattern, s)
	}
	return append(parts, s[start:]), nil
}

func expandRange(lo, hi string) ([]string, error) {
	a, err := strconv.Atoi(lo)
	if err != nil {
		return nil, errors.Wrapf(errInvalidPattern, "%s..%s", lo, hi)
	}
	b, err := strconv.Atoi(hi)
	if err != nil {
		return nil, errors.Wrapf(errInvalidPattern, "%s..%s", lo, hi)
	}
	if a > b {
		return nil, errors.Wrapf(errInvalidPattern, "inverted range %s..%s", lo, hi)
	}
	width := 0
	if (len(lo) > 1 && lo[0] == '0') || (len(hi) > 1 && hi[0] == '0') {
		width = len(lo)
		if len(hi) > width {
			width = len(hi)
		}
	}
	var out []string
	for n := a; n <= b; n++ {
		out = append(out, fmt.Sprintf("%0*d", width, n))
	}
	return out, nil
}
