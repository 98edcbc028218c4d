package slurm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errInvalidHostlist = errors.New("invalid hostlist")

// ExpandHostlist expands SLURM's compressed hostlist notation,
// e.g. gpu[01-03,05],login1 becomes gpu01,gpu02,gpu03,gpu05,login1.
// Zero padding is kept and a name may carry several bracket groups.
func ExpandHostlist(expr string) ([]string, error) {
	terms, err := splitTerms(expr)
	if err != nil {
		return nil, err
	}
	var hosts []string
	for _, term := range terms {
		expanded, err := expandTerm(term)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, expanded...)
	}
	return hosts, nil
}

// splitTerms splits on commas outside bracket groups.
func splitTerms(expr string) ([]string, error) {
	var terms []string
	var depth, start int
	for i, c := range expr {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: %q", errInvalidHostlist, expr)
			}
		case ',':
			if depth == 0 {
				terms = append(terms, expr[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: %q", errInvalidHostlist, expr)
	}
	terms = append(terms, expr[start:])
	for _, t := range terms {
		if len(t) == 0 {
			return nil, fmt.Errorf("%w: %q", errInvalidHostlist, expr)
		}
	}
	return terms, nil
}

func expandTerm(term string) ([]string, error) {
	i := strings.IndexByte(term, '[')
	if i < 0 {
		if strings.IndexByte(term, ']') >= 0 {
			return nil, fmt.Errorf("%w: %q", errInvalidHostlist, term)
		}
		return []string{term}, nil
	}
	j := strings.IndexByte(term[i:], ']')
	if j < 0 {
		return nil, fmt.Errorf("%w: %q", errInvalidHostlist, term)
	}
	j += i
	prefix := term[:i]
	nums, err := expandRanges(term[i+1 : j])
	if err != nil {
		return nil, err
	}
	tails, err := expandTerm(term[j+1:])
	if err != nil {
		return nil, err
	}
	var hosts []string
	for _, n := range nums {
		for _, tail := range tails {
			hosts = append(hosts, prefix+n+tail)
		}
	}
	return hosts, nil
}

// expandRanges expands a bracket body like 01-04,07 keeping zero padding.
func expandRanges(spec string) ([]string, error) {
	var out []string
	for _, r := range strings.Split(spec, ",") {
		k := strings.IndexByte(r, '-')
		if k < 0 {
			if _, err := strconv.Atoi(r); err != nil {
				return nil, fmt.Errorf("%w: %q", errInvalidHostlist, spec)
			}
			out = append(out, r)
			continue
		}
		lo, err := strconv.Atoi(r[:k])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errInvalidHostlist, spec)
		}
		hi, err := strconv.Atoi(r[k+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errInvalidHostlist, spec)
		}
		if hi < lo {
			return nil, fmt.Errorf("%w: %q", errInvalidHostlist, spec)
		}
		width := len(r[:k])
		for v := lo; v <= hi; v++ {
			out = append(out, fmt.Sprintf("%0*d", width, v))
		}
	}
	return out, nil
}
