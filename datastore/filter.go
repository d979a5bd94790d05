package datastore

import (
	"regexp"
)

// Filter decides at construction time whether a record id belongs to a
// store. A nil Filter accepts everything.
type Filter func(id string) bool

// Accept reports whether id passes the filter.
func (f Filter) Accept(id string) bool {
	return f == nil || f(id)
}

// AcceptAll returns a filter accepting every id.
func AcceptAll() Filter {
	return func(string) bool { return true }
}

// Invert returns a filter accepting exactly the ids f rejects.
func Invert(f Filter) Filter {
	return func(id string) bool { return !f.Accept(id) }
}

// IncludeIDs accepts only the listed ids.
func IncludeIDs(ids ...string) Filter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(id string) bool {
		_, ok := set[id]
		return ok
	}
}

// ExcludeIDs rejects the listed ids.
func ExcludeIDs(ids ...string) Filter {
	return Invert(IncludeIDs(ids...))
}

// MatchRegexp accepts ids matching re.
func MatchRegexp(re *regexp.Regexp) Filter {
	return re.MatchString
}

// And accepts ids accepted by all filters.
func And(filters ...Filter) Filter {
	return func(id string) bool {
		for _, f := range filters {
			if !f.Accept(id) {
				return false
			}
		}
		return true
	}
}

// Or accepts ids accepted by at least one filter. Or() accepts nothing.
func Or(filters ...Filter) Filter {
	return func(id string) bool {
		for _, f := range filters {
			if f.Accept(id) {
				return true
			}
		}
		return false
	}
}
