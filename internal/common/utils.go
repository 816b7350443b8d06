package common

import "strings"

// HasAny returns true if s contains any of the substrings, ignoring case.
func HasAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// FilterContains returns the items of list containing query, ignoring case,
// capped at limit. An empty query matches everything. limit <= 0 means no cap.
func FilterContains(list []string, query string, limit int) []string {
	query = strings.TrimSpace(query)
	out := make([]string, 0)
	for _, item := range list {
		if query != "" && !HasAny(item, query) {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
