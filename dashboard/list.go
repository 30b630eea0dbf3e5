package dashboard

import (
	"strings"

	"github.com/jrsteele09/ideathon-portal/users"
)

// Filter keeps the roster entries matching query, in order.
func Filter(roster []users.User, query string) []users.User {
	if strings.TrimSpace(query) == "" {
		return roster
	}
	out := make([]users.User, 0, len(roster))
	for i := range roster {
		if roster[i].Matches(query) {
			out = append(out, roster[i])
		}
	}
	return out
}

// Expanded is the set of roster rows shown with their team members, keyed by leader email.
type Expanded map[string]struct{}

func NewExpanded(emails ...string) Expanded {
	e := Expanded{}
	for _, email := range emails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			e[email] = struct{}{}
		}
	}
	return e
}

func (e Expanded) Has(email string) bool {
	_, ok := e[strings.ToLower(email)]
	return ok
}

// Toggle flips email and returns the new set as a slice, ready for a query string.
func (e Expanded) Toggle(email string) []string {
	email = strings.ToLower(strings.TrimSpace(email))
	out := make([]string, 0, len(e)+1)
	for k := range e {
		if k != email {
			out = append(out, k)
		}
	}
	if !e.Has(email) {
		out = append(out, email)
	}
	return out
}
