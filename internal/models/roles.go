package models

// Role labels known to the application. Labels are stored verbatim and are
// not interpreted by the user service.
const (
	RoleAdmin  = "ADMIN"
	RoleAuthor = "AUTHOR"
	RoleUser   = "USER"
)

// UniqueRoles drops duplicate labels while keeping first-seen order.
// The result is never nil.
func UniqueRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}
