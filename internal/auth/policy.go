package auth

import "slices"

// Identity is an authenticated caller.
type Identity struct {
	Subject  string
	Username string
	Groups   []string
	// Dev is set on the synthetic identity issued by the development bypass.
	Dev bool
}

// Name is the value recorded as createdBy/updatedBy.
func (i Identity) Name() string {
	if i.Username != "" {
		return i.Username
	}
	return i.Subject
}

// Policy decides which identities may use admin routes.
type Policy struct {
	AdminGroups []string
	// AllowEmptyGroups treats an identity without any group claim as admin.
	AllowEmptyGroups bool
}

func (p Policy) IsAdmin(id Identity) bool {
	if len(id.Groups) == 0 {
		return p.AllowEmptyGroups
	}
	for _, g := range id.Groups {
		if slices.Contains(p.AdminGroups, g) {
			return true
		}
	}
	return false
}
