package auth

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleAttendee  Role = "attendee"
)

// DefaultRole is assigned when registration does not name one.
const DefaultRole = RoleAttendee

func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleOrganizer):
		return RoleOrganizer
	default:
		return RoleAttendee
	}
}

// ParseRole accepts an empty value (the default role) or one of the known roles.
func ParseRole(role string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "":
		return DefaultRole, nil
	case string(RoleOrganizer):
		return RoleOrganizer, nil
	case string(RoleAttendee):
		return RoleAttendee, nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

func HasRole(role string, allowed ...Role) bool {
	if len(allowed) == 0 {
		return false
	}
	current := NormalizeRole(role)
	for _, candidate := range allowed {
		if current == candidate {
			return true
		}
	}
	return false
}
