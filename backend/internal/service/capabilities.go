package service

import "github.com/itchan-dev/agenda/shared/domain"

// Capabilities are the role-dependent permissions, computed once per caller.
type Capabilities struct {
	EditSent          bool
	DeleteSent        bool
	RevertSent        bool
	SkipProjectAccess bool
	ActOnBehalf       bool
	SeeAllUsers       bool
}

var (
	OwnerCapabilities      = Capabilities{}
	SupervisorCapabilities = Capabilities{
		EditSent:          true,
		DeleteSent:        true,
		RevertSent:        true,
		SkipProjectAccess: true,
		ActOnBehalf:       true,
		SeeAllUsers:       true,
	}
)

func CapabilitiesFor(role domain.Role) Capabilities {
	if role.IsSupervisor() {
		return SupervisorCapabilities
	}
	return OwnerCapabilities
}

// canAccessUser reports whether caller may read or act on userId's activities.
func canAccessUser(caller domain.Principal, caps Capabilities, userId domain.UserId) bool {
	return caps.ActOnBehalf || caller.Id == userId
}
