package auth

import "github.com/yoockh/portfolio/internal/models"

// Capability names one guarded action. Routes require capabilities, never
// roles, so adding a role only touches the table below.
type Capability string

const (
	CapCommentCreate Capability = "comment:create"
	CapCVUpload      Capability = "cv:upload"
	CapModerate      Capability = "moderate"
	CapInboxManage   Capability = "inbox:manage"
	CapUsersManage   Capability = "users:manage"
)

var roleCapabilities = map[models.UserRole]map[Capability]struct{}{
	models.RoleUser: set(CapCommentCreate, CapCVUpload),
	models.RoleAdmin: set(
		CapCommentCreate, CapCVUpload,
		CapModerate, CapInboxManage, CapUsersManage,
	),
}

func set(caps ...Capability) map[Capability]struct{} {
	m := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		m[c] = struct{}{}
	}
	return m
}

// Can reports whether role grants capability. Unknown roles grant nothing.
func Can(role models.UserRole, c Capability) bool {
	caps, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	_, ok = caps[c]
	return ok
}
