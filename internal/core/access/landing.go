package access

import "github.com/rolegate/rolegate/internal/core/domain"

const (
	AdminArea   = "/admin"
	StaffArea   = "/staff"
	DefaultArea = "/"
	LoginPage   = "/login"
)

// Landing returns where a freshly logged-in identity is sent.
// Unmapped roles fall through to DefaultArea.
func Landing(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return AdminArea
	case domain.RoleStaff:
		return StaffArea
	default:
		return DefaultArea
	}
}
