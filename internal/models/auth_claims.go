package models

import "github.com/golang-jwt/jwt/v5"

// Roles recognized by the tracking API. Issued by the platform's auth
// service; this subsystem only consumes them.
const (
	RoleDriver       = "driver"
	RoleConductor    = "conductor"
	RoleCompanyAdmin = "company_admin"
	RoleSuperAdmin   = "super_admin"
)

type JwtCustomClaims struct {
	UserID    string `json:"userID"`
	Role      string `json:"role"`
	CompanyID string `json:"companyID,omitempty"`
	jwt.RegisteredClaims
}
