package domain

// UserRole is carried in access tokens issued by the account service.
type UserRole string

const (
	RoleClient UserRole = "client"
	RoleAdmin  UserRole = "admin"
)
