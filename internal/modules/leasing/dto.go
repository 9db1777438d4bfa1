package leasing

import "playerhire/internal/domain"

type CreateListingRequest struct {
	// OwnerUserID is honoured for admins only; everyone else lists themselves.
	OwnerUserID int64 `json:"owner_user_id"`
	domain.DescriptiveFields
}

type UpdateListingRequest struct {
	domain.DescriptiveFields
	Status *domain.ListingStatus `json:"status"`
}

type HireRequest struct {
	Hours *int `json:"hours"`
}

type RateRequest struct {
	Rating *float64 `json:"rating"`
}

type ListQuery struct {
	Status string `form:"status"`
	Game   string `form:"game"`
	Rank   string `form:"rank"`
	Role   string `form:"role"`
	Server string `form:"server"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
