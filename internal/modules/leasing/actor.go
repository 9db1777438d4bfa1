package leasing

import "playerhire/internal/domain"

// Actor is the authenticated caller as established by the request layer.
type Actor struct {
	UserID int64
	Role   domain.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// CanEdit: owners edit their own descriptive fields, admins edit anything.
func CanEdit(a Actor, l *domain.PlayerListing) bool {
	return a.IsAdmin() || l.OwnerUserID == a.UserID
}

// CanHire rejects owners hiring their own listing.
func CanHire(a Actor, l *domain.PlayerListing) bool {
	return a.UserID != 0 && l.OwnerUserID != a.UserID
}

// CanReturn allows the current hirer, the owner and admins.
func CanReturn(a Actor, l *domain.PlayerListing) bool {
	if a.IsAdmin() || l.OwnerUserID == a.UserID {
		return true
	}
	return l.HiredByUserID != nil && *l.HiredByUserID == a.UserID
}

// EditGuard turns CanEdit into a write precondition.
func EditGuard(a Actor) Guard {
	return func(l *domain.PlayerListing) error {
		if !CanEdit(a, l) {
			return ErrForbidden
		}
		return nil
	}
}

func HireGuard(a Actor) Guard {
	return func(l *domain.PlayerListing) error {
		if !CanHire(a, l) {
			return ErrSelfHire
		}
		return nil
	}
}

func ReturnGuard(a Actor) Guard {
	return func(l *domain.PlayerListing) error {
		if !CanReturn(a, l) {
			return ErrForbidden
		}
		return nil
	}
}
