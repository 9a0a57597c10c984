package model

// Principal is either an authenticated user or nobody. The zero value is Anonymous.
type Principal struct {
	userID uint
	ok     bool
}

func Anonymous() Principal {
	return Principal{}
}

func UserPrincipal(id uint) Principal {
	return Principal{userID: id, ok: true}
}

// UserID reports the user behind the principal, if any.
func (p Principal) UserID() (uint, bool) {
	return p.userID, p.ok
}

func (p Principal) IsAnonymous() bool {
	return !p.ok
}

// Is reports whether both principals name the same user. Two anonymous principals are never
// the same user.
func (p Principal) Is(other Principal) bool {
	return p.ok && other.ok && p.userID == other.userID
}
