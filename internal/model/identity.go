package model

// Identity is the authenticated user of one request. It is never persisted.
type Identity struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Admin      bool   `json:"admin"`
}

// CanAccess reports whether the identity may read documents of owner.
func (i *Identity) CanAccess(owner string) bool {
	if i == nil {
		return false
	}
	return i.Admin || i.Identifier == owner
}
