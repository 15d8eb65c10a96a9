package models

// Identity is the authenticated principal supplied by the identity provider.
// Anonymous sessions can browse availability but may not book.
type Identity struct {
	UID       string `json:"uid"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
}
