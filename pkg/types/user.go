package types

// User is the local record of an identity supplied by the identity provider.
// Users are created on first sign-in sync and never deleted by chatkeep.
type User struct {
	UserID      string  `json:"id"`
	ExternalID  string  `json:"externalId"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	CreatedAt   int64   `json:"createdAt"`
}

// Identity is what the identity provider hands over on sign-in.
type Identity struct {
	ExternalID  string  `json:"externalId"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// Validate reports ErrInvalidID when the external identity is missing.
func (i Identity) Validate() error {
	if i.ExternalID == "" {
		return ErrInvalidID
	}
	return nil
}
