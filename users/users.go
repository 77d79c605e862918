// Package users holds the profile model returned by the userinfo endpoint
// and the registration request the SDK validates before submission.
package users

// User is the authenticated user's profile as returned by the userinfo
// endpoint. Field names follow the standard OIDC claim set.
type User struct {
	ID            string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Username      string `json:"preferred_username"`
	Picture       string `json:"picture,omitempty"`
	Locale        string `json:"locale,omitempty"`
}

// ProfileUpdate carries the partial fields accepted by the profile PATCH
// endpoint. Nil fields are omitted from the wire body.
type ProfileUpdate struct {
	Name       *string `json:"name,omitempty"`
	GivenName  *string `json:"given_name,omitempty"`
	FamilyName *string `json:"family_name,omitempty"`
	Username   *string `json:"preferred_username,omitempty"`
	Picture    *string `json:"picture,omitempty"`
	Locale     *string `json:"locale,omitempty"`
}

// RegistrationResponse is the body returned by the registration endpoint.
type RegistrationResponse struct {
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}
