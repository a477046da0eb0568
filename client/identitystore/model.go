package identitystore

type User struct {
	ID          string `json:"id,omitempty"`
	UserName    string `json:"user_name"`
	GivenName   string `json:"given_name,omitempty"`
	FamilyName  string `json:"family_name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

type Group struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// Membership links a member to a group. UserID is empty when the member is
// not a user.
type Membership struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id,omitempty"`
}
