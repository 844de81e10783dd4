package models

// Profile holds the account's display settings.
type Profile struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Avatar  string   `json:"avatar"`
	Dietary []string `json:"dietary"`
	Links   []string `json:"links"`
}

// DefaultProfile is the empty profile used when nothing is stored yet.
func DefaultProfile() Profile {
	return Profile{Dietary: []string{}, Links: []string{}}
}
