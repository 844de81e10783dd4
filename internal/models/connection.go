package models

import "time"

// Connection is the state of one linked social account.
type Connection struct {
	Connected bool      `json:"connected"`
	Handle    string    `json:"handle,omitempty"`
	Scopes    []string  `json:"scopes,omitempty"`
	At        time.Time `json:"at,omitempty"`
}

// Provider describes a social platform a user can link.
type Provider struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Hint string `json:"hint"`
}

// Providers is the fixed list of platforms shown on the connections screen.
var Providers = []Provider{
	{Key: "pinterest", Name: "Pinterest", Hint: "Pins & recipe cards"},
	{Key: "instagram", Name: "Instagram", Hint: "Reels & carousels"},
	{Key: "facebook", Name: "Facebook", Hint: "Page posts"},
	{Key: "twitter", Name: "X (Twitter)", Hint: "Threads"},
	{Key: "tiktok", Name: "TikTok", Hint: "Short videos"},
	{Key: "youtube", Name: "YouTube", Hint: "Long-form"},
	{Key: "google", Name: "Google (YouTube)", Hint: "Sign-in"},
}

// LookupProvider finds a provider by key.
func LookupProvider(key string) (Provider, bool) {
	for _, p := range Providers {
		if p.Key == key {
			return p, true
		}
	}
	return Provider{}, false
}
