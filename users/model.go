package users

import "time"

type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	PhotoURL  string    `json:"photoURL,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is the registration payload, {"user": {...}}. The email always
// comes from the caller's identity.
type Profile struct {
	User struct {
		Name     string `json:"name"     validate:"max=100"`
		PhotoURL string `json:"photoURL" validate:"omitempty,url,max=2048"`
	} `json:"user"`
}
