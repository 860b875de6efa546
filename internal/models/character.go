package models

// Character is a chat persona. Image is nil until an image upload attaches
// a relative path under the public uploads directory.
type Character struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

// CreateCharacterRequest is the request structure for creating a character.
type CreateCharacterRequest struct {
	Name string `json:"name" form:"name"`
}
