package profiles

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a person whose texting style can be simulated. The message
// history backing the persona lives in profile_messages.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProfileRequest is used by the API to register a profile, optionally
// seeding its message history in the same call.
type CreateProfileRequest struct {
	Name     string   `json:"name" validate:"required,min=1,max=100"`
	Bio      string   `json:"bio,omitempty" validate:"max=500"`
	Messages []string `json:"messages,omitempty"`
}

// UploadMessagesRequest replaces a profile's message history.
type UploadMessagesRequest struct {
	Messages []string `json:"messages" validate:"required,min=1"`
}
