package models

import "time"

// LoginRequest looks a credential up by its exact hash pair.
type LoginRequest struct {
	UsernameHash string `json:"usernameHash"`
	PasswordHash string `json:"passwordHash"`
}

// LoginResponse carries what the client persists into its session.
type LoginResponse struct {
	CredentialID string    `json:"id"`
	FamilyName   string    `json:"familyName"`
	AccessToken  string    `json:"accessToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// CredentialLookup is returned when searching by username hash only.
type CredentialLookup struct {
	ID         string `json:"id"`
	FamilyName string `json:"familyName"`
}

type CreateCredentialRequest struct {
	UsernameHash string `json:"usernameHash"`
	PasswordHash string `json:"passwordHash"`
	FamilyName   string `json:"familyName"`
}

// UpdatePasswordRequest resets a password. FamilyName must match the
// account's family name, trimmed and case-insensitively.
type UpdatePasswordRequest struct {
	UsernameHash string `json:"usernameHash"`
	FamilyName   string `json:"familyName"`
	PasswordHash string `json:"passwordHash"`
}

type CreateProfileRequest struct {
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Color    string `json:"color"`
}

// UpdateProfileRequest changes color and avatar. A nil AvatarURL clears it.
type UpdateProfileRequest struct {
	Color     string  `json:"color"`
	AvatarURL *string `json:"avatarUrl"`
}

type AvatarUploadRequest struct {
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Ext         string `json:"ext"`
}

// AvatarUploadResponse tells the client where to PUT the file and which
// URL to store on the profile afterwards.
type AvatarUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	PublicURL string    `json:"publicUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PointInput is the writable part of a Point.
type PointInput struct {
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Points      int         `json:"points"`
	Status      PointStatus `json:"status"`
	Destroyed   bool        `json:"destroyed"`
	Description string      `json:"description"`
	ProfileID   *string     `json:"profileId"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}
