// Package models holds the records exchanged between the Invaders server,
// its database and the client.
package models

import (
	"strings"
	"time"
)

// Credential is a family account. Both hashes are hex digests; the server
// never sees plaintext.
type Credential struct {
	ID           string    `json:"id"`
	UsernameHash string    `json:"-"`
	PasswordHash string    `json:"-"`
	FamilyName   string    `json:"familyName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is one family member under a credential.
type Profile struct {
	ID           string    `json:"id"`
	CredentialID string    `json:"credentialId"`
	Name         string    `json:"name"`
	Initials     string    `json:"initials"`
	Color        string    `json:"color"`
	AvatarURL    *string   `json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PointStatus is the selection state of a point.
type PointStatus string

const (
	StatusToSelect PointStatus = "to_select"
	StatusSelected PointStatus = "selected"
)

// Valid reports whether s is a known status.
func (s PointStatus) Valid() bool {
	return s == StatusToSelect || s == StatusSelected
}

// Point is a map annotation ("pixel").
type Point struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Points      int         `json:"points"`
	Status      PointStatus `json:"status"`
	Destroyed   bool        `json:"destroyed"`
	Description string      `json:"description"`
	ProfileID   *string     `json:"profileId"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// PointFilter narrows a point listing. The zero value lists everything.
type PointFilter struct {
	Status PointStatus
}

// ParsePointFilter maps the UI filter names ("all", "selected",
// "to_select") to a PointFilter. Unknown names are rejected.
func ParsePointFilter(s string) (PointFilter, bool) {
	switch strings.TrimSpace(s) {
	case "", "all":
		return PointFilter{}, true
	case string(StatusSelected):
		return PointFilter{Status: StatusSelected}, true
	case string(StatusToSelect):
		return PointFilter{Status: StatusToSelect}, true
	}
	return PointFilter{}, false
}
