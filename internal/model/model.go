// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Archetype is the mystical archetype assigned to a profile.
type Archetype string

// Known archetypes. ArchetypeNone is the default for unassigned profiles.
const (
	ArchetypeBruxaNatural     Archetype = "bruxa_natural"
	ArchetypeSabio            Archetype = "sabio"
	ArchetypeGuardiaoAstral   Archetype = "guardiao_astral"
	ArchetypeXama             Archetype = "xama"
	ArchetypeNavegadorCosmico Archetype = "navegador_cosmico"
	ArchetypeAlquimista       Archetype = "alquimista"
	ArchetypeNone             Archetype = "none"
)

// Valid reports whether a is a known archetype.
func (a Archetype) Valid() bool {
	switch a {
	case ArchetypeBruxaNatural, ArchetypeSabio, ArchetypeGuardiaoAstral,
		ArchetypeXama, ArchetypeNavegadorCosmico, ArchetypeAlquimista, ArchetypeNone:
		return true
	}
	return false
}

// Element is the dominant element of a profile.
type Element string

// Known elements. Empty means not yet assigned.
const (
	ElementFogo  Element = "fogo"
	ElementAgua  Element = "agua"
	ElementAr    Element = "ar"
	ElementTerra Element = "terra"
)

// Valid reports whether e is a known element.
func (e Element) Valid() bool {
	switch e {
	case ElementFogo, ElementAgua, ElementAr, ElementTerra, "":
		return true
	}
	return false
}

// RelationshipStatus is the declared relationship status of a profile.
type RelationshipStatus string

// Known relationship statuses.
const (
	StatusSolteiro     RelationshipStatus = "solteiro"
	StatusNamorando    RelationshipStatus = "namorando"
	StatusCasado       RelationshipStatus = "casado"
	StatusUniaoEstavel RelationshipStatus = "uniao-estavel"
	StatusEnrolado     RelationshipStatus = "enrolado"
	StatusNaoInformado RelationshipStatus = "nao-informado"
)

// Valid reports whether s is a known relationship status.
func (s RelationshipStatus) Valid() bool {
	switch s {
	case StatusSolteiro, StatusNamorando, StatusCasado, StatusUniaoEstavel,
		StatusEnrolado, StatusNaoInformado:
		return true
	}
	return false
}

// Partnered reports whether the status hides a profile from the matching pool.
func (s RelationshipStatus) Partnered() bool {
	switch s {
	case StatusNamorando, StatusCasado, StatusUniaoEstavel:
		return true
	}
	return false
}

// Profile represents a user account with its public matching fields.
// Optional text fields are pointers; nil means never set by the owner.
type Profile struct {
	ID               uuid.UUID // PK
	Username         string    // unique
	DisplayName      string
	FullName         string
	AvatarURL        string
	Birthdate        *time.Time
	City             *string
	State            *string
	Archetype        Archetype
	Element          Element
	SolarSign        *string
	LunarSign        *string
	Ascendant        *string
	Level            int
	Bio              *string
	Relationship     RelationshipStatus
	VisibleInOraculo bool
	FeaturedProfile  bool
	XP               int64
	Ouros            int64
	PwdHash          []byte // Argon2id(password, SaltAuth); never exposed over the API
	SaltAuth         []byte // per-user auth salt
	CreatedAt        time.Time
}

// ProfileUpdate is a partial profile mutation. Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName      *string
	FullName         *string
	AvatarURL        *string
	Birthdate        *time.Time
	City             *string
	State            *string
	Archetype        *Archetype
	Element          *Element
	SolarSign        *string
	LunarSign        *string
	Ascendant        *string
	Bio              *string
	Relationship     *RelationshipStatus
	VisibleInOraculo *bool
	FeaturedProfile  *bool
}

// Empty reports whether the update carries no changes.
func (u *ProfileUpdate) Empty() bool {
	return u.DisplayName == nil && u.FullName == nil && u.AvatarURL == nil &&
		u.Birthdate == nil && u.City == nil && u.State == nil &&
		u.Archetype == nil && u.Element == nil && u.SolarSign == nil &&
		u.LunarSign == nil && u.Ascendant == nil && u.Bio == nil &&
		u.Relationship == nil && u.VisibleInOraculo == nil && u.FeaturedProfile == nil
}

// Connection is a directed interest edge between two profiles.
// Follower/following name and avatar are denormalized at write time for feed rendering.
type Connection struct {
	FollowerID      uuid.UUID
	FollowerName    string
	FollowerAvatar  string
	FollowingID     uuid.UUID
	FollowingName   string
	FollowingAvatar string
	CreatedAt       time.Time
}

// Notification is an informational record addressed to a single user.
type Notification struct {
	ID             uuid.UUID
	UserID         uuid.UUID // recipient
	Type           string
	Title          string
	Message        string
	FromUserID     uuid.UUID
	FromUserName   string
	FromUserAvatar string
	ActionURL      string
	Read           bool
	CreatedAt      time.Time
}

// Notification types created by this service.
const (
	NotificationNewConnection = "nova_conexao"
)
