package httpserver

import (
	"time"

	"github.com/portaltarot/oraculo/internal/model"
)

// profileDTO is the public JSON shape of a profile. Credentials never leave
// the server.
type profileDTO struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	DisplayName      string     `json:"display_name"`
	FullName         string     `json:"full_name,omitempty"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	Birthdate        *time.Time `json:"birthdate,omitempty"`
	City             *string    `json:"city,omitempty"`
	State            *string    `json:"state,omitempty"`
	Archetype        string     `json:"archetype"`
	Element          string     `json:"element,omitempty"`
	SolarSign        *string    `json:"solar_sign,omitempty"`
	LunarSign        *string    `json:"lunar_sign,omitempty"`
	Ascendant        *string    `json:"ascendant,omitempty"`
	Level            int        `json:"level"`
	Bio              *string    `json:"bio,omitempty"`
	Relationship     string     `json:"relationship_status"`
	VisibleInOraculo bool       `json:"visible_in_oraculo"`
	FeaturedProfile  bool       `json:"featured_profile"`
	XP               int64      `json:"xp"`
	Ouros            int64      `json:"ouros"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toProfileDTO(p *model.Profile) profileDTO {
	return profileDTO{
		ID:               p.ID.String(),
		Username:         p.Username,
		DisplayName:      p.DisplayName,
		FullName:         p.FullName,
		AvatarURL:        p.AvatarURL,
		Birthdate:        p.Birthdate,
		City:             p.City,
		State:            p.State,
		Archetype:        string(p.Archetype),
		Element:          string(p.Element),
		SolarSign:        p.SolarSign,
		LunarSign:        p.LunarSign,
		Ascendant:        p.Ascendant,
		Level:            p.Level,
		Bio:              p.Bio,
		Relationship:     string(p.Relationship),
		VisibleInOraculo: p.VisibleInOraculo,
		FeaturedProfile:  p.FeaturedProfile,
		XP:               p.XP,
		Ouros:            p.Ouros,
		CreatedAt:        p.CreatedAt,
	}
}

type connectionDTO struct {
	FollowerID      string    `json:"follower_id"`
	FollowerName    string    `json:"follower_name"`
	FollowerAvatar  string    `json:"follower_avatar,omitempty"`
	FollowingID     string    `json:"following_id"`
	FollowingName   string    `json:"following_name"`
	FollowingAvatar string    `json:"following_avatar,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toConnectionDTO(c model.Connection) connectionDTO {
	return connectionDTO{
		FollowerID:      c.FollowerID.String(),
		FollowerName:    c.FollowerName,
		FollowerAvatar:  c.FollowerAvatar,
		FollowingID:     c.FollowingID.String(),
		FollowingName:   c.FollowingName,
		FollowingAvatar: c.FollowingAvatar,
		CreatedAt:       c.CreatedAt,
	}
}

type notificationDTO struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	FromUserID     string    `json:"from_user_id"`
	FromUserName   string    `json:"from_user_name"`
	FromUserAvatar string    `json:"from_user_avatar,omitempty"`
	ActionURL      string    `json:"action_url,omitempty"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

func toNotificationDTO(n model.Notification) notificationDTO {
	return notificationDTO{
		ID:             n.ID.String(),
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		FromUserID:     n.FromUserID.String(),
		FromUserName:   n.FromUserName,
		FromUserAvatar: n.FromUserAvatar,
		ActionURL:      n.ActionURL,
		Read:           n.Read,
		CreatedAt:      n.CreatedAt,
	}
}

// updateRequest is the PATCH /api/me body. Pointer fields distinguish
// "absent" from "set to zero value".
type updateRequest struct {
	DisplayName      *string    `json:"display_name"`
	FullName         *string    `json:"full_name"`
	AvatarURL        *string    `json:"avatar_url"`
	Birthdate        *time.Time `json:"birthdate"`
	City             *string    `json:"city"`
	State            *string    `json:"state"`
	Archetype        *string    `json:"archetype"`
	Element          *string    `json:"element"`
	SolarSign        *string    `json:"solar_sign"`
	LunarSign        *string    `json:"lunar_sign"`
	Ascendant        *string    `json:"ascendant"`
	Bio              *string    `json:"bio"`
	Relationship     *string    `json:"relationship_status"`
	VisibleInOraculo *bool      `json:"visible_in_oraculo"`
	FeaturedProfile  *bool      `json:"featured_profile"`
}

func (r *updateRequest) toModel() model.ProfileUpdate {
	upd := model.ProfileUpdate{
		DisplayName:      r.DisplayName,
		FullName:         r.FullName,
		AvatarURL:        r.AvatarURL,
		Birthdate:        r.Birthdate,
		City:             r.City,
		State:            r.State,
		SolarSign:        r.SolarSign,
		LunarSign:        r.LunarSign,
		Ascendant:        r.Ascendant,
		Bio:              r.Bio,
		VisibleInOraculo: r.VisibleInOraculo,
		FeaturedProfile:  r.FeaturedProfile,
	}
	if r.Archetype != nil {
		a := model.Archetype(*r.Archetype)
		upd.Archetype = &a
	}
	if r.Element != nil {
		e := model.Element(*r.Element)
		upd.Element = &e
	}
	if r.Relationship != nil {
		s := model.RelationshipStatus(*r.Relationship)
		upd.Relationship = &s
	}
	return upd
}
