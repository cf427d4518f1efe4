package model

import "strings"

// Source identifies the channel or group a message came from.
type Source struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
}

// Label returns the best human-readable name for the source.
func (s Source) Label() string {
	switch {
	case strings.TrimSpace(s.DisplayName) != "":
		return s.DisplayName
	case s.Username != "":
		return "@" + s.Username
	default:
		return s.ID
	}
}

// RawMessage is a single message delivered by the messaging client, either
// from a history fetch or a live update. For media messages Text holds the
// caption.
type RawMessage struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Source   Source `json:"source"`
	HasMedia bool   `json:"has_media"`
}
