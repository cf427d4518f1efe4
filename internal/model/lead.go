package model

import (
	"strings"
	"time"
)

// LinkUnavailable is stored when no permalink can be built for a message.
const LinkUnavailable = "N/A"

// MaxOriginalMessage caps the stored message body, in UTF-16 code units.
const MaxOriginalMessage = 500

// Verdict is the validated judgement of the oracle about one message.
type Verdict struct {
	IsLead   bool   `json:"is_lead"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
}

// Lead is a qualified sales lead ready to be persisted.
type Lead struct {
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Category        string    `json:"category"`
	Channel         string    `json:"channel"`
	MessageLink     string    `json:"message_link"`
	OriginalMessage string    `json:"original_message"`
	DateAdded       time.Time `json:"date_added"`
}

// Key returns the dedup identity of the lead.
func (l Lead) Key() string {
	return DedupKey(l.Phone, l.Name)
}

// DedupKey normalizes a phone/name pair into the identity used to detect
// duplicate leads.
func DedupKey(phone, name string) string {
	return strings.ToLower(strings.TrimSpace(phone)) + "|" + strings.ToLower(strings.TrimSpace(name))
}
