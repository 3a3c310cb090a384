// Package sms composes the emergency SMS fallback fired when a
// safety-critical alert cannot even be attempted online. It is a parallel
// path to queueing, not a replacement: the structured alert still reaches
// Hearth once connectivity returns, but the human-readable message goes out
// immediately through the device's native composer.
package sms

import (
	"fmt"
	"net/url"
	"strings"
)

// Composer opens the device's native SMS composer with a prefilled URI.
type Composer interface {
	Open(uri string) error
}

// ComposerFunc adapts a function to the Composer interface.
type ComposerFunc func(uri string) error

// Open implements Composer.
func (f ComposerFunc) Open(uri string) error { return f(uri) }

// emergencyNumbers maps ISO country codes to their emergency short codes.
// 112 works across the EU and most GSM networks, so it is the fallback.
var emergencyNumbers = map[string]string{
	"US": "911",
	"CA": "911",
	"GB": "999",
	"AU": "000",
	"NZ": "111",
}

const defaultEmergencyNumber = "112"

// messages maps alert kinds to the plain-text description sent to the
// recipient. Unknown kinds fall back to a generic help request.
var messages = map[string]string{
	"sos_triggered":       "EMERGENCY: I need help right now.",
	"take_me_home_tapped": "I am lost and trying to get home. Please help me.",
}

const defaultMessage = "I need assistance. This is an automated safety message."

// Channel composes and dispatches the fallback SMS.
type Channel struct {
	contacts []string
	region   string
	composer Composer
}

// NewChannel creates a fallback channel. contacts are tried in priority
// order; when none are configured the region's emergency number is used.
func NewChannel(contacts []string, region string, composer Composer) *Channel {
	return &Channel{contacts: contacts, region: region, composer: composer}
}

// Recipient returns the first configured emergency contact, else the
// country-derived emergency number.
func (c *Channel) Recipient() string {
	for _, contact := range c.contacts {
		if strings.TrimSpace(contact) != "" {
			return contact
		}
	}
	if number, ok := emergencyNumbers[strings.ToUpper(c.region)]; ok {
		return number
	}
	return defaultEmergencyNumber
}

// BuildBody renders the message body for an alert kind. When a position fix
// was obtained, a map link is appended so the recipient can navigate to it.
func BuildBody(kind string, latitude, longitude float64, hasFix bool) string {
	body, ok := messages[kind]
	if !ok {
		body = defaultMessage
	}
	if hasFix {
		body += fmt.Sprintf(" My location: https://maps.google.com/?q=%f,%f", latitude, longitude)
	}
	return body
}

// BuildURI renders the platform sms: URI with a URL-encoded body.
func BuildURI(recipient, body string) string {
	return "sms:" + recipient + "?body=" + url.QueryEscape(body)
}

// Send composes and opens the SMS. Composer failures (no SMS app, user
// cancelled) are swallowed: this is already the last line of defense, and
// there is nothing further to fall back to.
func (c *Channel) Send(kind string, latitude, longitude float64, hasFix bool) {
	if c == nil || c.composer == nil {
		return
	}
	uri := BuildURI(c.Recipient(), BuildBody(kind, latitude, longitude, hasFix))
	_ = c.composer.Open(uri)
}
