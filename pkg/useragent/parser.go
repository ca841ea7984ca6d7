// Package useragent classifies visitor User-Agent strings into the
// coarse device buckets the click analytics aggregate over.
package useragent

import (
	"strings"
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
)

// Device type buckets recorded on click events.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// DeviceInfo is the parsed classification of one User-Agent string.
type DeviceInfo struct {
	DeviceType string
	Browser    string
	OS         string
}

// Parser classifies User-Agent strings. It is safe for concurrent use.
type Parser struct {
	parser *uaparser.Parser
}

var (
	defaultParser *Parser
	defaultOnce   sync.Once
)

// NewParser builds a parser from the definitions bundled with the
// uap-go module.
func NewParser() *Parser {
	return &Parser{parser: uaparser.NewFromSaved()}
}

// Default returns a lazily initialized shared parser.
func Default() *Parser {
	defaultOnce.Do(func() {
		defaultParser = NewParser()
	})
	return defaultParser
}

// Parse classifies a User-Agent string. An empty string yields the
// unknown bucket.
func (p *Parser) Parse(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{DeviceType: DeviceUnknown, Browser: DeviceUnknown, OS: DeviceUnknown}
	}

	client := p.parser.Parse(userAgent)
	return DeviceInfo{
		DeviceType: deviceType(client, userAgent),
		Browser:    orUnknown(client.UserAgent.Family),
		OS:         orUnknown(client.Os.Family),
	}
}

func deviceType(client *uaparser.Client, userAgent string) string {
	if isBot(client.UserAgent.Family, userAgent) {
		return DeviceBot
	}

	device := client.Device.Family
	if containsAny(device, "iPad", "Tablet", "Kindle", "Surface") {
		return DeviceTablet
	}
	if containsAny(device, "iPhone", "Android", "BlackBerry", "Mobile", "Phone") {
		return DeviceMobile
	}

	os := client.Os.Family
	switch {
	case strings.Contains(os, "iOS"):
		if strings.Contains(userAgent, "iPad") {
			return DeviceTablet
		}
		return DeviceMobile
	case strings.Contains(os, "Android"):
		// Android tablets omit the Mobile token.
		if !strings.Contains(userAgent, "Mobile") {
			return DeviceTablet
		}
		return DeviceMobile
	case containsAny(os, "Windows Phone", "BlackBerry", "Firefox OS", "Sailfish"):
		return DeviceMobile
	case containsAny(os, "Windows", "Mac OS X", "macOS", "Linux", "Ubuntu", "Chrome OS", "FreeBSD", "OpenBSD"):
		return DeviceDesktop
	}
	return DeviceUnknown
}

var botTokens = []string{
	"googlebot", "bingbot", "slurp", "duckduckbot", "baiduspider",
	"yandexbot", "facebookexternalhit", "twitterbot", "linkedinbot",
	"whatsapp", "telegram", "bot", "crawler", "spider", "scraper",
}

func isBot(family, userAgent string) bool {
	haystack := strings.ToLower(family + " " + userAgent)
	for _, token := range botTokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}

func containsAny(s string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

func orUnknown(s string) string {
	if s == "" || s == "Other" {
		return DeviceUnknown
	}
	return s
}
