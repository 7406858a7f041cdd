package utils

import (
	ua "github.com/mssola/user_agent"
)

// ClientInfo holds parsed information from a User-Agent string
type ClientInfo struct {
	Browser  string `json:"browser"`  // Chrome, Safari, Stripe, etc.
	OS       string `json:"os"`       // OS name, if any
	IsBot    bool   `json:"is_bot"`   // Whether it's a bot/crawler (webhook senders usually are)
	IsMobile bool   `json:"is_mobile"`
	Raw      string `json:"raw"` // Original user agent string
}

// ParseUserAgent parses a User-Agent string and extracts client information
func ParseUserAgent(userAgent string) ClientInfo {
	if userAgent == "" {
		return ClientInfo{Browser: "Unknown", OS: "Unknown", Raw: userAgent}
	}

	parser := ua.New(userAgent)
	browser, _ := parser.Browser()
	if browser == "" {
		browser = "Unknown"
	}

	os := parser.OS()
	if os == "" {
		os = "Unknown"
	}

	return ClientInfo{
		Browser:  browser,
		OS:       os,
		IsBot:    parser.Bot(),
		IsMobile: parser.Mobile(),
		Raw:      userAgent,
	}
}
