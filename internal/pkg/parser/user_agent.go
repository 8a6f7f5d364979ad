package parser

import "strings"

type match struct {
	needle  string
	exclude string
	name    string
}

// Order matters: Edge and Chrome both mention Safari, and Chrome on Edge mentions Chrome.
var (
	platforms = []match{
		{needle: "windows", name: "Windows"},
		{needle: "android", name: "Android"},
		{needle: "iphone", name: "iOS"},
		{needle: "ipad", name: "iOS"},
		{needle: "mac os", name: "macOS"},
		{needle: "linux", name: "Linux"},
	}
	browsers = []match{
		{needle: "edg", name: "Edge"},
		{needle: "firefox", name: "Firefox"},
		{needle: "chrome", name: "Chrome"},
		{needle: "safari", exclude: "chrome", name: "Safari"},
		{needle: "curl", name: "curl"},
	}
)

func ParseUserAgent(ua string) (os, browser string) {
	lower := strings.ToLower(ua)
	return lookup(platforms, lower), lookup(browsers, lower)
}

// Client renders a user agent as "Browser on OS" for audit entries.
func Client(ua string) string {
	os, browser := ParseUserAgent(ua)
	return browser + " on " + os
}

func lookup(table []match, ua string) string {
	for _, m := range table {
		if strings.Contains(ua, m.needle) && (m.exclude == "" || !strings.Contains(ua, m.exclude)) {
			return m.name
		}
	}
	return "Unknown"
}
