// Package device turns User-Agent strings into display names for audit trails.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// DisplayName returns "Browser on OS", or "Browser on Platform" for mobile agents.
func DisplayName(userAgentString string) string {
	if strings.TrimSpace(userAgentString) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}
