package spamfilter

import (
	"regexp"
	"strings"
)

// Sender reputation weights.
const (
	noReplyWeight       = 10
	digitRunWeight      = 20
	noDisplayNameWeight = 15
	brandMismatchWeight = 50
)

var digitRunPattern = regexp.MustCompile(`[0-9]{5,}`)

// wellKnownBrands are names commonly impersonated in display names. A display
// name claiming a brand whose address domain does not contain that brand is a
// strong phishing indicator.
var wellKnownBrands = []string{"paypal", "bank", "amazon", "apple", "microsoft", "netflix"}

// reputationScore derives a 0-100 score from sender address and display name
// alone, independent of message content.
func reputationScore(senderEmail, senderName string) int {
	score := 0
	address := strings.ToLower(strings.TrimSpace(senderEmail))
	localPart := address
	domainPart := ""
	if at := strings.Index(address, "@"); at >= 0 {
		localPart = address[:at]
		domainPart = address[at+1:]
	}

	if strings.HasPrefix(localPart, "noreply") || strings.HasPrefix(localPart, "no-reply") {
		score += noReplyWeight
	}
	if digitRunPattern.MatchString(localPart) {
		score += digitRunWeight
	}
	if strings.TrimSpace(senderName) == "" {
		score += noDisplayNameWeight
	}

	name := strings.ToLower(senderName)
	for _, brand := range wellKnownBrands {
		if strings.Contains(name, brand) && !strings.Contains(domainPart, brand) {
			score += brandMismatchWeight
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}
