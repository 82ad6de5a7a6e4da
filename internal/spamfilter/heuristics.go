package spamfilter

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/opensky-suite/openmail-backend/internal/models"
)

// Heuristic weights and cutoffs.
const (
	capsSubjectWeight      = 15
	capsSubjectMinLength   = 10
	exclamationWeight      = 10
	maxSubjectExclamations = 3
	urlDensityWeight       = 15
	maxBodyURLs            = 5
	urlShortenerWeight     = 10
	newlineDensityWeight   = 10
	maxShortBodyNewlines   = 50
	shortBodyLength        = 1000
	htmlOnlyWeight         = 5
	recipientCountWeight   = 15
	maxRecipients          = 20
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// urlShortenerDomains hide the real destination of a link, a common tactic in
// bulk mail.
var urlShortenerDomains = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd", "buff.ly",
}

// heuristicScore applies the structural checks that need the full message
// record rather than just its text: shouting subjects, link stuffing,
// HTML-only bodies and oversized recipient lists.
func heuristicScore(msg *models.Message) int {
	score := 0

	subject := msg.Subject
	if len(subject) > capsSubjectMinLength && isAllCaps(subject) {
		score += capsSubjectWeight
	}
	if strings.Count(subject, "!") > maxSubjectExclamations {
		score += exclamationWeight
	}

	body := msg.BodyText
	if body == "" {
		body = msg.BodyHTML
	}
	if len(urlPattern.FindAllString(body, -1)) > maxBodyURLs {
		score += urlDensityWeight
	}
	lowerBody := strings.ToLower(body)
	for _, domain := range urlShortenerDomains {
		if strings.Contains(lowerBody, domain) {
			score += urlShortenerWeight
			break
		}
	}
	if len(body) < shortBodyLength && strings.Count(body, "\n") > maxShortBodyNewlines {
		score += newlineDensityWeight
	}
	if msg.BodyText == "" && msg.BodyHTML != "" {
		score += htmlOnlyWeight
	}
	if len(msg.ToAddresses)+len(msg.CcAddresses) > maxRecipients {
		score += recipientCountWeight
	}

	if score > 100 {
		score = 100
	}
	return score
}

// isAllCaps reports whether a string contains letters and none of them are
// lower case.
func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
