// Package safety screens user-submitted text before it reaches the
// awareness feed or a mentor.
package safety

import (
	"regexp"
	"strings"
)

// Patterns cover both Hindi (romanized and Devanagari) and English, since
// the platform's audience writes in either.
var harmPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(chutiya|madarchod|randi|saali|kutiya)\b`),
	regexp.MustCompile(`b(c|bcchd|mc|mcchd)\b`),
	regexp.MustCompile(`\b(gandu|behenchod|lund|jhaat|chut)\b`),
	regexp.MustCompile(`\b(bastard|whore|slut)\b`),
	regexp.MustCompile(`\b(kill|murder|rape)\s+(all|every)\b`),
	// Victim blaming.
	regexp.MustCompile(`(usne|she)\s+(galti|fault)\s+(ki|kar)\b`),
}

var graphicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(chopped|gutted|ripped|decapitated)\b`),
	// \b is ASCII-only in RE2, so the Devanagari pattern does without it.
	regexp.MustCompile(`(लटका|काट)\s+(दिया|कर)`),
}

const minContentLength = 10

// CheckContent reports whether text is acceptable for publication. When it
// is not, reason explains the rejection in user-facing terms.
func CheckContent(text string) (ok bool, reason string) {
	lower := strings.ToLower(text)

	for _, p := range harmPatterns {
		if p.MatchString(lower) {
			return false, "Contains harmful/inappropriate content"
		}
	}
	for _, p := range graphicPatterns {
		if p.MatchString(lower) {
			return false, "Contains harmful/inappropriate content"
		}
	}

	if len(strings.TrimSpace(text)) < minContentLength {
		return false, "Content too short"
	}
	return true, ""
}
