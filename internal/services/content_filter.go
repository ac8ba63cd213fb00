package services

import (
	"regexp"
	"strconv"
	"strings"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
}

// ContentFilter screens user-written comments. A nil filter accepts everything.
type ContentFilter struct {
	bannedWordRegexps   []*regexp.Regexp
	urlPattern          *regexp.Regexp
	repeatedCharPattern *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		bannedWordRegexps:   make([]*regexp.Regexp, 0, len(BannedWords)),
		urlPattern:          regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		repeatedCharPattern: repeatedRunPattern("abcdefghijklmnopqrstuvwxyz!?.", 8),
	}
	for _, word := range BannedWords {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		if err == nil {
			f.bannedWordRegexps = append(f.bannedWordRegexps, re)
		}
	}
	return f
}

// Check returns a ValidationError describing why text was rejected, or nil.
func (f *ContentFilter) Check(text string) error {
	if f == nil || text == "" {
		return nil
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return newValidationError("Your comment contains inappropriate language.")
		}
	}
	if f.urlPattern.MatchString(text) {
		return newValidationError("URLs and web links are not allowed.")
	}
	if f.repeatedCharPattern.MatchString(text) {
		return newValidationError("Your comment appears to be spam.")
	}
	return nil
}

// repeatedRunPattern matches any of chars repeated at least n times in a row.
func repeatedRunPattern(chars string, n int) *regexp.Regexp {
	parts := make([]string, 0, len(chars))
	for _, c := range chars {
		parts = append(parts, regexp.QuoteMeta(string(c))+"{"+strconv.Itoa(n)+",}")
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(parts, "|") + `)`)
}
