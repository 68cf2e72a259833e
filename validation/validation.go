package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const MaxQueryLength = 4000

var (
	ErrEmptyQuery     = errors.New("message is empty")
	ErrQueryTooLong   = errors.New("message is too long")
	ErrGibberish      = errors.New("message appears to be gibberish")
	ErrInvalidSession = errors.New("invalid session id")
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidSessionID reports whether id can name a session. Generated IDs are
// UUIDs; clients may pick their own within the same alphabet.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// CheckSessionID accepts an empty id, which asks for a new session.
func CheckSessionID(id string) error {
	if id == "" || ValidSessionID(id) {
		return nil
	}
	return ErrInvalidSession
}

// CheckQuery rejects chat messages not worth a model call.
func CheckQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return ErrEmptyQuery
	}
	if utf8.RuneCountInString(trimmed) > MaxQueryLength {
		return ErrQueryTooLong
	}
	if !IsMeaningful(trimmed) {
		return ErrGibberish
	}
	return nil
}

// IsMeaningful is a lenient gibberish filter: it rejects keyboard mashing,
// long character runs and strings made mostly of symbols or digits, and
// accepts everything else.
func IsMeaningful(prompt string) bool {
	trimmed := strings.TrimSpace(prompt)
	if utf8.RuneCountInString(trimmed) < 2 {
		return false
	}

	words := strings.Fields(trimmed)
	if len(words) == 1 && isRepeatedCharacters(words[0]) {
		return false
	}
	if hasLongRun(trimmed, 5) {
		return false
	}

	var letters, digits, punct, total int
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		default:
			punct++
		}
	}
	if total == 0 || float64(letters)/float64(total) < 0.3 {
		return false
	}
	if float64(digits)/float64(total) > 0.5 || float64(punct)/float64(total) > 0.4 {
		return false
	}

	if hasKeyboardMashing(trimmed) && !hasDomainWords(trimmed) {
		return false
	}
	return true
}

func isRepeatedCharacters(s string) bool {
	if utf8.RuneCountInString(s) < 3 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	for _, r := range s {
		if r != first {
			return false
		}
	}
	return true
}

// hasLongRun reports n or more consecutive identical letters or digits.
func hasLongRun(s string, n int) bool {
	var prev rune
	count := 0
	for _, r := range s {
		if r == prev && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			count++
			if count >= n {
				return true
			}
			continue
		}
		prev, count = r, 1
	}
	return false
}

var mashingPatterns = []string{
	"asdfghjkl", "qwertyuiop", "zxcvbnm",
	"asdf", "qwer", "zxcv", "hjkl",
}

func hasKeyboardMashing(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range mashingPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

var domainWords = regexp.MustCompile(`\b(attrition|employees?|department|salary|income|age|gender|tenure|satisfaction|chart|plot|show|what|how|why)\b`)

func hasDomainWords(s string) bool {
	return domainWords.MatchString(strings.ToLower(s))
}
