package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dalildz/dalil/pkg/sanitizer"
)

// Names of the default rules.
const (
	RuleNoScriptInjection  = "no_script_injection"
	RuleNoSQLInjection     = "no_sql_injection"
	RuleNoPathTraversal    = "no_path_traversal"
	RuleEmailFormat        = "valid_format"
	RuleNoSuspiciousDomain = "no_suspicious_domains"
	RulePasswordMinLength  = "min_length"
	RulePasswordComplexity = "complexity"
)

// Messages of the default rules.
const (
	MsgScriptInjection  = "Script injection detected"
	MsgSQLInjection     = "SQL injection pattern detected"
	MsgPathTraversal    = "Path traversal detected"
	MsgEmailFormat      = "Invalid email format"
	MsgSuspiciousDomain = "Suspicious email domain detected"
	MsgPasswordLength   = "Password must be at least 8 characters long"
	MsgPasswordComplex  = "Password must contain at least 3 of: uppercase, lowercase, numbers, special characters"
)

// MinPasswordLength is counted in runes.
const MinPasswordLength = 8

// DefaultDisposableDomains is the built-in denylist of throwaway mailbox providers.
var DefaultDisposableDomains = []string{"tempmail.com", "10minutemail.com", "guerrillamail.com"}

var (
	scriptTagRegex = regexp.MustCompile(`(?i)<script[\s\S]*?>[\s\S]*?</script>`)

	// Whole-word keywords only: "sélection" or "deleted" do not match.
	sqlKeywordRegex = regexp.MustCompile(`(?i)\b(?:UNION|SELECT|INSERT|DROP|DELETE)\b`)

	// ".." touching a separator on either side. A bare ellipsis in prose is fine.
	pathTraversalRegex = regexp.MustCompile(`\.\.[/\\]|[/\\]\.\.`)

	// Whitespace as ECMAScript defines it: \s lacks \v and U+FEFF in RE2.
	emailFormatRegex = regexp.MustCompile(`^[^\s\v\x{FEFF}\p{Z}@]+@[^\s\v\x{FEFF}\p{Z}@]+\.[^\s\v\x{FEFF}\p{Z}@]+$`)

	upperRegex   = regexp.MustCompile(`[A-Z]`)
	lowerRegex   = regexp.MustCompile(`[a-z]`)
	digitRegex   = regexp.MustCompile(`[0-9]`)
	specialRegex = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// registerDefaults installs the default rules and sanitizers.
func registerDefaults(r *Registry, disposableDomains []string) {
	r.AddRule(TypeString, Rule{
		Name:     RuleNoScriptInjection,
		Test:     StringPredicate(func(s string) bool { return !scriptTagRegex.MatchString(s) }),
		Message:  MsgScriptInjection,
		Critical: true,
	})
	r.AddRule(TypeString, Rule{
		Name:     RuleNoSQLInjection,
		Test:     StringPredicate(func(s string) bool { return !sqlKeywordRegex.MatchString(s) }),
		Message:  MsgSQLInjection,
		Critical: true,
	})
	r.AddRule(TypeString, Rule{
		Name:     RuleNoPathTraversal,
		Test:     StringPredicate(func(s string) bool { return !pathTraversalRegex.MatchString(s) }),
		Message:  MsgPathTraversal,
		Critical: true,
	})

	// Legal text bodies share the injection rules of plain strings.
	for _, rule := range r.Rules(TypeString) {
		r.AddRule(TypeText, rule)
	}

	domains := make([]string, 0, len(disposableDomains))
	for _, d := range disposableDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains = append(domains, d)
		}
	}

	r.AddRule(TypeEmail, Rule{
		Name:    RuleEmailFormat,
		Test:    StringPredicate(emailFormatRegex.MatchString),
		Message: MsgEmailFormat,
	})
	r.AddRule(TypeEmail, Rule{
		Name: RuleNoSuspiciousDomain,
		Test: StringPredicate(func(s string) bool {
			return !slices.Contains(domains, sanitizer.EmailDomain(s))
		}),
		Message: MsgSuspiciousDomain,
	})

	r.AddRule(TypePassword, Rule{
		Name: RulePasswordMinLength,
		Test: StringPredicate(func(s string) bool {
			return utf8.RuneCountInString(s) >= MinPasswordLength
		}),
		Message: MsgPasswordLength,
	})
	r.AddRule(TypePassword, Rule{
		Name:    RulePasswordComplexity,
		Test:    StringPredicate(func(s string) bool { return characterClasses(s) >= 3 }),
		Message: MsgPasswordComplex,
	})

	r.AddSanitizer(TypeString, StringSanitizer(sanitizer.EscapeHTML))
	r.AddSanitizer(TypeText, StringSanitizer(sanitizer.Compose(sanitizer.NormalizeText, sanitizer.EscapeHTML)))
	r.AddSanitizer(TypeFilename, StringSanitizer(sanitizer.SanitizeFilename))
	r.AddSanitizer(TypeURL, func(value any) any {
		s, ok := value.(string)
		if !ok {
			return ""
		}
		return sanitizer.SanitizeURL(s)
	})
}

func characterClasses(s string) int {
	n := 0
	for _, re := range []*regexp.Regexp{upperRegex, lowerRegex, digitRegex, specialRegex} {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}

// StringPredicate adapts a string check to a Predicate. Non-string values
// fault with ErrNotString instead of being coerced.
func StringPredicate(fn func(string) bool) Predicate {
	return func(value any) (bool, error) {
		s, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("%w: got %T", ErrNotString, value)
		}
		return fn(s), nil
	}
}

// StringSanitizer adapts a string transform to a Sanitizer. Non-string
// values pass through unchanged.
func StringSanitizer(fn func(string) string) Sanitizer {
	return func(value any) any {
		s, ok := value.(string)
		if !ok {
			return value
		}
		return fn(s)
	}
}
