// Package validation implements the declarative per-field rule engine used by
// the schema validation stage. Rule sets are built once at startup, keyed by
// operation context, and shared read-only across requests.
package validation

import (
	"regexp"
	"unicode"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/gate"
)

// Context selects which rule set applies to a request.
type Context string

const (
	ContextRegister Context = "register"
	ContextLogin    Context = "login"
	ContextEdit     Context = "edit"
)

// CheckFunc reports whether a field value satisfies one constraint. present
// is false when the field is absent from the payload entirely.
type CheckFunc func(value string, present bool) bool

// Rule is a single ordered constraint on one field with its failure message.
type Rule struct {
	Field    string
	Message  string
	Check    CheckFunc
	Optional bool // skip when the field is absent
}

// RuleSet is the ordered rule list for one operation context.
type RuleSet []Rule

var (
	alphanumericRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	emailRe        = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Validate runs every rule against the payload and collects all failures in
// rule order. An empty result means the payload passed.
func (rs RuleSet) Validate(body map[string]any) []gate.Detail {
	var details []gate.Detail
	for _, rule := range rs {
		raw, present := body[rule.Field]
		value, _ := raw.(string)
		if rule.Optional && !present {
			continue
		}
		if !rule.Check(value, present) {
			details = append(details, gate.Detail{Message: rule.Message, Field: rule.Field})
		}
	}
	return details
}

func required(value string, present bool) bool {
	return present && value != ""
}

func alphanumeric(value string, _ bool) bool {
	return alphanumericRe.MatchString(value)
}

func maxLen(n int) CheckFunc {
	return func(value string, _ bool) bool { return len(value) <= n }
}

func minLen(n int) CheckFunc {
	return func(value string, _ bool) bool { return len(value) >= n }
}

func email(value string, _ bool) bool {
	return emailRe.MatchString(value)
}

func hasUpper(value string, _ bool) bool {
	for _, r := range value {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasDigit(value string, _ bool) bool {
	for _, r := range value {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
