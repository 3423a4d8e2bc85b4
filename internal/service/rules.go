package service

import (
	"regexp"
	"strings"
)

// Topic names a static rule.
type Topic string

const (
	TopicHours        Topic = "hours"
	TopicLocation     Topic = "location"
	TopicServices     Topic = "services"
	TopicBooking      Topic = "booking"
	TopicHaircutPrice Topic = "prices_haircut"
	TopicColorPrice   Topic = "prices_color"
	TopicCancellation Topic = "cancellation"
)

// Rule is one entry of the static rule table. A rule matches a normalized
// question when any Keyword is present, no Exclude keyword is present and,
// if Subject is set, Subject matches and at least one Qualifier is present.
type Rule struct {
	Topic      Topic
	Answer     string
	Keywords   []string
	Exclude    []string
	Subject    *regexp.Regexp
	Qualifiers []string
}

// Matches evaluates the rule against an already lower-cased, trimmed question.
func (r Rule) Matches(q string) bool {
	if len(r.Keywords) > 0 && !containsAny(q, r.Keywords) {
		return false
	}
	if r.Subject != nil {
		if !r.Subject.MatchString(q) || !containsAny(q, r.Qualifiers) {
			return false
		}
	}
	return !containsAny(q, r.Exclude)
}

// Rules is the ordered static rule table; the first match wins.
type Rules []Rule

var costKeywords = []string{"price", "cost", "much", "charge", "fee"}

// DefaultRules returns the salon rule table in priority order.
func DefaultRules() Rules {
	return Rules{
		{
			Topic:    TopicHours,
			Answer:   "We're open Monday to Saturday, 9 AM to 7 PM, and closed on Sundays.",
			Keywords: []string{"hour", "open", "opening", "close", "timing", "time"},
			Exclude:  []string{"book", "appointment"},
		},
		{
			Topic:    TopicLocation,
			Answer:   "We're located at 123 Beauty Street, Downtown.",
			Keywords: []string{"where", "location", "address", "find you", "directions"},
		},
		{
			Topic:    TopicServices,
			Answer:   "Haircuts, coloring, highlights, styling, manicures, pedicures, and facials.",
			Keywords: []string{"service", "what do you", "what can", "offer", "provide", "do you do"},
			Exclude:  []string{"tattoo", "piercing", "botox", "laser"},
		},
		{
			Topic:    TopicBooking,
			Answer:   "Book online at example.com/book or call 555-0123.",
			Keywords: []string{"book", "booking", "reserve", "reservation", "appointment", "schedule"},
			Exclude:  []string{"cancel", "change", "reschedule"},
		},
		{
			Topic:      TopicHaircutPrice,
			Answer:     "Haircuts start at $25.",
			Subject:    regexp.MustCompile(`\b(haircut|cut|trim)\b`),
			Qualifiers: costKeywords,
		},
		{
			Topic:      TopicColorPrice,
			Answer:     "Coloring services start at $60.",
			Subject:    regexp.MustCompile(`\b(color|dye|highlight|tint)\b`),
			Qualifiers: costKeywords,
		},
		{
			Topic:    TopicCancellation,
			Answer:   "Cancel or reschedule at least 24 hours in advance.",
			Keywords: []string{"cancel", "reschedule", "change appointment", "modify appointment"},
		},
	}
}

// WithAnswers returns a copy of the table with canned answers replaced by
// topic. Unknown topics and empty answers are ignored.
func (rs Rules) WithAnswers(answers map[string]string) Rules {
	out := make(Rules, len(rs))
	copy(out, rs)
	for i := range out {
		if a := strings.TrimSpace(answers[string(out[i].Topic)]); a != "" {
			out[i].Answer = a
		}
	}
	return out
}

// Match returns the first rule matching the normalized question.
func (rs Rules) Match(q string) (Rule, bool) {
	for _, r := range rs {
		if r.Matches(q) {
			return r, true
		}
	}
	return Rule{}, false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
