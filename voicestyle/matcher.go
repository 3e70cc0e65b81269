package voicestyle

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Matcher decides whether a weighted rule applies to a character. The
// merge pipeline only sees this interface, so the strategy (regex,
// exact, prefix) is swappable per rule.
type Matcher interface {
	Matches(character string) bool
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m *regexMatcher) Matches(character string) bool {
	return m.re.MatchString(character)
}

// ExactMatcher matches a character name ignoring case.
type ExactMatcher string

func (m ExactMatcher) Matches(character string) bool {
	return strings.EqualFold(string(m), character)
}

// NewRegexMatcher compiles a case-insensitive pattern matcher.
func NewRegexMatcher(pattern string) (Matcher, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	return &regexMatcher{re: re}, nil
}

// matcherCache compiles rule patterns once. A pattern that fails to
// compile matches nothing and is logged the first time it is seen.
type matcherCache struct {
	compiled map[string]Matcher
}

func newMatcherCache() *matcherCache {
	return &matcherCache{compiled: make(map[string]Matcher)}
}

type neverMatcher struct{}

func (neverMatcher) Matches(string) bool { return false }

func (c *matcherCache) get(pattern string) Matcher {
	if m, ok := c.compiled[pattern]; ok {
		return m
	}
	m, err := NewRegexMatcher(pattern)
	if err != nil {
		logrus.WithError(err).WithField("pattern", pattern).Warnln("bad character pattern in weighted rule")
		m = neverMatcher{}
	}
	c.compiled[pattern] = m
	return m
}
