package kvsearch

import "strings"

// keyPattern is a Redis-style KEYS pattern.
type keyPattern struct {
	raw    string
	prefix string
}

func compileKeyPattern(pattern string) *keyPattern {
	return &keyPattern{
		raw:    pattern,
		prefix: literalPrefix(pattern),
	}
}

func (p *keyPattern) Match(key string) bool {
	if !strings.HasPrefix(key, p.prefix) {
		return false
	}
	return matchGlob(p.raw[len(p.prefix):], key[len(p.prefix):])
}

// Prefix is the literal part of the pattern before the first metacharacter.
// Every matching key starts with it, which lets sorted stores seek directly.
func (p *keyPattern) Prefix() string {
	return p.prefix
}

func literalPrefix(pattern string) string {
	i := strings.IndexAny(pattern, `*?[\`)
	if i < 0 {
		return pattern
	}
	return pattern[:i]
}

// matchGlob reports whether s matches pattern the way Redis KEYS does: byte
// oriented, '*' and '?' cross ':' freely, '[...]' classes support '^' and
// ranges, '\' escapes, and braces are literal.
func matchGlob(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchGlob(pattern, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pattern, s = pattern[1:], s[1:]
		case '[':
			if len(s) == 0 {
				return false
			}
			var ok bool
			ok, pattern = matchClass(pattern[1:], s[0])
			if !ok {
				return false
			}
			s = s[1:]
		case '\\':
			if len(pattern) >= 2 {
				pattern = pattern[1:]
			}
			fallthrough
		default:
			if len(s) == 0 || s[0] != pattern[0] {
				return false
			}
			pattern, s = pattern[1:], s[1:]
		}
	}
	return len(s) == 0
}

// matchClass matches c against the class body p (after '[') and returns the
// pattern remaining after the closing ']'. An unterminated class ends at the
// end of the pattern.
func matchClass(p string, c byte) (bool, string) {
	negate := len(p) > 0 && p[0] == '^'
	if negate {
		p = p[1:]
	}
	var match bool
	for len(p) > 0 && p[0] != ']' {
		switch {
		case p[0] == '\\' && len(p) >= 2:
			match = match || p[1] == c
			p = p[2:]
		case len(p) >= 3 && p[1] == '-':
			lo, hi := p[0], p[2]
			if lo > hi {
				lo, hi = hi, lo
			}
			match = match || (c >= lo && c <= hi)
			p = p[3:]
		default:
			match = match || p[0] == c
			p = p[1:]
		}
	}
	if len(p) > 0 {
		p = p[1:]
	}
	return match != negate, p
}
