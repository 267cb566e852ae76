// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the scrubber applied by Logger to query strings and request
// headers before they reach the access log. It never sees bodies.
package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

var (
	// UUIDs go first so the phone pattern cannot eat their digit groups.
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// alwaysMasked headers are replaced wholesale regardless of options.
var alwaysMasked = []string{"authorization", "cookie", "set-cookie"}

// redactor scrubs PII-looking values and masks sensitive headers.
type redactor struct {
	masked map[string]struct{}
}

func newRedactor(extraMasked []string) *redactor {
	m := make(map[string]struct{}, len(alwaysMasked)+len(extraMasked))
	for _, h := range alwaysMasked {
		m[h] = struct{}{}
	}
	for _, h := range extraMasked {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			m[h] = struct{}{}
		}
	}
	return &redactor{masked: m}
}

// scrub replaces ids, emails and phone numbers in s.
func (r *redactor) scrub(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// headers flattens h, masking sensitive names and scrubbing the rest.
func (r *redactor) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.masked[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.scrub(strings.Join(vv, ", "))
	}
	return out
}
