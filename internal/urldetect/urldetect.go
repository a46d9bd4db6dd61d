// Package urldetect extracts the local URL a dev server announces on its
// output. Patterns are tried in a fixed priority order; the first match
// wins. That order is part of the package contract because several
// patterns can match the same banner.
package urldetect

import (
	"regexp"
	"strings"
)

// ansiEscape matches CSI sequences plus the short two-byte escapes that
// terminal-colored tool output interleaves with text.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b[@-Z\\-_]`)

// Priority order, highest first:
//  1. labeled "Local:" / "Network:" banners (vite, CRA, astro, ...)
//  2. generic "running/listening/server/app ... on|at <url>" phrasing
//  3. bare scheme://host:port for loopback-style hosts only
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Local|Network):\s+(https?://\S+)`),
	regexp.MustCompile(`(?i)(?:running|listening|server|app|started)[^\n]*?\s(?:on|at):?\s+(https?://\S+)`),
	regexp.MustCompile(`(https?://(?:localhost|127\.0\.0\.1|0\.0\.0\.0|\[::1\])(?::\d{1,5})(?:/\S*)?)`),
}

// Detect returns the first URL recognized in chunk. Chunks arrive from a
// streaming subprocess, so a banner may be split across chunks; callers
// simply keep feeding chunks until a match latches.
func Detect(chunk string) (string, bool) {
	clean := ansiEscape.ReplaceAllString(chunk, "")
	for _, re := range patterns {
		if m := re.FindStringSubmatch(clean); m != nil {
			return trimURL(m[1]), true
		}
	}
	return "", false
}

// trimURL drops the trailing punctuation that banner text tends to glue
// onto the address.
func trimURL(u string) string {
	return strings.TrimRight(u, `.,;:!?'")]`)
}
