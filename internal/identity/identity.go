// Package identity assigns article fingerprints and cleans candidate links.
package identity

import (
	"crypto/md5" //nolint:gosec // fingerprint, not a security boundary
	"encoding/hex"
	"net/url"
	"strings"
)

// Fingerprint derives the article identity from its title and URL.
// Content and timestamps never participate.
func Fingerprint(title, link string) string {
	sum := md5.Sum([]byte(title + link)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

// ResolveLink turns an href found on base into an absolute URL.
// It returns "" when the href cannot be resolved.
func ResolveLink(href, base string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "", strings.HasPrefix(href, "#"):
		return ""
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return ""
		}
		return u.Scheme + "://" + u.Host + href
	default:
		baseURL, err := url.Parse(base)
		if err != nil {
			return ""
		}
		ref, err := url.Parse(href)
		if err != nil {
			return ""
		}
		resolved := baseURL.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return ""
		}
		return resolved.String()
	}
}
