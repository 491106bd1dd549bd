// Package webstore recognizes extension store URLs and rewrites them into a
// single canonical form per store.
package webstore

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/garunski/extension-conductor/pkg/framework/extensions"
)

const (
	chromeDetailBase = "https://chrome.google.com/webstore/detail/"
	edgeDetailBase   = "https://microsoftedge.microsoft.com/addons/detail/"
	firefoxAddonBase = "https://addons.mozilla.org/firefox/addon/"
	operaDetailBase  = "https://addons.opera.com/extensions/details/"

	crxUpdateURL = "https://clients2.google.com/service/update2/crx"

	// DefaultProdVersion is sent to the update service when the caller has
	// no browser version of its own.
	DefaultProdVersion = "120.0.0.0"
)

var (
	chromeIDRegex = regexp.MustCompile(`^[a-p]{32}$`)
	edgeIDRegex   = regexp.MustCompile(`^[a-z]{32}$`)
	slugRegex     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._~%-]*$`)
	localeRegex   = regexp.MustCompile(`^[a-z]{2}(-[A-Za-z]{2,4})?$`)
)

// Match is a recognized store listing.
type Match struct {
	Kind     extensions.Kind
	ID       string // extension id (chrome, edge) or listing slug (firefox, opera)
	StoreURL string // canonical listing URL
}

// Normalize returns the canonical listing for raw, or false when raw is not
// a store listing this package knows.
func Normalize(raw string) (Match, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Match{}, false
	}

	if chromeIDRegex.MatchString(raw) {
		return chromeMatch(raw), true
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Match{}, false
	}

	segments := pathSegments(u.Path)
	switch strings.ToLower(u.Hostname()) {
	case "chrome.google.com":
		if len(segments) >= 3 && segments[0] == "webstore" && segments[1] == "detail" {
			if id := last(segments); chromeIDRegex.MatchString(id) {
				return chromeMatch(id), true
			}
		}
	case "chromewebstore.google.com":
		if len(segments) >= 2 && segments[0] == "detail" {
			if id := last(segments); chromeIDRegex.MatchString(id) {
				return chromeMatch(id), true
			}
		}
	case "microsoftedge.microsoft.com":
		if len(segments) >= 3 && segments[0] == "addons" && segments[1] == "detail" {
			if id := last(segments); edgeIDRegex.MatchString(id) {
				return Match{Kind: extensions.KindEdge, ID: id, StoreURL: edgeDetailBase + id}, true
			}
		}
	case "addons.mozilla.org":
		segments = dropLocale(segments)
		if len(segments) == 3 && segments[0] == "firefox" && segments[1] == "addon" && slugRegex.MatchString(segments[2]) {
			return Match{Kind: extensions.KindFirefox, ID: segments[2], StoreURL: firefoxAddonBase + segments[2] + "/"}, true
		}
	case "addons.opera.com":
		segments = dropLocale(segments)
		if len(segments) == 3 && segments[0] == "extensions" && segments[1] == "details" && slugRegex.MatchString(segments[2]) {
			return Match{Kind: extensions.KindOpera, ID: segments[2], StoreURL: operaDetailBase + segments[2] + "/"}, true
		}
	}

	return Match{}, false
}

// NormalizeURL is Normalize reduced to the canonical URL, "" when raw does
// not match.
func NormalizeURL(raw string) string {
	m, ok := Normalize(raw)
	if !ok {
		return ""
	}
	return m.StoreURL
}

// CRXURL returns the update-service URL that redirects to the packed
// extension for a Chrome Web Store id.
func CRXURL(id, prodVersion string) (string, bool) {
	if !chromeIDRegex.MatchString(id) {
		return "", false
	}
	if prodVersion == "" {
		prodVersion = DefaultProdVersion
	}

	q := url.Values{}
	q.Set("response", "redirect")
	q.Set("prodversion", prodVersion)
	q.Set("acceptformat", "crx2,crx3")
	q.Set("x", "id="+id+"&uc")
	return crxUpdateURL + "?" + q.Encode(), true
}

func chromeMatch(id string) Match {
	return Match{Kind: extensions.KindChrome, ID: id, StoreURL: chromeDetailBase + id}
}

func pathSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dropLocale(segments []string) []string {
	if len(segments) > 0 && localeRegex.MatchString(segments[0]) {
		return segments[1:]
	}
	return segments
}

func last(segments []string) string {
	return segments[len(segments)-1]
}
