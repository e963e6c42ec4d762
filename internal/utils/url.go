package utils

import (
	"strconv"
	"strings"
	"time"
)

// now is swapped in tests
var now = time.Now

// AddCacheBypass inserts a t=<timestamp> query parameter so the page cache
// serves a fresh copy after a write. Any fragment stays at the end.
func AddCacheBypass(url string) string {
	fragment := ""
	if i := strings.Index(url, "#"); i >= 0 {
		url, fragment = url[:i], url[i:]
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "t=" + strconv.FormatInt(now().UnixMicro(), 10) + fragment
}

// StripFragment drops everything from the first '#'.
func StripFragment(url string) string {
	if i := strings.Index(url, "#"); i >= 0 {
		return url[:i]
	}
	return url
}

// SafeRedirect only allows site-relative paths, falling back to "/".
func SafeRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
