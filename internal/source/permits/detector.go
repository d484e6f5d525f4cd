package permits

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// Index pages that render their links client-side give themselves away:
// tiny bodies, postback plumbing, or no anchors at all.
const minIndexBytes = 512

var browserKeywords = [][]byte{
	[]byte("__dopostback"),
	[]byte("javascript is required"),
	[]byte("enable javascript"),
}

// NeedsBrowser reports whether a fetched index page is a script shell that
// must be driven by the headless portal instead of parsed directly.
func NeedsBrowser(body []byte) bool {
	if len(body) < minIndexBytes {
		return true
	}
	lower := bytes.ToLower(body)
	for _, kw := range browserKeywords {
		if bytes.Contains(lower, kw) {
			return true
		}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return true
	}
	return doc.Find("a[href]").Length() == 0
}
