// Package permits loads building permits from county permit reports. The
// published PDFs are split into per-permit text blocks on a permit-number
// anchor, classified by keyword, and mined for fields with regexes; the
// same block logic serves rows scraped from the portal's report viewer.
package permits

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/stordev/sitescout/internal/sites"
)

// permitNumberRe anchors block splitting: county permit numbers are a
// short alpha prefix, the issue year, and a sequence number.
var permitNumberRe = regexp.MustCompile(`\b([A-Z]{2,4}\d{4}-\d{4,6})\b`)

// Field extraction patterns. Reports label fields inconsistently across
// vintages, so each pattern accepts the variants seen so far.
var (
	addressRe = regexp.MustCompile(`(?im)^[ \t]*(?:site[ \t]+)?(?:address|location)[ \t]*[:.][ \t]*(.+?)[ \t]*$`)
	ownerRe   = regexp.MustCompile(`(?im)^[ \t]*(?:owner|applicant)(?:[ \t]+name)?[ \t]*[:.][ \t]*(.+?)[ \t]*$`)
	valueRe   = regexp.MustCompile(`(?i)(?:declared[ \t]+value|valuation|est(?:imated)?\.?[ \t]+cost)[ \t]*[:.]?[ \t]*\$?[ \t]*([\d,]+(?:\.\d{1,2})?)`)
)

// A block mentioning any of these is a single-family permit no matter what
// else it says; subdivision blurbs routinely name townhome amenities next
// to detached lots.
var singleFamilyKeywords = []string{
	"single family",
	"single-family",
	"single fam res",
	"detached dwelling",
}

var multiUnitKeywords = []string{
	"apartment",
	"multi-family",
	"multifamily",
	"multi family",
	"condominium",
	"townhome",
	"townhouse",
	"duplex",
	"triplex",
	"senior living",
	"assisted living",
	"student housing",
	"mixed use",
	"mixed-use",
}

// developmentPatterns maps block text to known development names, first
// match wins. Maintained by the acquisitions team alongside the curated
// datasets.
var developmentPatterns = []struct {
	substring   string
	development string
}{
	{"great sky", "Great Sky"},
	{"soleil", "Soleil Laurel Canyon"},
	{"bridgemill", "BridgeMill"},
	{"harmony on the lakes", "Harmony on the Lakes"},
	{"towne mill", "Towne Mill"},
	{"riverstone", "Riverstone"},
	{"woodmont", "Woodmont"},
	{"lake arrowhead", "Lake Arrowhead"},
	{"holly springs town", "Holly Springs Town Center"},
	{"idylwilde", "Idylwilde"},
	{"horizon at laurel canyon", "Horizon at Laurel Canyon"},
}

// ParseReport splits extracted report text into permit blocks and parses
// each one. Blocks without a permit number never form; everything else
// parses best-effort, with missing fields left zero.
func ParseReport(text, county, state string, loadedAt time.Time) []sites.Permit {
	blocks := splitBlocks(text)
	permits := make([]sites.Permit, 0, len(blocks))
	for _, b := range blocks {
		permits = append(permits, parseBlock(b, county, state, loadedAt))
	}
	return permits
}

type block struct {
	number string
	text   string
}

// splitBlocks cuts the text at each permit-number anchor; a block runs to
// the next anchor or the end of the report.
func splitBlocks(text string) []block {
	matches := permitNumberRe.FindAllStringSubmatchIndex(text, -1)
	blocks := make([]block, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		blocks = append(blocks, block{
			number: text[m[2]:m[3]],
			text:   text[m[0]:end],
		})
	}
	return blocks
}

func parseBlock(b block, county, state string, loadedAt time.Time) sites.Permit {
	return sites.Permit{
		PermitNumber:   b.number,
		County:         county,
		State:          state,
		Address:        firstMatch(addressRe, b.text),
		Owner:          firstMatch(ownerRe, b.text),
		DeclaredValue:  parseValue(firstMatch(valueRe, b.text)),
		Classification: classifyBlock(b.text),
		Development:    developmentFor(b.text),
		LoadedAt:       loadedAt,
	}
}

// classifyBlock applies the keyword tables. Single-family exclusions are
// checked first and win ties.
func classifyBlock(text string) sites.PermitClass {
	lower := strings.ToLower(text)
	for _, kw := range singleFamilyKeywords {
		if strings.Contains(lower, kw) {
			return sites.PermitSingleFamily
		}
	}
	for _, kw := range multiUnitKeywords {
		if strings.Contains(lower, kw) {
			return sites.PermitMultiUnit
		}
	}
	return sites.PermitOther
}

func developmentFor(text string) string {
	lower := strings.ToLower(text)
	for _, p := range developmentPatterns {
		if strings.Contains(lower, p.substring) {
			return p.development
		}
	}
	return ""
}

func firstMatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func parseValue(raw string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
