package permits

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/stordev/sitescout/internal/sites"
)

// The viewer renders County, Permit #, Address, Owner, Description, and
// Declared Value columns in that order.
const reportColumns = 6

// ParseReportPage mines one viewer page. Classification and development
// grouping reuse the PDF rules, applied to the description and address
// cells; rows without a well-formed permit number are dropped.
func ParseReportPage(html, state string, loadedAt time.Time) ([]sites.Permit, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse report page: %w", err)
	}

	var permits []sites.Permit
	doc.Find(reportTable + " tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < reportColumns {
			return
		}
		cell := func(i int) string {
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		number := cell(1)
		if !permitNumberRe.MatchString(number) {
			return
		}
		description := cell(4)
		address := cell(2)

		permits = append(permits, sites.Permit{
			PermitNumber:   number,
			County:         cell(0),
			State:          state,
			Address:        address,
			Owner:          cell(3),
			DeclaredValue:  parseValue(cell(5)),
			Classification: classifyBlock(description),
			Development:    developmentFor(address + " " + description),
			LoadedAt:       loadedAt,
		})
	})
	return permits, nil
}
