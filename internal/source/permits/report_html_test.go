package permits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stordev/sitescout/internal/sites"
)

const reportPageFixture = `<!doctype html><html><body>
<table id="tblPermits">
<tr><th>County</th><th>Permit #</th><th>Address</th><th>Owner</th><th>Description</th><th>Value</th></tr>
<tr><td>Cherokee</td><td>BLD2024-00210</td><td>12 Riverstone Pkwy</td><td>Holt Homes</td><td>New single family residence</td><td>$389,900</td></tr>
<tr><td>Cobb</td><td>BLD2024-00211</td><td>400 Mill Ct</td><td>Parkside LP</td><td>Apartment building C</td><td>$4,100,000</td></tr>
<tr><td colspan="6">subtotal row, not a permit</td></tr>
<tr><td>Cobb</td><td>not-a-number</td><td>1 Elm</td><td>X</td><td>Shed</td><td>$1</td></tr>
</table>
</body></html>`

func TestParseReportPage(t *testing.T) {
	t.Parallel()

	loadedAt := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	permits, err := ParseReportPage(reportPageFixture, "GA", loadedAt)
	require.NoError(t, err)
	require.Len(t, permits, 2, "header, subtotal, and malformed rows are dropped")

	first := permits[0]
	assert.Equal(t, "BLD2024-00210", first.PermitNumber)
	assert.Equal(t, "Cherokee", first.County)
	assert.Equal(t, "GA", first.State)
	assert.Equal(t, "12 Riverstone Pkwy", first.Address)
	assert.Equal(t, "Holt Homes", first.Owner)
	assert.Equal(t, 389900.0, first.DeclaredValue)
	assert.Equal(t, sites.PermitSingleFamily, first.Classification)
	assert.Equal(t, "Riverstone", first.Development, "development comes from the address cell")

	second := permits[1]
	assert.Equal(t, "Cobb", second.County)
	assert.Equal(t, sites.PermitMultiUnit, second.Classification)
	assert.Equal(t, 4100000.0, second.DeclaredValue)
}

func TestParseReportPageNoTable(t *testing.T) {
	t.Parallel()

	permits, err := ParseReportPage("<html><body><p>no report</p></body></html>", "GA", time.Now())
	require.NoError(t, err)
	assert.Empty(t, permits)
}
