package permits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stordev/sitescout/internal/sites"
)

// reportFixture mimics extracted PDF text: ragged labels, three permits.
const reportFixture = `CHEROKEE COUNTY BUILDING PERMITS - WEEKLY REPORT

BLD2024-00101
Site Address: 120 Great Sky Dr
Owner: Smith Custom Homes LLC
Description: New single family residence, two story
Declared Value: $425,000.00

BLD2024-00102
Address: 88 Towne Mill Ave
Applicant: Vista Residential LP
Description: Townhome building B, 6 units
Valuation: 1,250,000

SWR2024-0377
Location: 45 Industrial Ct
Owner: Canton Sewer Authority
Description: Sewer line extension
Est. Cost: $98,500
`

func TestParseReportSplitsOnPermitNumbers(t *testing.T) {
	t.Parallel()

	loadedAt := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	permits := ParseReport(reportFixture, "Cherokee", "GA", loadedAt)
	require.Len(t, permits, 3)

	first := permits[0]
	assert.Equal(t, "BLD2024-00101", first.PermitNumber)
	assert.Equal(t, "Cherokee", first.County)
	assert.Equal(t, "GA", first.State)
	assert.Equal(t, "120 Great Sky Dr", first.Address)
	assert.Equal(t, "Smith Custom Homes LLC", first.Owner)
	assert.Equal(t, 425000.0, first.DeclaredValue)
	assert.Equal(t, sites.PermitSingleFamily, first.Classification)
	assert.Equal(t, "Great Sky", first.Development)
	assert.Equal(t, loadedAt, first.LoadedAt)

	second := permits[1]
	assert.Equal(t, "BLD2024-00102", second.PermitNumber)
	assert.Equal(t, "88 Towne Mill Ave", second.Address)
	assert.Equal(t, "Vista Residential LP", second.Owner)
	assert.Equal(t, 1250000.0, second.DeclaredValue)
	assert.Equal(t, sites.PermitMultiUnit, second.Classification)
	assert.Equal(t, "Towne Mill", second.Development)

	third := permits[2]
	assert.Equal(t, "SWR2024-0377", third.PermitNumber)
	assert.Equal(t, sites.PermitOther, third.Classification)
	assert.Equal(t, 98500.0, third.DeclaredValue)
	assert.Equal(t, "", third.Development)
}

func TestParseReportNoAnchorsNoPermits(t *testing.T) {
	t.Parallel()

	permits := ParseReport("WEEKLY REPORT\nNothing issued this period.\n", "Cherokee", "GA", time.Now())
	assert.Empty(t, permits)
}

func TestClassifyBlockSingleFamilyExclusionWins(t *testing.T) {
	t.Parallel()

	// Both forms in one block: the exclusion takes precedence and the
	// block never counts as multi-unit.
	block := "New single family residence in a townhouse-style community"
	assert.Equal(t, sites.PermitSingleFamily, classifyBlock(block))

	assert.Equal(t, sites.PermitMultiUnit, classifyBlock("APARTMENT COMPLEX PHASE 2"))
	assert.Equal(t, sites.PermitMultiUnit, classifyBlock("Mixed-use podium over retail"))
	assert.Equal(t, sites.PermitSingleFamily, classifyBlock("SINGLE FAM RES W/ DETACHED GARAGE"))
	assert.Equal(t, sites.PermitOther, classifyBlock("Cell tower equipment upgrade"))
}

func TestDevelopmentForFirstMatchWins(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Soleil Laurel Canyon", developmentFor("101 SOLEIL BLVD"))
	assert.Equal(t, "Great Sky", developmentFor("lot 44 great sky phase 3, horizon at laurel canyon office"))
	assert.Equal(t, "", developmentFor("500 Main St"))
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 425000.0, parseValue("$425,000.00"))
	assert.Equal(t, 98500.5, parseValue("98,500.50"))
	assert.Equal(t, 1200.0, parseValue("$ 1,200"))
	assert.Zero(t, parseValue(""))
	assert.Zero(t, parseValue("TBD"))
}

func TestSplitBlocksKeepsAnchorsInOrder(t *testing.T) {
	t.Parallel()

	blocks := splitBlocks("x BLD2024-0001 aaa POOL2024-0002 bbb")
	require.Len(t, blocks, 2)
	assert.Equal(t, "BLD2024-0001", blocks[0].number)
	assert.Contains(t, blocks[0].text, "aaa")
	assert.NotContains(t, blocks[0].text, "bbb")
	assert.Equal(t, "POOL2024-0002", blocks[1].number)
}
