package delay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_Empty(t *testing.T) {
	for _, items := range [][]Item{nil, {}, {{SequenceNo: 1, Designation: "DRM/JU", Date: "not a date"}}} {
		res := Calculate(items, "01/01/2024", "")
		assert.Equal(t, Metrics{}, res.Metrics)
		assert.Equal(t, Markers{}, res.Markers)
	}
}

func TestCalculate_TotalCycleUsesFirstOfFirstAndLastOfLast(t *testing.T) {
	items := []Item{
		{SequenceNo: 5, Designation: "CCM/NWR", Date: "12/01/2024"},
		{SequenceNo: 1, Designation: "SDEE/JU", Date: "02/01/2024"},
		{SequenceNo: 5, Designation: "CEPD/NWR", Date: "10/01/2024"},
		{SequenceNo: 1, Designation: "SR DCM/JU", Date: "01/01/2024"},
	}
	res := Calculate(items, "", "")

	assert.Equal(t, 11, res.TotalCycleDays)
	require.NotNil(t, res.Markers.FirstDesignationAt)
	require.NotNil(t, res.Markers.LastDesignationAt)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", *res.Markers.FirstDesignationAt)
	assert.Equal(t, "2024-01-12T00:00:00.000Z", *res.Markers.LastDesignationAt)
	assert.Nil(t, res.Markers.ApprovalAt)
	assert.Zero(t, res.ExecutiveDelayDays)
}

func TestCalculate_SameSequenceOrderedByTime(t *testing.T) {
	items := []Item{
		{SequenceNo: 2, Designation: "A", Date: "03/01/2024", Time: "09:00"},
		{SequenceNo: 2, Designation: "B", Date: "03/01/2024", Time: "08:00"},
		{SequenceNo: 2, Designation: "C", Date: "04/01/2024", Time: "01:00 AM"},
	}
	res := Calculate(items, "", "")
	assert.Equal(t, "2024-01-03T08:00:00.000Z", *res.Markers.FirstDesignationAt)
	assert.Equal(t, "2024-01-04T01:00:00.000Z", *res.Markers.LastDesignationAt)
	assert.Equal(t, 1, res.TotalCycleDays)
}

func TestCalculate_ExecutiveDelay(t *testing.T) {
	items := []Item{{SequenceNo: 1, Designation: "SR DFM/JU", Date: "05/01/2024", Time: "10:00:00"}}

	res := Calculate(items, "2024-01-01", "")
	assert.Equal(t, 4, res.ExecutiveDelayDays)
	require.NotNil(t, res.Markers.ApprovalAt)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", *res.Markers.ApprovalAt)

	// approval after the first action cannot produce a negative delay
	res = Calculate(items, "09/01/2024", "11:00")
	assert.Zero(t, res.ExecutiveDelayDays)
}

func TestCalculate_FinanceDelayUsesLatestOfEachRole(t *testing.T) {
	items := []Item{
		{SequenceNo: 1, Designation: "SR. DFM/JU", ActionDate: "2024-02-01"},
		{SequenceNo: 2, Designation: "DRM/JU", ActionDate: "2024-02-03"},
		{SequenceNo: 3, Designation: "Sr DFM (Fin)/JU", ActionDate: "2024-02-10"},
		{SequenceNo: 4, Designation: "DRM", ActionDate: "2024-02-06"},
	}
	res := Calculate(items, "", "")

	assert.Equal(t, 4, res.FinanceDelayDays, "|10 Feb - 6 Feb|")
	assert.Equal(t, "2024-02-06T00:00:00.000Z", *res.Markers.FinanceStageAStart)
	assert.Equal(t, "2024-02-10T00:00:00.000Z", *res.Markers.FinanceStageBEnd)

	onlyOne := Calculate(items[:1], "", "")
	assert.Zero(t, onlyOne.FinanceDelayDays)
	assert.Nil(t, onlyOne.Markers.FinanceStageAStart)
}

func TestCalculate_HQDelay(t *testing.T) {
	items := []Item{
		{SequenceNo: 1, Designation: "SDEE/JU", Date: "01/03/2024"},
		{SequenceNo: 2, Designation: "CEPD", Department: "nwr", Date: "04/03/2024"},
		{SequenceNo: 3, Designation: "CCM/NWR", Date: "06/03/2024"},
		// same day as the last stage: excluded
		{SequenceNo: 4, Designation: "CE/NWR", Date: "09/03/2024", Time: "08:00"},
		{SequenceNo: 5, Designation: "GM/NWR", Date: "09/03/2024", Time: "17:00"},
	}
	res := Calculate(items, "", "")

	assert.Equal(t, 3, res.HQDelayDays)
	assert.Equal(t, "2024-03-06T00:00:00.000Z", *res.Markers.HQStageStart)
	assert.Equal(t, 8, res.TotalCycleDays)
}

func TestCalculate_HQDelayRequiresEarlierSequence(t *testing.T) {
	items := []Item{
		{SequenceNo: 1, Designation: "SDEE/JU", Date: "01/03/2024"},
		{SequenceNo: 2, Designation: "CCM/NWR", Date: "02/03/2024"},
		{SequenceNo: 2, Designation: "CE/JU", Date: "05/03/2024"},
	}
	res := Calculate(items, "", "")

	assert.Zero(t, res.HQDelayDays)
	assert.Nil(t, res.Markers.HQStageStart)
}

func TestCalculate_SkipsUnparseableItems(t *testing.T) {
	items := []Item{
		{SequenceNo: 1, Designation: "SDEE/JU", Date: "n/a"},
		{SequenceNo: 2, Designation: "SR DCM/JU", Date: "02/01/2024", Time: "n/a"},
		{SequenceNo: 3, Designation: "DRM/JU", Date: "07/01/2024", Time: "3:15 PM"},
	}
	res := Calculate(items, "", "")

	assert.Equal(t, 5, res.TotalCycleDays)
	assert.Equal(t, "2024-01-02T00:00:00.000Z", *res.Markers.FirstDesignationAt)
	assert.Equal(t, "2024-01-07T15:15:00.000Z", *res.Markers.LastDesignationAt)
}
