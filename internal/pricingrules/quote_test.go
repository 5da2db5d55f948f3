package pricingrules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRuleSet() *RuleSet {
	return &RuleSet{
		Discounts: []DiscountRule{
			{ID: 1, MinQuantity: 100, Percent: 10, Active: true},
			{ID: 2, MinQuantity: 500, Percent: 20, Active: true},
			{ID: 3, MinQuantity: 10, Percent: 50, Active: false},
		},
		Combinations: []ServiceCombination{
			{ID: 1, Color: "bw", Paper: "A4", Quality: "standard", Side: "single", RatePerPage: 2, GSTPercent: 18, Active: true},
			{ID: 2, Color: "color", Paper: "A4", Quality: "standard", Side: "single", RatePerPage: 10, GSTPercent: 18, Active: true},
			{ID: 3, Color: "bw", Paper: "A4", Quality: "premium", Side: "double", RatePerPage: 3, Active: false},
		},
		Bindings: []BindingOption{
			{ID: 1, Type: "spiral", Rate: 40, Active: true},
			{ID: 2, Type: "hardcover", Rate: 150, Active: false},
		},
	}
}

func TestBuildQuoteSingleJob(t *testing.T) {
	quote, err := buildQuote(testRuleSet(), QuoteRequest{
		Jobs: []JobSpec{
			{Color: "bw", Paper: "A4", Quality: "standard", Side: "single", Pages: 10, Copies: 1},
		},
		DeliveryFee: 30,
	})
	require.NoError(t, err)
	require.Len(t, quote.Lines, 1)

	assert.Equal(t, 20.0, quote.Amounts.Subtotal)
	assert.Equal(t, 0.0, quote.Amounts.Discount)
	// Inter-state order carries IGST only.
	assert.Equal(t, 3.6, quote.Amounts.IGST)
	assert.Equal(t, 0.0, quote.Amounts.CGST)
	assert.Equal(t, 30.0, quote.Amounts.Delivery)
	// 20 + 3.6 + 30 = 53.6 -> 54
	assert.Equal(t, int64(54), quote.GrandTotal)
}

func TestBuildQuoteIntraStateSplitsTax(t *testing.T) {
	quote, err := buildQuote(testRuleSet(), QuoteRequest{
		Jobs: []JobSpec{
			{Color: "bw", Paper: "A4", Quality: "standard", Side: "single", Pages: 50, Copies: 1},
		},
		IntraState: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 9.0, quote.Amounts.CGST)
	assert.Equal(t, 9.0, quote.Amounts.SGST)
	assert.Equal(t, 0.0, quote.Amounts.IGST)
	assert.Equal(t, int64(118), quote.GrandTotal)
}

func TestBuildQuoteAppliesBestDiscountRule(t *testing.T) {
	quote, err := buildQuote(testRuleSet(), QuoteRequest{
		Jobs: []JobSpec{
			{Color: "bw", Paper: "A4", Quality: "standard", Side: "single", Pages: 250, Copies: 2},
		},
	})
	require.NoError(t, err)
	// 500 pages meets the 20% threshold; the inactive 50% rule is ignored.
	assert.Equal(t, 1000.0, quote.Amounts.Subtotal)
	assert.Equal(t, 200.0, quote.Amounts.Discount)
	require.Len(t, quote.Lines, 1)
	assert.Equal(t, 200.0, quote.Lines[0].Discount)
	assert.Equal(t, 800.0, quote.Lines[0].Total)
}

func TestBuildQuoteBindingLine(t *testing.T) {
	quote, err := buildQuote(testRuleSet(), QuoteRequest{
		Jobs: []JobSpec{
			{Color: "color", Paper: "A4", Quality: "standard", Side: "single", Binding: "spiral", Pages: 5, Copies: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, quote.Lines, 2)
	assert.Equal(t, "Binding: spiral", quote.Lines[1].Description)
	assert.Equal(t, 80.0, quote.Lines[1].Amount)
	assert.Equal(t, 180.0, quote.Amounts.Subtotal)
}

func TestBuildQuoteUnknownCombination(t *testing.T) {
	_, err := buildQuote(testRuleSet(), QuoteRequest{
		Jobs: []JobSpec{
			{Color: "color", Paper: "A3", Quality: "standard", Side: "single", Pages: 1},
		},
	})
	assert.ErrorIs(t, err, ErrNoCombination)
}

func TestBuildQuoteInactiveCombinationNotMatched(t *testing.T) {
	_, err := buildQuote(testRuleSet(), QuoteRequest{
		Jobs: []JobSpec{
			{Color: "bw", Paper: "A4", Quality: "premium", Side: "double", Pages: 1},
		},
	})
	assert.ErrorIs(t, err, ErrNoCombination)
}

func TestBuildQuoteUnknownBinding(t *testing.T) {
	_, err := buildQuote(testRuleSet(), QuoteRequest{
		Jobs: []JobSpec{
			{Color: "bw", Paper: "A4", Quality: "standard", Side: "single", Binding: "hardcover", Pages: 1},
		},
	})
	assert.ErrorIs(t, err, ErrUnknownBinding)
}

func TestBuildQuoteLineTotalsReconcile(t *testing.T) {
	quote, err := buildQuote(testRuleSet(), QuoteRequest{
		Jobs: []JobSpec{
			{Color: "bw", Paper: "A4", Quality: "standard", Side: "single", Pages: 80, Copies: 1},
			{Color: "color", Paper: "A4", Quality: "standard", Side: "single", Binding: "spiral", Pages: 40, Copies: 1},
		},
	})
	require.NoError(t, err)

	var lineSum float64
	for _, line := range quote.Lines {
		lineSum += line.Total
	}
	assert.InDelta(t, quote.Amounts.Subtotal-quote.Amounts.Discount, lineSum, 0.0001)
}
