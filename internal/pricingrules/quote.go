package pricingrules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lipiprint/lipiprint/internal/pricing"
)

// HSN code for printed matter, stamped on every quote line.
const hsnPrintedMatter = "4911"

// DefaultGSTPercent applies when a service combination carries no override.
const DefaultGSTPercent = 18.0

var (
	// ErrNoCombination indicates no active rate matches the requested options.
	ErrNoCombination = errors.New("pricingrules: no matching service combination")
	// ErrUnknownBinding indicates the requested binding type is not configured.
	ErrUnknownBinding = errors.New("pricingrules: unknown binding option")
)

// QuoteLine is one priced position of a quote.
type QuoteLine struct {
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	HSN          string  `json:"hsn"`
	Rate         float64 `json:"rate"`
	Amount       float64 `json:"amount"`
	Discount     float64 `json:"discount"`
	Total        float64 `json:"total"`
	PrintOptions string  `json:"print_options"`
}

// Quote is the priced result for a set of print jobs.
type Quote struct {
	Lines      []QuoteLine          `json:"lines"`
	Amounts    pricing.OrderAmounts `json:"amounts"`
	GrandTotal int64                `json:"grand_total"`
}

// buildQuote prices the jobs against a rule set snapshot. The discount from
// the best matching rule is distributed over the lines proportionally to
// their amounts so the line totals reconcile with the order totals.
func buildQuote(rs *RuleSet, req QuoteRequest) (*Quote, error) {
	if rs == nil {
		return nil, errors.New("pricingrules: rule set required")
	}

	var (
		lines         []QuoteLine
		subtotal      float64
		totalPages    int
		gstPercent    float64
		gstPercentSet bool
	)

	for _, job := range req.Jobs {
		comb := matchCombination(rs.Combinations, job)
		if comb == nil {
			return nil, fmt.Errorf("%w: %s/%s/%s/%s", ErrNoCombination, job.Color, job.Paper, job.Quality, job.Side)
		}
		copies := job.Copies
		if copies < 1 {
			copies = 1
		}
		quantity := float64(job.Pages * copies)
		amount := comb.RatePerPage * quantity
		description := job.Description
		if description == "" {
			description = fmt.Sprintf("Printing %s %s (%s, %s)", job.Color, job.Paper, job.Quality, job.Side)
		}
		lines = append(lines, QuoteLine{
			Description:  description,
			Quantity:     quantity,
			HSN:          hsnPrintedMatter,
			Rate:         comb.RatePerPage,
			Amount:       amount,
			Total:        amount,
			PrintOptions: optionsText(job),
		})
		subtotal += amount
		totalPages += job.Pages * copies
		if !gstPercentSet || comb.GSTPercent > gstPercent {
			gstPercent = comb.GSTPercent
			gstPercentSet = true
		}

		if job.Binding != "" {
			binding := matchBinding(rs.Bindings, job.Binding)
			if binding == nil {
				return nil, fmt.Errorf("%w: %s", ErrUnknownBinding, job.Binding)
			}
			bindingAmount := binding.Rate * float64(copies)
			lines = append(lines, QuoteLine{
				Description: fmt.Sprintf("Binding: %s", binding.Type),
				Quantity:    float64(copies),
				HSN:         hsnPrintedMatter,
				Rate:        binding.Rate,
				Amount:      bindingAmount,
				Total:       bindingAmount,
			})
			subtotal += bindingAmount
		}
	}

	if gstPercent == 0 {
		gstPercent = DefaultGSTPercent
	}

	discount := resolveDiscount(rs.Discounts, totalPages, subtotal)
	if discount > subtotal {
		discount = subtotal
	}
	distributeDiscount(lines, subtotal, discount)

	taxable := subtotal - discount
	tax := taxable * gstPercent / 100

	amounts := pricing.OrderAmounts{
		Subtotal: subtotal,
		Discount: discount,
		Delivery: req.DeliveryFee,
	}
	if req.IntraState {
		amounts.CGST = tax / 2
		amounts.SGST = tax / 2
	} else {
		amounts.IGST = tax
	}
	amounts.GrandTotal = float64(pricing.CalculateRoundedTotal(amounts))

	return &Quote{
		Lines:      lines,
		Amounts:    amounts,
		GrandTotal: pricing.CalculateRoundedTotal(amounts),
	}, nil
}

func matchCombination(combinations []ServiceCombination, job JobSpec) *ServiceCombination {
	for i := range combinations {
		c := &combinations[i]
		if !c.Active {
			continue
		}
		if strings.EqualFold(c.Color, job.Color) &&
			strings.EqualFold(c.Paper, job.Paper) &&
			strings.EqualFold(c.Quality, job.Quality) &&
			strings.EqualFold(c.Side, job.Side) {
			return c
		}
	}
	return nil
}

func matchBinding(bindings []BindingOption, bindingType string) *BindingOption {
	for i := range bindings {
		b := &bindings[i]
		if b.Active && strings.EqualFold(b.Type, bindingType) {
			return b
		}
	}
	return nil
}

// resolveDiscount picks the rule with the highest satisfied threshold.
func resolveDiscount(rules []DiscountRule, totalPages int, subtotal float64) float64 {
	var best *DiscountRule
	for i := range rules {
		rule := &rules[i]
		if !rule.Active || totalPages < rule.MinQuantity {
			continue
		}
		if best == nil || rule.MinQuantity > best.MinQuantity {
			best = rule
		}
	}
	if best == nil {
		return 0
	}
	return subtotal*best.Percent/100 + best.Amount
}

// distributeDiscount spreads the order discount over lines by amount share.
func distributeDiscount(lines []QuoteLine, subtotal, discount float64) {
	if discount <= 0 || subtotal <= 0 {
		return
	}
	for i := range lines {
		share := discount * lines[i].Amount / subtotal
		lines[i].Discount = share
		lines[i].Total = lines[i].Amount - share
	}
}

func optionsText(job JobSpec) string {
	parts := []string{job.Color, job.Paper, job.Quality, job.Side}
	if job.Binding != "" {
		parts = append(parts, job.Binding)
	}
	return strings.Join(parts, ", ")
}
