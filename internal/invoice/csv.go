package invoice

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lipiprint/lipiprint/internal/orders"
)

// WriteCSV exports the order breakdown as CSV, one row per priced line plus
// summary rows. The same fallback rules as the HTML invoice apply.
func WriteCSV(w io.Writer, o *orders.Order) error {
	if o == nil {
		return ErrNilOrder
	}
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"invoice", "description", "options", "quantity", "rate", "amount", "discount", "total"}); err != nil {
		return err
	}

	num := Number(o.ID)
	if len(o.Breakdown) > 0 {
		for _, item := range o.Breakdown {
			row := []string{
				num,
				item.Description,
				item.PrintOptions,
				strconv.FormatFloat(item.Quantity, 'f', -1, 64),
				strconv.FormatFloat(item.Rate, 'f', 2, 64),
				strconv.FormatFloat(item.Amount, 'f', 2, 64),
				strconv.FormatFloat(item.Discount, 'f', 2, 64),
				strconv.FormatFloat(item.Total, 'f', 2, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	} else {
		for _, job := range o.PrintJobs {
			row := []string{
				num,
				job.FileName,
				orders.ParsePrintOptions(job.Options).Summary(),
				strconv.Itoa(job.Pages * max(job.Copies, 1)),
				"", "", "", "",
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	summary := [][]string{
		{num, "Subtotal", "", "", "", "", "", strconv.FormatFloat(o.Subtotal, 'f', 2, 64)},
		{num, "Discount", "", "", "", "", "", strconv.FormatFloat(o.Discount, 'f', 2, 64)},
		{num, "Delivery", "", "", "", "", "", strconv.FormatFloat(o.DeliveryFee, 'f', 2, 64)},
		{num, "Grand Total", "", "", "", "", "", fmt.Sprintf("%d", grandTotal(o))},
	}
	for _, row := range summary {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
