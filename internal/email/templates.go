package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderItem represents an item in an order for email purposes
type OrderItem struct {
	DishID   string
	Name     string
	Quantity int
	Price    float64
}

// StatusUpdate is the content of a status change email.
type StatusUpdate struct {
	OrderID         string
	Status          string
	Headline        string
	Detail          string
	Note            string
	ProgressPercent int
}

const footer = `
		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This is an automated message from TasteSphere. Reply to reach support.
		</p>
	</div>
</body>
</html>`

func header(title string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #f97316 0%%, #dc2626 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">%s</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">`, html.EscapeString(title))
}

func orderBox(orderID string) string {
	return fmt.Sprintf(`
		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>`, html.EscapeString(orderID))
}

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(orderID string, total float64, items []OrderItem) string {
	var itemsHTML strings.Builder
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.DishID
		}
		fmt.Fprintf(&itemsHTML,
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">₹%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">₹%s</td>
			</tr>`,
			html.EscapeString(name),
			item.Quantity,
			FormatAmount(item.Price),
			FormatAmount(item.Price*float64(item.Quantity)),
		)
	}

	var b strings.Builder
	b.WriteString(header("Thank you for your order"))
	b.WriteString(`
		<p style="margin-top: 0;">Your order has been sent to the kitchen. We will let you know as soon as the seller accepts it.</p>`)
	b.WriteString(orderBox(orderID))
	fmt.Fprintf(&b, `
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Dish</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Price</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Total</span>
			<span style="font-size: 24px; font-weight: bold; color: #dc2626; margin-left: 10px;">₹%s</span>
		</div>`, itemsHTML.String(), FormatAmount(total))
	b.WriteString(footer)
	return b.String()
}

// BuildStatusUpdateBody builds the HTML body for a status change email.
func BuildStatusUpdateBody(u StatusUpdate) string {
	var b strings.Builder
	b.WriteString(header(u.Headline))
	fmt.Fprintf(&b, `
		<p style="margin-top: 0;">%s</p>`, html.EscapeString(u.Detail))
	b.WriteString(orderBox(u.OrderID))
	if u.ProgressPercent > 0 {
		fmt.Fprintf(&b, `
		<div style="background: #eee; border-radius: 5px; height: 10px; margin: 20px 0;">
			<div style="background: #f97316; border-radius: 5px; height: 10px; width: %d%%;"></div>
		</div>`, u.ProgressPercent)
	}
	if u.Note != "" {
		fmt.Fprintf(&b, `
		<p style="font-size: 14px; color: #666;">Note: %s</p>`, html.EscapeString(u.Note))
	}
	b.WriteString(footer)
	return b.String()
}

// FormatAmount renders an amount with two decimals and thousands separators.
func FormatAmount(amount float64) string {
	fixed := decimal.NewFromFloat(amount).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + groupThousands(whole) + "." + frac
}

// groupThousands inserts comma separators into a string of digits.
func groupThousands(str string) string {
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	remainder := len(str) % 3
	if remainder > 0 {
		result.WriteString(str[:remainder])
		result.WriteString(",")
	}

	for i := remainder; i < len(str); i += 3 {
		result.WriteString(str[i : i+3])
		if i+3 < len(str) {
			result.WriteString(",")
		}
	}

	return result.String()
}
