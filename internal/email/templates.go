package email

import (
	"fmt"
	"html"
	"strings"
)

// OrderItem represents an item in an order for email purposes
type OrderItem struct {
	Name  string
	Qty   int
	Price float64
}

// OrderSummary is what the notification templates render.
type OrderSummary struct {
	OrderID      string
	CustomerName string
	Items        []OrderItem
	TotalPrice   float64
	ShipTo       string
}

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(order OrderSummary) string {
	var itemsHTML strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&itemsHTML,
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">$%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">$%s</td>
			</tr>`,
			html.EscapeString(item.Name),
			item.Qty,
			formatPrice(item.Price),
			formatPrice(item.Price*float64(item.Qty)),
		)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 24px;">Thank you for your order, %s</h1>

	<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
		<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
		<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
	</div>

	<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="background: #f8f9fa;">
				<th style="padding: 12px; text-align: left;">Item</th>
				<th style="padding: 12px; text-align: center;">Qty</th>
				<th style="padding: 12px; text-align: right;">Price</th>
				<th style="padding: 12px; text-align: right;">Subtotal</th>
			</tr>
		</thead>
		<tbody>
			%s
		</tbody>
	</table>

	<p style="text-align: right; font-size: 20px; font-weight: bold;">Total: $%s</p>
	<p style="font-size: 14px; color: #666;">Shipping to: %s</p>
</body>
</html>`, html.EscapeString(order.CustomerName), html.EscapeString(order.OrderID), itemsHTML.String(),
		formatPrice(order.TotalPrice), html.EscapeString(order.ShipTo))
}

// BuildDeliveryNoticeBody builds the HTML body for the delivery email.
func BuildDeliveryNoticeBody(order OrderSummary) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 24px;">Hi %s, your order has been delivered</h1>
	<p>Order <span style="font-family: monospace;">%s</span> was delivered. We hope you enjoy it.</p>
</body>
</html>`, html.EscapeString(order.CustomerName), html.EscapeString(order.OrderID))
}

// formatPrice formats an amount with two decimals and comma separators
func formatPrice(amount float64) string {
	str := fmt.Sprintf("%.2f", amount)
	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}
	whole, cents, _ := strings.Cut(str, ".")

	var result strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(digit)
	}
	return sign + result.String() + "." + cents
}
