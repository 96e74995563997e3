package order

import (
	"fmt"

	"pizzapap/internal/models"
)

// pendingMessage carries no personal data
const pendingMessage = "Your order will be processed and delivered within one hour of placing. " +
	"In case of any comment or complaint, please reach out to us as fast as possible."

// StatusMessage selects the customer-facing message for a checkout status
func StatusMessage(status models.OrderStatus, name, location string) string {
	switch status {
	case models.StatusPending:
		return pendingMessage
	case models.StatusConfirmed:
		return fmt.Sprintf(
			"Hello %s, we have received your order and it will be delivered to you at %s. Thanks for ordering at PizzaPap.",
			name, location,
		)
	default:
		return fmt.Sprintf("Sorry %s, your order was not placed successfully. Please try again.", name)
	}
}
