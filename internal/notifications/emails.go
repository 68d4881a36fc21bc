package notifications

import (
	"fmt"

	"github.com/hims91/audio-nature-nexus-backend/pkg/email"
)

func formatCents(cents int) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func confirmationEmail(payload orderPaidPayload) email.Message {
	total := formatCents(payload.TotalCents)
	return email.Message{
		ToEmail: payload.Email,
		Subject: fmt.Sprintf("Order %s confirmed", payload.OrderNumber),
		PlainBody: fmt.Sprintf(
			"Thanks for your order!\n\nOrder %s has been received and your payment of %s is confirmed. "+
				"We'll email you again when it ships.\n\n— Audio Nature Nexus",
			payload.OrderNumber, total),
		HTMLBody: fmt.Sprintf(
			"<p>Thanks for your order!</p><p>Order <strong>%s</strong> has been received and your payment of "+
				"<strong>%s</strong> is confirmed. We'll email you again when it ships.</p><p>— Audio Nature Nexus</p>",
			payload.OrderNumber, total),
	}
}

func operatorPaidEmail(operatorEmail string, payload orderPaidPayload) email.Message {
	total := formatCents(payload.TotalCents)
	return email.Message{
		ToEmail: operatorEmail,
		Subject: fmt.Sprintf("New paid order %s", payload.OrderNumber),
		PlainBody: fmt.Sprintf(
			"Order %s has been paid (%s).\n\nOrder ID: %s",
			payload.OrderNumber, total, payload.OrderID),
		HTMLBody: fmt.Sprintf(
			"<p>Order <strong>%s</strong> has been paid (<strong>%s</strong>).</p><p>Order ID: %s</p>",
			payload.OrderNumber, total, payload.OrderID),
	}
}

func operatorAlertEmail(operatorEmail string, payload orderFlaggedPayload) email.Message {
	return email.Message{
		ToEmail: operatorEmail,
		Subject: fmt.Sprintf("Order %s needs attention", payload.OrderNumber),
		PlainBody: fmt.Sprintf(
			"Order %s was created but needs manual follow-up.\n\nReason: %s\n\nOrder ID: %s",
			payload.OrderNumber, payload.Note, payload.OrderID),
		HTMLBody: fmt.Sprintf(
			"<p>Order <strong>%s</strong> was created but needs manual follow-up.</p><p>Reason: %s</p><p>Order ID: %s</p>",
			payload.OrderNumber, payload.Note, payload.OrderID),
	}
}
