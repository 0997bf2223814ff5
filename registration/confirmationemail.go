package registration

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/Satish-vaishyar/Collage-Events/email"
	"github.com/Satish-vaishyar/Collage-Events/events"
)

//go:embed templates
var templates embed.FS

// SendPaymentConfirmationEmail tells the attendee their spot is locked in.
// Sent after settlement; a send failure never unwinds the settlement.
func SendPaymentConfirmationEmail(ctx context.Context, emailSender email.Sender, fromAddress string, reg Registration, event events.Event) error {
	htmlBody, err := renderTemplate("templates/payment-confirmation.tmpl", event, reg)
	if err != nil {
		return err
	}

	textOnlyBody, err := renderTemplate("templates/payment-confirmation-textonly.tmpl", event, reg)
	if err != nil {
		return err
	}

	return emailSender.SendEmail(ctx, email.Email{
		FromAddress: fromAddress,
		ToAddresses: []string{reg.Email},
		Subject:     fmt.Sprintf("Registration confirmed - %q", event.Name),
		HTMLBody:    htmlBody,
		TextBody:    textOnlyBody,
	})
}

func renderTemplate(name string, event events.Event, reg Registration) (string, error) {
	tmpl, err := template.New(name[len("templates/"):]).Funcs(template.FuncMap{
		"display": func(r Registration) string {
			if r.Amount == nil {
				return "Free"
			}
			return r.Amount.Display()
		},
	}).ParseFS(templates, name)
	if err != nil {
		return "", fmt.Errorf("failed to parse email template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"Event":        event,
		"Registration": reg,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}

	return buf.String(), nil
}
