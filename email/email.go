package email

import "context"

type Email struct {
	FromAddress string
	ToAddresses []string
	Subject     string
	HTMLBody    string
	TextBody    string
}

type Sender interface {
	SendEmail(ctx context.Context, e Email) error
}
