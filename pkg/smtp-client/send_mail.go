package smtp_client

import (
	"log/slog"
	"net/textproto"

	"github.com/jordan-wright/email"
	"github.com/knadh/smtppool"
)

// SendMail sends one message with an HTML body and an optional plain text alternative.
func (sc *SmtpClients) SendMail(
	to []string,
	subject string,
	htmlContent string,
	textContent string,
) error {
	index, pool, err := sc.nextPool()
	if err != nil {
		return err
	}

	e := smtppool.Email{
		To:      to,
		From:    sc.servers.From,
		Sender:  sc.servers.Sender,
		ReplyTo: sc.servers.ReplyTo,
		Subject: subject,
		HTML:    []byte(htmlContent),
		Headers: textproto.MIMEHeader{},
	}
	if textContent != "" {
		e.Text = []byte(textContent)
	}

	err = pool.Send(e)
	if err != nil {
		slog.Error("error when trying to send email", slog.String("error", err.Error()))
		// close and try to reconnect
		sc.reconnect(index, pool)
	}
	return err
}

// BuildMessage renders a complete RFC 5322 message, e.g. for writing an .eml file.
func BuildMessage(from string, to []string, subject string, htmlContent string, textContent string) ([]byte, error) {
	e := email.NewEmail()
	e.From = from
	e.To = to
	e.Subject = subject
	e.HTML = []byte(htmlContent)
	if textContent != "" {
		e.Text = []byte(textContent)
	}
	return e.Bytes()
}
