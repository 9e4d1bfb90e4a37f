package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/otka-dev/otka-backend/pkg/config"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

// Attachment is one file part on an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an outgoing email: a plain-text body plus optional attachments.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers notification emails. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail through a plain SMTP relay with AUTH PLAIN when
// credentials are configured.
type SMTPSender struct {
	cfg  config.SMTPConfig
	logg *logger.Logger
}

// NewSMTPSender validates the config and returns a sender.
func NewSMTPSender(cfg config.SMTPConfig, logg *logger.Logger) (*SMTPSender, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("smtp host and from address are required")
	}
	return &SMTPSender{cfg: cfg, logg: logg}, nil
}

// Send delivers the message. The context is consulted before dialing; net/smtp
// does not support mid-send cancellation.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	payload, err := buildPayload(s.cfg.From, msg)
	if err != nil {
		return fmt.Errorf("build mail: %w", err)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, msg.To, payload); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	if s.logg != nil {
		fields := map[string]any{"recipients": len(msg.To), "subject": msg.Subject}
		s.logg.Info(s.logg.WithFields(ctx, fields), "email sent")
	}
	return nil
}

func buildPayload(from string, msg Message) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachments) == 0 {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.Body)
		return b.Bytes(), nil
	}

	w := multipart.NewWriter(&b)
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", w.Boundary())

	text, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	for _, att := range msg.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {contentType},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Filename)},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, att.Data); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// writeBase64 wraps the encoding at 76 columns per RFC 2045.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(w, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := w.Write([]byte(encoded))
	return err
}
