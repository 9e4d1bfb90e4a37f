package mailer

import (
	"strings"
	"testing"
)

func TestBuildPayloadPlainText(t *testing.T) {
	payload, err := buildPayload("no-reply@otka.ro", Message{
		To:      []string{"client@example.ro"},
		Subject: "Proforma PRF000007",
		Body:    "Buna ziua",
	})
	if err != nil {
		t.Fatalf("buildPayload returned error: %v", err)
	}

	text := string(payload)
	if !strings.Contains(text, "Content-Type: text/plain; charset=utf-8") {
		t.Fatalf("expected plain text content type: %s", text)
	}
	if strings.Contains(text, "multipart") {
		t.Fatalf("no attachments must not produce a multipart message: %s", text)
	}
	if !strings.HasSuffix(text, "Buna ziua") {
		t.Fatalf("body must close the message: %s", text)
	}
}

func TestBuildPayloadWithAttachment(t *testing.T) {
	payload, err := buildPayload("no-reply@otka.ro", Message{
		To:      []string{"client@example.ro"},
		Subject: "Proforma PRF000007",
		Body:    "Atasat gasiti proforma.",
		Attachments: []Attachment{
			{Filename: "PRF000007.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4 fake")},
		},
	})
	if err != nil {
		t.Fatalf("buildPayload returned error: %v", err)
	}

	text := string(payload)
	if !strings.Contains(text, "Content-Type: multipart/mixed; boundary=") {
		t.Fatalf("expected multipart message: %s", text)
	}
	if !strings.Contains(text, `attachment; filename="PRF000007.pdf"`) {
		t.Fatalf("expected attachment disposition: %s", text)
	}
	if !strings.Contains(text, "Content-Type: application/pdf") {
		t.Fatalf("expected pdf part content type: %s", text)
	}
	if !strings.Contains(text, "Content-Transfer-Encoding: base64") {
		t.Fatalf("expected base64 transfer encoding: %s", text)
	}
	if !strings.Contains(text, "Atasat gasiti proforma.") {
		t.Fatalf("text part must survive alongside the attachment: %s", text)
	}
}

func TestBuildPayloadWrapsBase64Lines(t *testing.T) {
	payload, err := buildPayload("no-reply@otka.ro", Message{
		To:      []string{"client@example.ro"},
		Subject: "Export",
		Body:    "-",
		Attachments: []Attachment{
			{Filename: "export.bin", Data: make([]byte, 600)},
		},
	})
	if err != nil {
		t.Fatalf("buildPayload returned error: %v", err)
	}

	for _, line := range strings.Split(string(payload), "\r\n") {
		if len(line) > 998 {
			t.Fatalf("line exceeds smtp limit: %d chars", len(line))
		}
	}
	if !strings.Contains(string(payload), "application/octet-stream") {
		t.Fatal("expected octet-stream fallback for untyped attachments")
	}
}
