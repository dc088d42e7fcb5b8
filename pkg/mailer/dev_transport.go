package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
)

// DevTransport implements Transport for local development. It saves each
// message as an HTML file plus a JSON metadata file instead of delivering it.
type DevTransport struct {
	dir string
}

// NewDevTransport creates a development transport that writes emails to dir.
// The directory is created on first send if it doesn't exist.
func NewDevTransport(dir string) Transport {
	return &DevTransport{dir: dir}
}

// emailMetadata is the message envelope saved alongside the HTML body.
type emailMetadata struct {
	Timestamp string   `json:"timestamp"`
	From      string   `json:"from"`
	To        []string `json:"to"`
	CC        []string `json:"cc,omitempty"`
	BCC       []string `json:"bcc,omitempty"`
	Subject   string   `json:"subject"`
	Tag       string   `json:"tag,omitempty"`
}

// Send writes the email body and its metadata to the configured directory.
func (d *DevTransport) Send(ctx context.Context, email Email) error {
	if err := email.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSend, err)
	}

	now := time.Now()
	timestamp := now.Format("2006_01_02_150405")

	identifier := email.Tag
	if identifier == "" {
		identifier = email.Subject
	}
	baseFilename := fmt.Sprintf("%s_%s", timestamp, sanitizeFilename(identifier))

	htmlPath := filepath.Join(d.dir, baseFilename+".html")
	if err := os.WriteFile(htmlPath, []byte(email.Body), 0644); err != nil {
		return fmt.Errorf("%w: failed to write HTML file: %v", ErrFailedToSend, err)
	}

	metadata := emailMetadata{
		Timestamp: now.Format(time.RFC3339),
		From:      email.From.RFC5322(),
		To:        contact.Addresses(email.To),
		CC:        contact.Addresses(email.CC),
		BCC:       contact.Addresses(email.BCC),
		Subject:   email.Subject,
		Tag:       email.Tag,
	}

	jsonData, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", ErrFailedToSend, err)
	}

	jsonPath := filepath.Join(d.dir, baseFilename+".json")
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf("%w: failed to write JSON file: %v", ErrFailedToSend, err)
	}

	return nil
}

// sanitizeRegex matches characters that are not alphanumeric, dash, underscore, or dot
var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename converts a string into a safe filename.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}

	if s == "" {
		s = "email"
	}

	return strings.ToLower(s)
}
