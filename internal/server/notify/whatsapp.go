// Package notify forwards generated reports to the operations manager over
// the WhatsApp Cloud API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sultan0alshami/wathiq-sub001/internal/logging"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/config"
)

const (
	pdfContentType = "application/pdf"
	sendTimeout    = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// Sender delivers one document to the configured recipient.
type Sender interface {
	SendDocument(ctx context.Context, filename string, data []byte) error
}

// Nop discards every document.
type Nop struct{}

func (Nop) SendDocument(context.Context, string, []byte) error { return nil }

// WhatsApp uploads a document as media and then messages its id to one
// phone number.
type WhatsApp struct {
	base    string
	token   string
	phoneID string
	to      string
	http    *http.Client
	logger  logging.Logger
}

// New returns a WhatsApp sender, or Nop when the token, sender phone id or
// manager phone is missing.
func New(c *config.Config, logger logging.Logger) Sender {
	if c.WhatsAppToken == "" || c.WhatsAppPhoneID == "" || c.WhatsAppManagerPhone == "" {
		logger.Info(context.Background(), "whatsapp not configured; reports are not forwarded")
		return Nop{}
	}
	return NewWhatsApp(c.WhatsAppAPIBase, c.WhatsAppToken, c.WhatsAppPhoneID, c.WhatsAppManagerPhone, logger)
}

func NewWhatsApp(base, token, phoneID, to string, logger logging.Logger) *WhatsApp {
	return &WhatsApp{
		base:    strings.TrimRight(base, "/"),
		token:   token,
		phoneID: phoneID,
		to:      to,
		http:    &http.Client{Timeout: sendTimeout},
		logger:  logger.With("module", "notify"),
	}
}

// SendDocument uploads data as a PDF and sends it to the manager.
func (w *WhatsApp) SendDocument(ctx context.Context, filename string, data []byte) error {
	mediaID, err := w.upload(ctx, filename, data)
	if err != nil {
		w.logger.Warn(ctx, "whatsapp upload failed", "file", filename, "error", err)
		return err
	}
	if err := w.message(ctx, mediaID, filename); err != nil {
		w.logger.Warn(ctx, "whatsapp send failed", "file", filename, "media_id", mediaID, "error", err)
		return err
	}
	w.logger.Info(ctx, "report sent over whatsapp", "file", filename, "bytes", len(data))
	return nil
}

func (w *WhatsApp) upload(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("messaging_product", "whatsapp")
	_ = mw.WriteField("type", pdfContentType)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", pdfContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := w.post(ctx, "media", mw.FormDataContentType(), &body, &out); err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("upload media: response has no id")
	}
	return out.ID, nil
}

type documentMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Document         struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
	} `json:"document"`
}

func (w *WhatsApp) message(ctx context.Context, mediaID, filename string) error {
	msg := documentMessage{MessagingProduct: "whatsapp", To: w.to, Type: "document"}
	msg.Document.ID = mediaID
	msg.Document.Filename = filename

	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := w.post(ctx, "messages", "application/json", bytes.NewReader(b), nil); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// post sends one authorized request to {base}/{phoneID}/{path} and decodes
// a 2xx JSON reply into out when out is not nil.
func (w *WhatsApp) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	url := fmt.Sprintf("%s/%s/%s", w.base, w.phoneID, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := w.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
