package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// EmailGateway posts transactional email jobs to the delivery service.
// Every request carries the shared API key and an HMAC-SHA256
// signature over the exact body bytes.
type EmailGateway struct {
	httpClient *resty.Client
	apiKey     string
	secret     string
	logger     *zap.Logger
}

func NewEmailGateway(baseURL, apiKey, secret string, logger *zap.Logger) *EmailGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1*time.Second).
		SetHeader("Content-Type", "application/json")

	return &EmailGateway{
		httpClient: client,
		apiKey:     apiKey,
		secret:     secret,
		logger:     logger,
	}
}

type emailPayload struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Vars     map[string]string `json:"vars"`
}

func (g *EmailGateway) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *EmailGateway) send(ctx context.Context, payload emailPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("email payload: %w", err)
	}

	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetHeader("X-API-Key", g.apiKey).
		SetHeader("X-Signature", g.sign(body)).
		SetBody(body).
		Post("/v1/send")
	if err != nil {
		return fmt.Errorf("email gateway: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("email gateway: status %d", resp.StatusCode())
	}

	g.logger.Info("email queued", zap.String("to", payload.To), zap.String("template", payload.Template))
	return nil
}

// SendMagicLink mails a one-time login URL.
func (g *EmailGateway) SendMagicLink(ctx context.Context, to, loginURL string) error {
	return g.send(ctx, emailPayload{
		To:       to,
		Template: "magic_link",
		Vars:     map[string]string{"login_url": loginURL},
	})
}

// SendInvoice mails an invoice summary to the customer.
func (g *EmailGateway) SendInvoice(ctx context.Context, to, invoiceNumber, totalDisplay string) error {
	return g.send(ctx, emailPayload{
		To:       to,
		Template: "invoice",
		Vars: map[string]string{
			"invoice_number": invoiceNumber,
			"total":          totalDisplay,
		},
	})
}
