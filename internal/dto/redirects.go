package dto

import (
	"encoding/json"
	"fmt"

	"QROLY_BACK-END/internal/models"
)

// LegacyPaymentKey is where a flattened UPI payload is stored after folding.
const LegacyPaymentKey = "upi"

// RedirectsResponse is returned by GET /api/redirects
type RedirectsResponse struct {
	Links           models.Links `json:"links"`
	DefaultRedirect string       `json:"defaultRedirect"`
	Username        string       `json:"username"`
}

// NewRedirectsResponse converts a profile for the API.
func NewRedirectsResponse(p *models.Profile) RedirectsResponse {
	return RedirectsResponse{
		Links:           p.Links,
		DefaultRedirect: p.DefaultRedirect,
		Username:        p.Username,
	}
}

// RedirectsRequest is the body of POST /api/redirects. It replaces the whole
// link document; username in the body is ignored in favour of the token.
type RedirectsRequest struct {
	Links           RequestLinks `json:"links"`
	DefaultRedirect string       `json:"defaultRedirect"`
	Username        string       `json:"username,omitempty"`
}

// RequestLinks mirrors models.Links but accepts both payment shapes.
type RequestLinks struct {
	Social  map[string]string `json:"social"`
	Payment PaymentInput      `json:"payment" swaggertype:"object"`
}

// ToLinks returns the canonical links.
func (r RedirectsRequest) ToLinks() models.Links {
	return models.Links{
		Social:  r.Links.Social,
		Payment: map[string]models.PaymentEntry(r.Links.Payment),
	}
}

// PaymentInput decodes payment entries keyed by app. It also accepts the
// flattened shape {"upiid": "..", "amount": "..", "currency": "..", "payer": ".."}
// sent by older dashboard builds and folds it into one entry under
// LegacyPaymentKey.
type PaymentInput map[string]models.PaymentEntry

// UnmarshalJSON implements json.Unmarshaler.
func (p *PaymentInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(PaymentInput, len(raw))
	var legacy models.PaymentEntry
	legacySeen := false

	for key, value := range raw {
		if string(value) == "null" {
			continue
		}
		if len(value) > 0 && value[0] == '"' {
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return err
			}
			switch key {
			case "upiid", "upiId":
				legacy.UPIID = s
			case "amount":
				legacy.Amount = s
			case "currency":
				legacy.Currency = s
			case "payer", "payerName":
				legacy.PayerName = s
			default:
				return fmt.Errorf("payment.%s: expected an object", key)
			}
			legacySeen = true
			continue
		}

		var entry models.PaymentEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return fmt.Errorf("payment.%s: %w", key, err)
		}
		out[key] = entry
	}

	if legacySeen {
		if _, exists := out[LegacyPaymentKey]; !exists {
			out[LegacyPaymentKey] = legacy
		}
	}
	*p = out
	return nil
}
