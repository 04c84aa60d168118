package payment

import (
	"context"
	"net/url"
	"time"
)

// IntentRequest captures what a provider needs to open a payment for an order.
// Amount is in whole VND; providers apply their own scaling.
type IntentRequest struct {
	TxnRef    string
	OrderInfo string
	OrderType string
	Amount    int64
	Locale    string
	BankCode  string
	ClientIP  string
	ReturnURL string
	ExpiresIn time.Duration
}

// IntentResponse is the redirect a client follows to pay.
type IntentResponse struct {
	Provider    string    `json:"provider"`
	TxnRef      string    `json:"txnRef"`
	RedirectURL string    `json:"paymentUrl"`
	ExpiresAt   time.Time `json:"expiresAt,omitzero"`
}

// CallbackResult is the normalised content of a return or IPN callback.
type CallbackResult struct {
	Verified      bool
	Success       bool
	TxnRef        string
	Amount        int64
	AmountValid   bool
	ResponseCode  string
	TransactionNo string
	BankCode      string
	Fields        map[string]string
}

// Provider abstracts the operations required from an upstream payment gateway.
type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (IntentResponse, error)
	VerifyCallback(values url.Values) CallbackResult
}
