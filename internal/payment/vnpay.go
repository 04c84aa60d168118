package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Gateway parameter names.
const (
	KeySecureHash     = "vnp_SecureHash"
	KeySecureHashType = "vnp_SecureHashType"
	KeyResponseCode   = "vnp_ResponseCode"
	KeyTxnRef         = "vnp_TxnRef"
	KeyAmount         = "vnp_Amount"
	KeyTransactionNo  = "vnp_TransactionNo"
	KeyBankCode       = "vnp_BankCode"

	ResponseCodeSuccess = "00"

	vnpVersion    = "2.1.0"
	vnpCommand    = "pay"
	vnpCurrency   = "VND"
	vnpDateLayout = "20060102150405"
)

// Params is an immutable set of gateway parameters kept in key order.
// Every modifier returns a new value.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams copies m into a sorted parameter set.
func NewParams(m map[string]string) Params {
	values := make(map[string]string, len(m))
	keys := make([]string, 0, len(m))
	for k, v := range m {
		values[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Params{keys: keys, values: values}
}

// ParamsFromValues takes the first value of each key in v.
func ParamsFromValues(v url.Values) Params {
	m := make(map[string]string, len(v))
	for k, vs := range v {
		if len(vs) > 0 {
			m[k] = vs[0]
		}
	}
	return NewParams(m)
}

// With returns a copy of p with key set to value.
func (p Params) With(key, value string) Params {
	m := p.Map()
	m[key] = value
	return NewParams(m)
}

// Without returns a copy of p without the given keys.
func (p Params) Without(keys ...string) Params {
	m := p.Map()
	for _, k := range keys {
		delete(m, k)
	}
	return NewParams(m)
}

// Get returns the value stored under key.
func (p Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the sorted keys.
func (p Params) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len is the number of parameters.
func (p Params) Len() int { return len(p.keys) }

// Map returns a mutable copy of the parameters.
func (p Params) Map() map[string]string {
	m := make(map[string]string, len(p.values))
	for k, v := range p.values {
		m[k] = v
	}
	return m
}

// Encode form-encodes the parameters as k=v pairs in key order. The same
// encoding is used for the signed payload and the final query string.
func (p Params) Encode() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.values[k]))
	}
	return b.String()
}

// SignedRequest is a parameter set with its secure hash appended.
type SignedRequest struct {
	Params Params
	Hash   string
}

// Sign computes the HMAC-SHA512 of p, excluding any hash fields, and
// returns a new set carrying the hash.
func Sign(secret string, p Params) SignedRequest {
	unsigned := p.Without(KeySecureHash, KeySecureHashType)
	hash := computeHash(secret, unsigned.Encode())
	return SignedRequest{Params: unsigned.With(KeySecureHash, hash), Hash: hash}
}

// BuildURL appends the signed parameters to the gateway base URL.
func BuildURL(base string, s SignedRequest) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + s.Params.Encode()
}

// VerifyResult reports whether an inbound callback is authentic and whether
// the gateway reported success. Success must not be trusted unless
// Verified is true.
type VerifyResult struct {
	Verified bool
	Success  bool
	Fields   map[string]string
}

// Trusted reports a verified successful payment.
func (r VerifyResult) Trusted() bool { return r.Verified && r.Success }

// Verify recomputes the hash over the inbound parameters and compares it
// with the claimed vnp_SecureHash in constant time.
func Verify(secret string, inbound url.Values) VerifyResult {
	params := ParamsFromValues(inbound)
	claimed, _ := params.Get(KeySecureHash)
	code, _ := params.Get(KeyResponseCode)
	expected := computeHash(secret, params.Without(KeySecureHash, KeySecureHashType).Encode())
	verified := claimed != "" && secret != "" &&
		hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(claimed))))
	return VerifyResult{
		Verified: verified,
		Success:  code == ResponseCodeSuccess,
		Fields:   params.Map(),
	}
}

func computeHash(secret, payload string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// VNPay builds signed payment URLs for the VNPay gateway and verifies its
// callbacks.
type VNPay struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	Location   *time.Location
	Now        func() time.Time
}

// Name implements Provider.
func (VNPay) Name() string { return "vnpay" }

func (v VNPay) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func (v VNPay) location() *time.Location {
	if v.Location != nil {
		return v.Location
	}
	if loc, err := time.LoadLocation("Asia/Ho_Chi_Minh"); err == nil {
		return loc
	}
	return time.FixedZone("ICT", 7*3600)
}

// Params assembles the unsigned parameter set for req.
func (v VNPay) Params(req IntentRequest) (Params, error) {
	if strings.TrimSpace(req.TxnRef) == "" {
		return Params{}, errors.New("txn ref is required")
	}
	if req.Amount <= 0 {
		return Params{}, errors.New("amount must be positive")
	}
	if v.TmnCode == "" || v.HashSecret == "" {
		return Params{}, errors.New("vnpay credentials not configured")
	}
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = v.ReturnURL
	}
	locale := req.Locale
	if locale == "" {
		locale = "vn"
	}
	orderType := req.OrderType
	if orderType == "" {
		orderType = "other"
	}
	orderInfo := req.OrderInfo
	if orderInfo == "" {
		orderInfo = "Thanh toan don hang " + req.TxnRef
	}
	created := v.now().In(v.location())
	m := map[string]string{
		"vnp_Version":    vnpVersion,
		"vnp_Command":    vnpCommand,
		"vnp_TmnCode":    v.TmnCode,
		"vnp_Locale":     locale,
		"vnp_CurrCode":   vnpCurrency,
		KeyTxnRef:        req.TxnRef,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  orderType,
		KeyAmount:        strconv.FormatInt(req.Amount*100, 10),
		"vnp_ReturnUrl":  returnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_CreateDate": created.Format(vnpDateLayout),
	}
	if req.BankCode != "" {
		m[KeyBankCode] = req.BankCode
	}
	if req.ExpiresIn > 0 {
		m["vnp_ExpireDate"] = created.Add(req.ExpiresIn).Format(vnpDateLayout)
	}
	return NewParams(m), nil
}

// PaymentURL returns the signed redirect URL for req.
func (v VNPay) PaymentURL(req IntentRequest) (string, error) {
	params, err := v.Params(req)
	if err != nil {
		return "", err
	}
	return BuildURL(v.PayURL, Sign(v.HashSecret, params)), nil
}

// CreateIntent implements Provider.
func (v VNPay) CreateIntent(_ context.Context, req IntentRequest) (IntentResponse, error) {
	redirect, err := v.PaymentURL(req)
	if err != nil {
		return IntentResponse{}, err
	}
	resp := IntentResponse{Provider: v.Name(), TxnRef: req.TxnRef, RedirectURL: redirect}
	if req.ExpiresIn > 0 {
		resp.ExpiresAt = v.now().Add(req.ExpiresIn)
	}
	return resp, nil
}

// VerifyCallback implements Provider.
func (v VNPay) VerifyCallback(values url.Values) CallbackResult {
	res := Verify(v.HashSecret, values)
	out := CallbackResult{
		Verified:      res.Verified,
		Success:       res.Success,
		TxnRef:        res.Fields[KeyTxnRef],
		ResponseCode:  res.Fields[KeyResponseCode],
		TransactionNo: res.Fields[KeyTransactionNo],
		BankCode:      res.Fields[KeyBankCode],
		Fields:        res.Fields,
	}
	if raw, ok := res.Fields[KeyAmount]; ok {
		if scaled, err := strconv.ParseInt(raw, 10, 64); err == nil {
			out.Amount = scaled / 100
			out.AmountValid = scaled%100 == 0
		}
	}
	return out
}
