package payment

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "SECRETKEY123"

func testGateway() VNPay {
	return VNPay{
		TmnCode:    "TOUR0001",
		HashSecret: testSecret,
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://tour.example/payment/return",
		Location:   time.FixedZone("ICT", 7*3600),
		Now:        func() time.Time { return time.Date(2024, 3, 15, 3, 4, 5, 0, time.UTC) },
	}
}

func signedValues(t *testing.T, gw VNPay, req IntentRequest) url.Values {
	t.Helper()
	raw, err := gw.PaymentURL(req)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query()
}

func TestParamsImmutable(t *testing.T) {
	base := NewParams(map[string]string{"b": "2", "a": "1"})
	next := base.With("c", "3").Without("a")

	require.Equal(t, []string{"a", "b"}, base.Keys())
	require.Equal(t, []string{"b", "c"}, next.Keys())

	keys := base.Keys()
	keys[0] = "zzz"
	require.Equal(t, []string{"a", "b"}, base.Keys())
}

func TestParamsEncodeSortedFormEncoding(t *testing.T) {
	p := NewParams(map[string]string{
		"vnp_OrderInfo": "Thanh toan don hang ORD1",
		"vnp_Amount":    "1000000",
		"vnp_ReturnUrl": "https://a.b/c?d=e",
	})
	require.Equal(t,
		"vnp_Amount=1000000&vnp_OrderInfo=Thanh+toan+don+hang+ORD1&vnp_ReturnUrl=https%3A%2F%2Fa.b%2Fc%3Fd%3De",
		p.Encode())
}

func TestSignExcludesExistingHash(t *testing.T) {
	p := NewParams(map[string]string{"vnp_TxnRef": "ORD1", "vnp_Amount": "100"})
	clean := Sign(testSecret, p)
	dirty := Sign(testSecret, p.With(KeySecureHash, "bogus").With(KeySecureHashType, "SHA512"))

	require.Equal(t, clean.Hash, dirty.Hash)
	require.Len(t, clean.Hash, 128)
	require.Equal(t, computeHash(testSecret, "vnp_Amount=100&vnp_TxnRef=ORD1"), clean.Hash)
	_, hasType := dirty.Params.Get(KeySecureHashType)
	require.False(t, hasType)
}

func TestPaymentURLFields(t *testing.T) {
	q := signedValues(t, testGateway(), IntentRequest{TxnRef: "ORD1", Amount: 150_000, ClientIP: "127.0.0.1"})

	require.Equal(t, "2.1.0", q.Get("vnp_Version"))
	require.Equal(t, "pay", q.Get("vnp_Command"))
	require.Equal(t, "TOUR0001", q.Get("vnp_TmnCode"))
	require.Equal(t, "vn", q.Get("vnp_Locale"))
	require.Equal(t, "VND", q.Get("vnp_CurrCode"))
	require.Equal(t, "other", q.Get("vnp_OrderType"))
	require.Equal(t, "15000000", q.Get("vnp_Amount"))
	require.Equal(t, "20240315100405", q.Get("vnp_CreateDate"))
	require.Equal(t, "https://tour.example/payment/return", q.Get("vnp_ReturnUrl"))
	require.Equal(t, "127.0.0.1", q.Get("vnp_IpAddr"))
	require.NotEmpty(t, q.Get(KeySecureHash))
	require.Empty(t, q.Get("vnp_ExpireDate"))
}

func TestPaymentURLRejectsBadInput(t *testing.T) {
	gw := testGateway()
	_, err := gw.PaymentURL(IntentRequest{Amount: 10})
	require.Error(t, err)
	_, err = gw.PaymentURL(IntentRequest{TxnRef: "ORD1"})
	require.Error(t, err)
	gw.HashSecret = ""
	_, err = gw.PaymentURL(IntentRequest{TxnRef: "ORD1", Amount: 10})
	require.Error(t, err)
}

func TestVerifyRoundTrip(t *testing.T) {
	q := signedValues(t, testGateway(), IntentRequest{TxnRef: "ORD1", Amount: 150_000, OrderInfo: "Tour Đà Lạt 3N2Đ"})
	q.Set(KeyResponseCode, "00")
	// the gateway signs the callback over the fields it returns
	signed := Sign(testSecret, ParamsFromValues(q))
	inbound, err := url.ParseQuery(signed.Params.Encode())
	require.NoError(t, err)

	res := Verify(testSecret, inbound)
	require.True(t, res.Verified)
	require.True(t, res.Success)
	require.True(t, res.Trusted())
	require.Equal(t, "ORD1", res.Fields[KeyTxnRef])
}

func TestVerifyDetectsTampering(t *testing.T) {
	q := signedValues(t, testGateway(), IntentRequest{TxnRef: "ORD1", Amount: 150_000})
	for _, key := range []string{"vnp_Amount", "vnp_TxnRef", "vnp_OrderInfo", "vnp_CreateDate", "vnp_IpAddr"} {
		t.Run(key, func(t *testing.T) {
			tampered := url.Values{}
			for k, v := range q {
				tampered[k] = append([]string(nil), v...)
			}
			tampered.Set(key, tampered.Get(key)+"1")
			require.False(t, Verify(testSecret, tampered).Verified)
		})
	}
	require.True(t, Verify(testSecret, q).Verified)
	require.False(t, Verify("other-secret", q).Verified)
}

func TestVerifyHashTypeAndCase(t *testing.T) {
	q := signedValues(t, testGateway(), IntentRequest{TxnRef: "ORD1", Amount: 1000})
	q.Set(KeySecureHashType, "HmacSHA512")
	q.Set(KeySecureHash, strings.ToUpper(q.Get(KeySecureHash)))
	require.True(t, Verify(testSecret, q).Verified)

	q.Del(KeySecureHash)
	require.False(t, Verify(testSecret, q).Verified)
}

func TestVerifyUnsignedSuccessIsNotTrusted(t *testing.T) {
	res := Verify(testSecret, url.Values{KeyResponseCode: {"00"}, KeyTxnRef: {"ORD1"}, KeySecureHash: {"abc"}})
	require.True(t, res.Success)
	require.False(t, res.Verified)
	require.False(t, res.Trusted())
}

func TestVerifyFailureCode(t *testing.T) {
	p := ParamsFromValues(url.Values{KeyTxnRef: {"ORD1"}, KeyResponseCode: {"24"}})
	inbound, err := url.ParseQuery(Sign(testSecret, p).Params.Encode())
	require.NoError(t, err)
	res := Verify(testSecret, inbound)
	require.True(t, res.Verified)
	require.False(t, res.Success)
}

func TestVerifyCallbackScalesAmount(t *testing.T) {
	gw := testGateway()
	p := ParamsFromValues(url.Values{KeyTxnRef: {"ORD1"}, KeyResponseCode: {"00"}, KeyAmount: {"15000000"}, KeyTransactionNo: {"14000001"}})
	inbound, err := url.ParseQuery(Sign(testSecret, p).Params.Encode())
	require.NoError(t, err)

	cb := gw.VerifyCallback(inbound)
	require.True(t, cb.Verified)
	require.True(t, cb.AmountValid)
	require.Equal(t, int64(150_000), cb.Amount)
	require.Equal(t, "14000001", cb.TransactionNo)
}
