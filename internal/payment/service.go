package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
	"github.com/noah-isme/backend-tour/internal/obs"
)

// IPN reply codes understood by the gateway.
const (
	RspConfirmed        = "00"
	RspOrderNotFound    = "01"
	RspAlreadyConfirmed = "02"
	RspInvalidAmount    = "04"
	RspInvalidSignature = "97"
	RspUnknownError     = "99"
)

// Orders is the order lifecycle the payment flow depends on.
type Orders interface {
	GetByCode(ctx context.Context, code string) (domain.Order, error)
	MarkPaid(ctx context.Context, code, method string) (domain.Order, error)
}

// Locker serialises work on a key across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Service coordinates payment URL creation and gateway callbacks.
type Service struct {
	Orders    Orders
	Provider  Provider
	Locker    Locker
	LockTTL   time.Duration
	IntentTTL time.Duration
	Logger    zerolog.Logger
}

// CreateRequest is what a client sends to start paying an order.
type CreateRequest struct {
	OrderCode string `json:"orderCode" validate:"required"`
	Locale    string `json:"locale" validate:"omitempty,oneof=vn en"`
	BankCode  string `json:"bankCode" validate:"omitempty,max=20"`
	ClientIP  string `json:"-"`
}

// IPNReply is the body the gateway expects in answer to an IPN call.
type IPNReply struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// ReturnResult is reported to the browser after the gateway redirects back.
type ReturnResult struct {
	Verified     bool               `json:"verified"`
	Success      bool               `json:"success"`
	OrderCode    string             `json:"orderCode"`
	Amount       int64              `json:"amount"`
	ResponseCode string             `json:"responseCode"`
	OrderStatus  domain.OrderStatus `json:"orderStatus,omitempty"`
}

// CreatePaymentURL returns a signed gateway URL for a pending order.
func (s *Service) CreatePaymentURL(ctx context.Context, req CreateRequest) (IntentResponse, error) {
	if s == nil || s.Orders == nil || s.Provider == nil {
		return IntentResponse{}, errors.New("payment service not configured")
	}
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.CreatePaymentURL")
	defer span.End()
	result := "error"
	defer func() {
		span.SetAttributes(attribute.String("payment.provider", s.Provider.Name()), attribute.String("payment.url.result", result))
		obs.IncCounter(obs.PaymentURLTotal, result)
	}()

	if err := common.ValidateStruct(req); err != nil {
		result = "invalid"
		return IntentResponse{}, err
	}
	order, err := s.Orders.GetByCode(ctx, req.OrderCode)
	if err != nil {
		return IntentResponse{}, err
	}
	span.SetAttributes(attribute.String("order.code", order.OrderCode))
	if order.Status != domain.OrderStatusPending {
		result = "rejected"
		return IntentResponse{}, common.Conflict("Đơn hàng không ở trạng thái chờ thanh toán", nil)
	}
	if order.FinalPrice <= 0 {
		result = "rejected"
		return IntentResponse{}, common.Validation("Số tiền thanh toán không hợp lệ")
	}
	resp, err := s.Provider.CreateIntent(ctx, IntentRequest{
		TxnRef:    order.OrderCode,
		OrderInfo: "Thanh toan don hang " + order.OrderCode,
		Amount:    order.FinalPrice,
		Locale:    req.Locale,
		BankCode:  req.BankCode,
		ClientIP:  req.ClientIP,
		ExpiresIn: s.IntentTTL,
	})
	if err != nil {
		span.RecordError(err)
		return IntentResponse{}, common.Internal(fmt.Errorf("create payment url: %w", err))
	}
	result = "success"
	return resp, nil
}

// Return verifies the browser return callback. It never changes order
// state; settlement happens on the IPN.
func (s *Service) Return(ctx context.Context, values url.Values) (ReturnResult, error) {
	if s == nil || s.Provider == nil {
		return ReturnResult{}, errors.New("payment service not configured")
	}
	cb := s.Provider.VerifyCallback(values)
	res := ReturnResult{
		Verified:     cb.Verified,
		Success:      cb.Verified && cb.Success,
		OrderCode:    cb.TxnRef,
		Amount:       cb.Amount,
		ResponseCode: cb.ResponseCode,
	}
	if !cb.Verified {
		obs.IncCounter(obs.PaymentCallbackTotal, "return", "invalid_signature")
		return res, common.NewAppError(common.KindSignatureMismatch, "Chữ ký không hợp lệ", http.StatusBadRequest, nil)
	}
	obs.IncCounter(obs.PaymentCallbackTotal, "return", callbackLabel(cb.Success))
	if s.Orders != nil && cb.TxnRef != "" {
		if order, err := s.Orders.GetByCode(ctx, cb.TxnRef); err == nil {
			res.OrderStatus = order.Status
		}
	}
	return res, nil
}

// IPN settles the order referenced by a server-to-server callback. The
// reply is always a gateway code; errors are logged.
func (s *Service) IPN(ctx context.Context, values url.Values) IPNReply {
	if s == nil || s.Provider == nil || s.Orders == nil {
		return IPNReply{RspCode: RspUnknownError, Message: "Unknown error"}
	}
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.IPN")
	defer span.End()

	cb := s.Provider.VerifyCallback(values)
	reply := s.settle(ctx, cb)
	span.SetAttributes(
		attribute.String("payment.txn_ref", cb.TxnRef),
		attribute.String("payment.response_code", cb.ResponseCode),
		attribute.String("payment.ipn.rsp_code", reply.RspCode),
	)
	obs.IncCounter(obs.PaymentCallbackTotal, "ipn", ipnLabel(reply.RspCode, cb.Success))
	return reply
}

func (s *Service) settle(ctx context.Context, cb CallbackResult) IPNReply {
	if !cb.Verified {
		return IPNReply{RspCode: RspInvalidSignature, Message: "Invalid signature"}
	}
	if strings.TrimSpace(cb.TxnRef) == "" {
		return IPNReply{RspCode: RspOrderNotFound, Message: "Order not found"}
	}
	var reply IPNReply
	work := func(ctx context.Context) error {
		reply = s.settleLocked(ctx, cb)
		return nil
	}
	var err error
	if s.Locker != nil {
		ttl := s.LockTTL
		if ttl <= 0 {
			ttl = 30 * time.Second
		}
		err = s.Locker.WithLock(ctx, "lock:payment:"+cb.TxnRef, ttl, work)
	} else {
		err = work(ctx)
	}
	if err != nil {
		s.Logger.Error().Err(err).Str("txn_ref", cb.TxnRef).Msg("ipn settlement lock failed")
		return IPNReply{RspCode: RspUnknownError, Message: "Unknown error"}
	}
	return reply
}

func (s *Service) settleLocked(ctx context.Context, cb CallbackResult) IPNReply {
	order, err := s.Orders.GetByCode(ctx, cb.TxnRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return IPNReply{RspCode: RspOrderNotFound, Message: "Order not found"}
		}
		s.Logger.Error().Err(err).Str("txn_ref", cb.TxnRef).Msg("ipn order lookup failed")
		return IPNReply{RspCode: RspUnknownError, Message: "Unknown error"}
	}
	if !cb.AmountValid || cb.Amount != order.FinalPrice {
		s.Logger.Warn().Str("txn_ref", cb.TxnRef).Int64("amount", cb.Amount).Int64("expected", order.FinalPrice).Msg("ipn amount mismatch")
		return IPNReply{RspCode: RspInvalidAmount, Message: "Invalid amount"}
	}
	if order.Status != domain.OrderStatusPending {
		return IPNReply{RspCode: RspAlreadyConfirmed, Message: "Order already confirmed"}
	}
	if !cb.Success {
		s.Logger.Info().Str("txn_ref", cb.TxnRef).Str("response_code", cb.ResponseCode).Msg("payment not successful")
		return IPNReply{RspCode: RspConfirmed, Message: "Confirm Success"}
	}
	if _, err := s.Orders.MarkPaid(ctx, order.OrderCode, s.Provider.Name()); err != nil {
		s.Logger.Error().Err(err).Str("txn_ref", cb.TxnRef).Msg("mark order paid failed")
		return IPNReply{RspCode: RspUnknownError, Message: "Unknown error"}
	}
	s.Logger.Info().Str("txn_ref", cb.TxnRef).Str("transaction_no", cb.TransactionNo).Msg("order paid")
	return IPNReply{RspCode: RspConfirmed, Message: "Confirm Success"}
}

func callbackLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

func ipnLabel(rsp string, success bool) string {
	switch rsp {
	case RspConfirmed:
		return callbackLabel(success)
	case RspInvalidSignature:
		return "invalid_signature"
	case RspOrderNotFound:
		return "order_not_found"
	case RspAlreadyConfirmed:
		return "already_confirmed"
	case RspInvalidAmount:
		return "invalid_amount"
	default:
		return "error"
	}
}
