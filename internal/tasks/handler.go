package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/obs"
	"github.com/noah-isme/backend-tour/internal/voucher"
)

// Redeemer consumes a voucher for an order.
type Redeemer interface {
	Redeem(ctx context.Context, code, orderCode string) error
}

// Handler processes tasks on the worker side.
type Handler struct {
	Vouchers Redeemer
	Mail     common.EmailSender
	Logger   zerolog.Logger
	Location *time.Location
}

// Mux registers every task handler.
func (h *Handler) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeOrderPaid, h.HandleOrderPaid)
	return mux
}

// HandleOrderPaid redeems the order voucher and mails the booking confirmation.
// An exhausted voucher is logged and does not fail the task.
func (h *Handler) HandleOrderPaid(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { obs.IncCounter(obs.TaskProcessedTotal, TypeOrderPaid, resultLabel(err)) }()

	var p OrderPaidPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TypeOrderPaid, err, asynq.SkipRetry)
	}
	if p.OrderCode == "" {
		return fmt.Errorf("%s payload without order code: %w", TypeOrderPaid, asynq.SkipRetry)
	}
	log := h.Logger.With().Str("task", TypeOrderPaid).Str("order_code", p.OrderCode).Logger()

	if p.VoucherCode != "" && h.Vouchers != nil {
		rerr := h.Vouchers.Redeem(ctx, p.VoucherCode, p.OrderCode)
		switch {
		case errors.Is(rerr, voucher.ErrVoucherExhausted):
			log.Warn().Str("voucher_code", p.VoucherCode).Msg("voucher exhausted after payment")
		case rerr != nil:
			return rerr
		}
	}

	if h.Mail == nil || strings.TrimSpace(p.Email) == "" {
		return nil
	}
	if err := h.Mail.Send(p.Email, confirmationSubject(p), h.confirmationBody(p)); err != nil {
		return fmt.Errorf("send confirmation %s: %w", p.OrderCode, err)
	}
	log.Info().Msg("booking confirmation sent")
	return nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, asynq.SkipRetry):
		return "dropped"
	default:
		return "retry"
	}
}

func confirmationSubject(p OrderPaidPayload) string {
	return "Xác nhận thanh toán đơn hàng " + p.OrderCode
}

func (h *Handler) confirmationBody(p OrderPaidPayload) string {
	printer := message.NewPrinter(language.Vietnamese)
	var b strings.Builder
	b.WriteString(printer.Sprintf("Xin chào %s,\n", p.FullName))
	b.WriteString(printer.Sprintf("Đơn hàng %s đã được thanh toán thành công.\n", p.OrderCode))
	b.WriteString(printer.Sprintf("Số tiền: %d VND\n", p.FinalPrice))
	if !p.PaidAt.IsZero() {
		loc := h.Location
		if loc == nil {
			loc = time.UTC
		}
		b.WriteString("Thời gian: " + p.PaidAt.In(loc).Format("15:04 02/01/2006") + "\n")
	}
	if p.VoucherCode != "" {
		b.WriteString("Mã giảm giá: " + p.VoucherCode + "\n")
	}
	return b.String()
}
