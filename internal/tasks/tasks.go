package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-tour/internal/domain"
)

// TypeOrderPaid runs post-payment work for a settled order.
const TypeOrderPaid = "order:paid"

// OrderPaidPayload is the task body for TypeOrderPaid.
type OrderPaidPayload struct {
	OrderCode   string    `json:"orderCode"`
	VoucherCode string    `json:"voucherCode,omitempty"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	FinalPrice  int64     `json:"finalPrice"`
	PaidAt      time.Time `json:"paidAt"`
}

// NewOrderPaidTask builds the task for o. The task id is derived from the
// order code so a second enqueue for the same order is rejected by asynq.
func NewOrderPaidTask(o domain.Order) (*asynq.Task, []asynq.Option, error) {
	if o.OrderCode == "" {
		return nil, nil, errors.New("tasks: order code required")
	}
	p := OrderPaidPayload{
		OrderCode:   o.OrderCode,
		VoucherCode: o.VoucherCode,
		Email:       o.Email,
		FullName:    o.FullName,
		FinalPrice:  o.FinalPrice,
	}
	if o.PaidAt != nil {
		p.PaidAt = *o.PaidAt
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.TaskID(TypeOrderPaid + ":" + o.OrderCode),
		asynq.MaxRetry(8),
		asynq.Timeout(time.Minute),
	}
	return asynq.NewTask(TypeOrderPaid, b), opts, nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client enqueues background tasks on asynq.
type Client struct {
	q     enqueuer
	queue string
}

// NewClient wraps an asynq client. An empty queue uses asynq's default queue.
func NewClient(c *asynq.Client, queue string) *Client {
	return &Client{q: c, queue: queue}
}

// EnqueueOrderPaid schedules voucher redemption and the confirmation mail.
func (c *Client) EnqueueOrderPaid(ctx context.Context, o domain.Order) error {
	if c == nil || c.q == nil {
		return errors.New("tasks: client not configured")
	}
	task, opts, err := NewOrderPaidTask(o)
	if err != nil {
		return err
	}
	if c.queue != "" {
		opts = append(opts, asynq.Queue(c.queue))
	}
	if _, err := c.q.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue %s %s: %w", TypeOrderPaid, o.OrderCode, err)
	}
	return nil
}
