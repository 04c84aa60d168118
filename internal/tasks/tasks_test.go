package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
	"github.com/noah-isme/backend-tour/internal/voucher"
)

type recordingQueue struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (q *recordingQueue) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	q.opts = append(q.opts, opts)
	return &asynq.TaskInfo{ID: "1"}, nil
}

type recordingRedeemer struct {
	calls [][2]string
	err   error
}

func (r *recordingRedeemer) Redeem(_ context.Context, code, orderCode string) error {
	r.calls = append(r.calls, [2]string{code, orderCode})
	return r.err
}

func paidOrder() domain.Order {
	paidAt := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	return domain.Order{
		OrderCode:   "ORD1",
		VoucherCode: "SALE10",
		Email:       "an@example.com",
		FullName:    "Nguyễn Văn An",
		FinalPrice:  1500000,
		Status:      domain.OrderStatusPaid,
		PaidAt:      &paidAt,
	}
}

func TestNewOrderPaidTask(t *testing.T) {
	task, opts, err := NewOrderPaidTask(paidOrder())
	require.NoError(t, err)
	require.Equal(t, TypeOrderPaid, task.Type())
	require.Len(t, opts, 3)

	var p OrderPaidPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	require.Equal(t, "ORD1", p.OrderCode)
	require.Equal(t, "SALE10", p.VoucherCode)
	require.Equal(t, int64(1500000), p.FinalPrice)
	require.False(t, p.PaidAt.IsZero())

	_, _, err = NewOrderPaidTask(domain.Order{})
	require.Error(t, err)
}

func TestClientEnqueueOrderPaid(t *testing.T) {
	q := &recordingQueue{}
	c := &Client{q: q, queue: "critical"}
	require.NoError(t, c.EnqueueOrderPaid(context.Background(), paidOrder()))
	require.Len(t, q.tasks, 1)
	require.Len(t, q.opts[0], 4)

	q.err = asynq.ErrTaskIDConflict
	require.NoError(t, c.EnqueueOrderPaid(context.Background(), paidOrder()))

	q.err = errors.New("redis down")
	require.ErrorContains(t, c.EnqueueOrderPaid(context.Background(), paidOrder()), "redis down")

	var nilClient *Client
	require.Error(t, nilClient.EnqueueOrderPaid(context.Background(), paidOrder()))
}

func newTask(t *testing.T, o domain.Order) *asynq.Task {
	t.Helper()
	task, _, err := NewOrderPaidTask(o)
	require.NoError(t, err)
	return task
}

func TestHandleOrderPaidRedeemsAndMails(t *testing.T) {
	redeemer := &recordingRedeemer{}
	mail := &common.InMemoryEmail{}
	h := &Handler{Vouchers: redeemer, Mail: mail, Logger: zerolog.Nop()}

	require.NoError(t, h.HandleOrderPaid(context.Background(), newTask(t, paidOrder())))
	require.Equal(t, [][2]string{{"SALE10", "ORD1"}}, redeemer.calls)
	require.Len(t, mail.Outbox, 1)
	require.Equal(t, "an@example.com", mail.Outbox[0].To)
	require.Contains(t, mail.Outbox[0].Subject, "ORD1")
	require.Contains(t, mail.Outbox[0].HTML, "Nguyễn Văn An")
	require.Contains(t, mail.Outbox[0].HTML, "SALE10")
}

func TestHandleOrderPaidExhaustedVoucherStillMails(t *testing.T) {
	redeemer := &recordingRedeemer{err: voucher.ErrVoucherExhausted}
	mail := &common.InMemoryEmail{}
	h := &Handler{Vouchers: redeemer, Mail: mail, Logger: zerolog.Nop()}

	require.NoError(t, h.HandleOrderPaid(context.Background(), newTask(t, paidOrder())))
	require.Len(t, mail.Outbox, 1)
}

func TestHandleOrderPaidRetriesStoreFailure(t *testing.T) {
	redeemer := &recordingRedeemer{err: errors.New("mongo timeout")}
	mail := &common.InMemoryEmail{}
	h := &Handler{Vouchers: redeemer, Mail: mail, Logger: zerolog.Nop()}

	err := h.HandleOrderPaid(context.Background(), newTask(t, paidOrder()))
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, mail.Outbox)
}

func TestHandleOrderPaidWithoutVoucher(t *testing.T) {
	redeemer := &recordingRedeemer{}
	mail := &common.InMemoryEmail{}
	h := &Handler{Vouchers: redeemer, Mail: mail, Logger: zerolog.Nop()}

	o := paidOrder()
	o.VoucherCode = ""
	require.NoError(t, h.HandleOrderPaid(context.Background(), newTask(t, o)))
	require.Empty(t, redeemer.calls)
	require.Len(t, mail.Outbox, 1)
}

func TestHandleOrderPaidBadPayloadSkipsRetry(t *testing.T) {
	h := &Handler{Logger: zerolog.Nop()}
	err := h.HandleOrderPaid(context.Background(), asynq.NewTask(TypeOrderPaid, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = h.HandleOrderPaid(context.Background(), asynq.NewTask(TypeOrderPaid, []byte(`{}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Equal(t, "dropped", resultLabel(err))
}

func TestMuxRoutesOrderPaid(t *testing.T) {
	mail := &common.InMemoryEmail{}
	h := &Handler{Mail: mail, Logger: zerolog.Nop()}
	require.NoError(t, h.Mux().ProcessTask(context.Background(), newTask(t, paidOrder())))
	require.Len(t, mail.Outbox, 1)
}
