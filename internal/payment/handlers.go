package payment

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/common"
)

// Handler exposes the payment endpoints.
type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

// Create answers POST /payments/vnpay with a signed redirect URL.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	req.ClientIP = common.ClientIP(r)
	resp, err := h.Svc.CreatePaymentURL(r.Context(), req)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Tạo liên kết thanh toán thành công", resp)
}

// Return answers the browser redirect from the gateway.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	res, err := h.Svc.Return(r.Context(), r.URL.Query())
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	msg := "Thanh toán thành công"
	if !res.Success {
		msg = "Thanh toán không thành công"
	}
	common.OK(w, http.StatusOK, msg, res)
}

// IPN answers the gateway's server-to-server notification. The gateway
// reads RspCode from the body, so the HTTP status is always 200.
func (h *Handler) IPN(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSON(w, http.StatusOK, IPNReply{RspCode: RspUnknownError, Message: "Unknown error"})
		return
	}
	common.JSON(w, http.StatusOK, h.Svc.IPN(r.Context(), r.URL.Query()))
}
