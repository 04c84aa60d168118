package order

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/noah-isme/backend-tour/internal/domain"
)

var exportHeader = []string{
	"Mã đơn", "Ngày tạo", "Khách hàng", "Email", "Điện thoại", "Trạng thái",
	"Số chỗ tour", "Số phòng", "Mã giảm giá", "Tổng tiền", "Giảm giá", "Thành tiền",
}

// WriteCSV renders orders as CSV with a UTF-8 BOM so spreadsheet tools pick
// up the Vietnamese headers. Dates are written in loc.
func WriteCSV(w io.Writer, orders []domain.Order, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, o := range orders {
		var seats, rooms int
		for _, t := range o.Tours {
			seats += t.Seats()
		}
		for _, h := range o.Hotels {
			for _, r := range h.Rooms {
				rooms += r.Quantity
			}
		}
		record := []string{
			o.OrderCode,
			o.CreatedAt.In(loc).Format("02/01/2006 15:04"),
			o.FullName,
			o.Email,
			o.Phone,
			string(o.Status),
			strconv.Itoa(seats),
			strconv.Itoa(rooms),
			o.VoucherCode,
			strconv.FormatInt(o.TotalPrice, 10),
			strconv.FormatInt(o.DiscountAmount, 10),
			strconv.FormatInt(o.FinalPrice, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
