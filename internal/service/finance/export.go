package finance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
)

// CSVHeader 导出报表表头
const CSVHeader = "Reference,Guest Name,Room ID,Check-In,Check-Out,Total,Status,Payment Method"

// Export 导出结果
type Export struct {
	Filename string
	Content  []byte
	Rows     int
}

// ExportCSV 导出全部预订为 CSV 并记录审计
func (s *FinanceService) ExportCSV(ctx context.Context, propertyID int64, actor models.Actor) (*Export, error) {
	bookings, err := s.bookingRepo.ListAll(ctx, propertyID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	content := BookingsCSV(bookings)
	if _, err := s.auditService.Record(ctx, audit.Entry{
		PropertyID: propertyID,
		Actor:      actor,
		Action:     models.AuditActionFinancialExport,
		Details:    "Full ledger exported to CSV",
	}); err != nil {
		return nil, err
	}

	return &Export{
		Filename: fmt.Sprintf("innflow_report_%s.csv", models.DateOf(s.cfg.Now())),
		Content:  []byte(content),
		Rows:     len(bookings),
	}, nil
}

// BookingsCSV 生成报表，客人姓名原样加双引号，行间以 \n 分隔且末尾无换行
func BookingsCSV(bookings []*models.Booking) string {
	var sb strings.Builder
	sb.WriteString(CSVHeader)
	for _, b := range bookings {
		method := "N/A"
		if b.PaymentMethod != nil {
			method = string(*b.PaymentMethod)
		}
		sb.WriteByte('\n')
		sb.WriteString(strings.Join([]string{
			b.Reference,
			`"` + b.GuestName + `"`,
			strconv.FormatInt(b.RoomID, 10),
			b.CheckInDate.String(),
			b.CheckOutDate.String(),
			strconv.FormatFloat(b.TotalAmount, 'f', -1, 64),
			string(b.Status),
			method,
		}, ","))
	}
	return sb.String()
}
