package booking

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/models"
)

// CalendarCell 房态日历单元格，未占用时仅有日期
type CalendarCell struct {
	Date      models.Date          `json:"date"`
	BookingID int64                `json:"booking_id,omitempty"`
	Reference string               `json:"reference,omitempty"`
	GuestName string               `json:"guest_name,omitempty"`
	Status    models.BookingStatus `json:"status,omitempty"`
	Color     string               `json:"color,omitempty"`
}

// CalendarRow 单个客房一个月的房态
type CalendarRow struct {
	RoomID     int64          `json:"room_id"`
	RoomNumber string         `json:"room_number"`
	RoomType   string         `json:"room_type"`
	Cells      []CalendarCell `json:"cells"`
}

// Calendar 月度房态
type Calendar struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []models.Date `json:"days"`
	Rows  []CalendarRow `json:"rows"`
}

// Calendar 获取某月房态，每格为当日入住中的未取消预订
func (s *BookingService) Calendar(ctx context.Context, propertyID int64, year int, month time.Month) (*Calendar, error) {
	if month < time.January || month > time.December || year < 1970 {
		return nil, errors.ErrInvalidParams.WithMessage("无效的年月")
	}

	first := models.NewDate(year, month, 1)
	next := models.NewDate(year, month+1, 1)

	bookings, err := s.bookingRepo.ListOverlapping(ctx, propertyID, first, next)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	rooms, err := s.roomRepo.List(ctx, propertyID, nil)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	cal := &Calendar{Year: year, Month: int(month), Rows: make([]CalendarRow, 0, len(rooms))}
	for d := first; d.Before(next); d = d.AddDays(1) {
		cal.Days = append(cal.Days, d)
	}

	for _, room := range rooms {
		row := CalendarRow{
			RoomID:     room.ID,
			RoomNumber: room.RoomNumber,
			RoomType:   room.RoomType,
			Cells:      make([]CalendarCell, 0, len(cal.Days)),
		}
		for _, d := range cal.Days {
			cell := CalendarCell{Date: d}
			if b := OccupantOn(room.ID, d, bookings); b != nil {
				cell.BookingID = b.ID
				cell.Reference = b.Reference
				cell.GuestName = b.GuestName
				cell.Status = b.Status
				cell.Color = b.Status.Color()
			}
			row.Cells = append(row.Cells, cell)
		}
		cal.Rows = append(cal.Rows, row)
	}
	return cal, nil
}

// QuoteRequest 报价请求
type QuoteRequest struct {
	RoomID       int64       `form:"room_id" json:"room_id" binding:"required"`
	CheckInDate  models.Date `form:"check_in_date" json:"check_in_date"`
	CheckOutDate models.Date `form:"check_out_date" json:"check_out_date"`
}

// QuoteInfo 报价结果
type QuoteInfo struct {
	*Quote
	RoomID     int64  `json:"room_id"`
	RoomNumber string `json:"room_number"`
	Available  bool   `json:"available"`
}

// Quote 报价，同时返回当前是否可订
func (s *BookingService) Quote(ctx context.Context, req *QuoteRequest) (*QuoteInfo, error) {
	if err := s.validateStay(req.CheckInDate, req.CheckOutDate); err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	property, err := s.propertyRepo.GetByIDWithRates(ctx, room.PropertyID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPropertyNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	existing, err := s.bookingRepo.ListActiveByRoom(ctx, room.ID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	return &QuoteInfo{
		Quote:      ComputeQuote(room, req.CheckInDate, req.CheckOutDate, property.SeasonalRates),
		RoomID:     room.ID,
		RoomNumber: room.RoomNumber,
		Available:  room.Status == models.RoomStatusActive && IsRoomAvailable(room.ID, req.CheckInDate, req.CheckOutDate, existing),
	}, nil
}

// AvailabilityRequest 可订客房查询
type AvailabilityRequest struct {
	CheckInDate  models.Date `form:"check_in_date"`
	CheckOutDate models.Date `form:"check_out_date"`
	Guests       int         `form:"guests"`
}

// AvailableRooms 区间内可订且容量满足的在售客房
func (s *BookingService) AvailableRooms(ctx context.Context, propertyID int64, req *AvailabilityRequest) ([]*models.Room, error) {
	if err := s.validateStay(req.CheckInDate, req.CheckOutDate); err != nil {
		return nil, err
	}

	rooms, err := s.roomRepo.List(ctx, propertyID, map[string]interface{}{
		"status":       models.RoomStatusActive,
		"min_capacity": req.Guests,
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	bookings, err := s.bookingRepo.ListOverlapping(ctx, propertyID, req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	available := make([]*models.Room, 0, len(rooms))
	for _, room := range rooms {
		if IsRoomAvailable(room.ID, req.CheckInDate, req.CheckOutDate, bookings) {
			available = append(available, room)
		}
	}
	return available, nil
}
