package booking

import (
	"github.com/dumeirei/innflow-backend/internal/models"
)

// IsRoomAvailable 客房在 [checkIn, checkOut) 内是否可订
// 已取消的预订不占用客房，首尾相接不算重叠
func IsRoomAvailable(roomID int64, checkIn, checkOut models.Date, existing []*models.Booking) bool {
	return len(Conflicts(roomID, checkIn, checkOut, existing)) == 0
}

// Conflicts 返回与候选区间冲突的预订
func Conflicts(roomID int64, checkIn, checkOut models.Date, existing []*models.Booking) []*models.Booking {
	var conflicts []*models.Booking
	for _, b := range existing {
		if b.RoomID != roomID || b.IsCancelled() {
			continue
		}
		if overlaps(checkIn, checkOut, b.CheckInDate, b.CheckOutDate) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

// overlaps 半开区间 [aStart, aEnd) 与 [bStart, bEnd) 是否相交
func overlaps(aStart, aEnd, bStart, bEnd models.Date) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// OccupantOn 返回某日占用客房的未取消预订（checkIn <= day < checkOut）
func OccupantOn(roomID int64, day models.Date, bookings []*models.Booking) *models.Booking {
	for _, b := range bookings {
		if b.RoomID != roomID || b.IsCancelled() {
			continue
		}
		if !day.Before(b.CheckInDate) && day.Before(b.CheckOutDate) {
			return b
		}
	}
	return nil
}
