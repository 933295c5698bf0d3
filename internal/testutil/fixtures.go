package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/models"
)

// NewTestProperty 构造测试物业
func NewTestProperty() *models.Property {
	return &models.Property{
		Name:             "Ocean Whisper Lodge",
		Address:          "123 Beachfront Dr, Cape Town",
		ContactEmail:     "hello@oceanwhisper.com",
		ContactPhone:     "+27 82 000 0000",
		StaffWhatsapp:    "+27 82 111 2222",
		CheckInTime:      "14:00",
		CheckOutTime:     "10:00",
		PrimaryColor:     "#3B82F6",
		WhatsappTemplate: "Hi {{guest}}, your booking {{ref}} at {{property}} is confirmed for {{date}}. Secure your stay: {{link}}",
		RefPrefix:        "INF",
		LastRefNumber:    12,
	}
}

// NewTestRoom 构造测试客房
func NewTestRoom(propertyID int64, number string, price float64) *models.Room {
	return &models.Room{
		PropertyID:    propertyID,
		RoomNumber:    number,
		RoomType:      "Standard Room",
		Capacity:      2,
		PricePerNight: price,
		Status:        models.RoomStatusActive,
	}
}

// NewTestBooking 构造测试预订
func NewTestBooking(propertyID, roomID int64, checkIn, checkOut string) *models.Booking {
	return &models.Booking{
		PropertyID:    propertyID,
		Reference:     "INF-2024-" + RandomString(6),
		RoomID:        roomID,
		GuestName:     "Guest " + RandomString(4),
		GuestEmail:    "guest@example.com",
		GuestPhone:    RandomPhone(),
		GuestCount:    2,
		CheckInDate:   models.MustParseDate(checkIn),
		CheckOutDate:  models.MustParseDate(checkOut),
		TotalAmount:   1000,
		Status:        models.BookingStatusConfirmed,
		PaymentStatus: models.PaymentStatusPending,
		Source:        models.BookingSourceAdmin,
	}
}

// SeedProperty 写入物业及客房，返回物业和客房
func SeedProperty(t *testing.T, db *gorm.DB, roomPrices ...float64) (*models.Property, []*models.Room) {
	t.Helper()

	property := NewTestProperty()
	require.NoError(t, db.Create(property).Error)

	rooms := make([]*models.Room, 0, len(roomPrices))
	for i, price := range roomPrices {
		room := NewTestRoom(property.ID, string(rune('1'+i))+"01", price)
		require.NoError(t, db.Create(room).Error)
		rooms = append(rooms, room)
	}
	return property, rooms
}

// SeedBooking 写入预订
func SeedBooking(t *testing.T, db *gorm.DB, b *models.Booking) *models.Booking {
	t.Helper()
	require.NoError(t, db.Create(b).Error)
	return b
}
