package property

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/crypto"
	"github.com/dumeirei/innflow-backend/internal/common/logger"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
)

// DemoTemplate 默认 WhatsApp 模板
const DemoTemplate = "Hi {{guest}}, your booking {{ref}} at {{property}} is confirmed for {{date}}. Secure your stay: {{link}}"

// SeedResult 初始化结果
type SeedResult struct {
	Seeded   bool
	Property *models.Property
	Rooms    []*models.Room
	Staff    []*models.Staff
}

// Seeder 首次启动时写入演示数据
type Seeder struct {
	db         *gorm.DB
	password   string
	bcryptCost int
}

// NewSeeder 创建初始化器，password 为全部演示账号的初始密码
func NewSeeder(db *gorm.DB, password string, bcryptCost int) *Seeder {
	return &Seeder{db: db, password: password, bcryptCost: bcryptCost}
}

// Seed 物业表为空时写入物业、季节价格、客房、布局、员工和租户
func (s *Seeder) Seed(ctx context.Context) (*SeedResult, error) {
	count, err := repository.NewPropertyRepository(s.db).Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return &SeedResult{}, nil
	}

	hash, err := crypto.HashPassword(s.password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	result := &SeedResult{Seeded: true}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property := demoProperty()
		propertyRepo := repository.NewPropertyRepository(tx)
		if err := propertyRepo.Create(ctx, property); err != nil {
			return err
		}

		rateRepo := repository.NewSeasonalRateRepository(tx)
		for i, rate := range demoRates(property.ID) {
			rate.Sort = i
			if err := rateRepo.Create(ctx, rate); err != nil {
				return err
			}
		}

		roomRepo := repository.NewRoomRepository(tx)
		rooms := demoRooms(property.ID)
		for _, room := range rooms {
			if err := roomRepo.Create(ctx, room); err != nil {
				return err
			}
		}

		property.LayoutGrid = []models.RoomPosition{
			{RoomID: rooms[0].ID, X: 0, Y: 0, W: 2, H: 2},
			{RoomID: rooms[1].ID, X: 2, Y: 0, W: 2, H: 2},
			{RoomID: rooms[2].ID, X: 0, Y: 2, W: 4, H: 2},
			{RoomID: rooms[3].ID, X: 4, Y: 0, W: 2, H: 4},
		}
		if err := propertyRepo.Update(ctx, property); err != nil {
			return err
		}

		staffRepo := repository.NewStaffRepository(tx)
		staff := demoStaff(property.ID, hash)
		for _, member := range staff {
			if err := staffRepo.Create(ctx, member); err != nil {
				return err
			}
		}

		tenantRepo := repository.NewTenantRepository(tx)
		for _, tenant := range demoTenants() {
			if err := tenantRepo.Create(ctx, tenant); err != nil {
				return err
			}
		}

		result.Property = property
		result.Rooms = rooms
		result.Staff = staff
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("演示数据初始化完成",
		logger.PropertyID(result.Property.ID),
		logger.Int("rooms", len(result.Rooms)),
		logger.Int("staff", len(result.Staff)),
	)
	return result, nil
}

func demoProperty() *models.Property {
	return &models.Property{
		Name:             "Ocean Whisper Lodge",
		Address:          "123 Beachfront Dr, Cape Town",
		ContactEmail:     "hello@oceanwhisper.com",
		ContactPhone:     "+27 21 555 0100",
		CheckInTime:      "14:00",
		CheckOutTime:     "10:00",
		PrimaryColor:     "#3B82F6",
		WhatsappTemplate: DemoTemplate,
		RefPrefix:        "INF",
		LastRefNumber:    12,
	}
}

func demoRates(propertyID int64) []*models.SeasonalRate {
	return []*models.SeasonalRate{
		{
			PropertyID: propertyID,
			Name:       "Peak Summer",
			StartDate:  models.MustParseDate("2024-12-01"),
			EndDate:    models.MustParseDate("2025-01-31"),
			Multiplier: 1.4,
		},
		{
			PropertyID: propertyID,
			Name:       "Easter Special",
			StartDate:  models.MustParseDate("2024-04-10"),
			EndDate:    models.MustParseDate("2024-04-20"),
			Multiplier: 1.25,
		},
	}
}

func demoRooms(propertyID int64) []*models.Room {
	room := func(number, roomType string, capacity int, price float64, desc, image string) *models.Room {
		return &models.Room{
			PropertyID:    propertyID,
			RoomNumber:    number,
			RoomType:      roomType,
			Capacity:      capacity,
			PricePerNight: price,
			Status:        models.RoomStatusActive,
			Description:   desc,
			Images:        []string{image},
		}
	}
	return []*models.Room{
		room("101", "Deluxe Suite", 2, 1200, "Sea facing view with private balcony.", "https://picsum.photos/400/300?random=1"),
		room("102", "Standard Room", 2, 850, "Cozy room with double bed.", "https://picsum.photos/400/300?random=2"),
		room("103", "Family Suite", 4, 1800, "Large unit with kitchenette.", "https://picsum.photos/400/300?random=3"),
		room("201", "Executive King", 2, 1500, "Premium luxury for business travelers.", "https://picsum.photos/400/300?random=4"),
	}
}

func demoStaff(propertyID int64, hash string) []*models.Staff {
	return []*models.Staff{
		{
			PropertyID:   propertyID,
			Name:         "Sarah Miller",
			Email:        "sarah@oceanwhisper.com",
			PasswordHash: hash,
			Role:         models.RoleBusinessAdmin,
			Access:       []string{"Full System"},
			Status:       models.StaffStatusActive,
		},
		{
			PropertyID:   propertyID,
			Name:         "John Doe",
			Email:        "john@oceanwhisper.com",
			PasswordHash: hash,
			Role:         models.RoleStaff,
			Access:       []string{"Bookings", "Calendar"},
			Status:       models.StaffStatusActive,
		},
		{
			PropertyID:   propertyID,
			Name:         "Platform Developer",
			Email:        "dev@innflow.com",
			PasswordHash: hash,
			Role:         models.RoleDeveloper,
			Access:       []string{"Platform Management"},
			Status:       models.StaffStatusActive,
		},
	}
}

func demoTenants() []*models.Tenant {
	return []*models.Tenant{
		{Name: "Ocean Whisper Lodge", Domain: "oceanwhisper.innflow.com", Plan: models.TenantPlanEnterprise, Status: models.TenantStatusActive, Users: 12},
		{Name: "Mountain Retreat B&B", Domain: "mountainretreat.innflow.com", Plan: models.TenantPlanStarter, Status: models.TenantStatusTrialing, Users: 3},
	}
}
