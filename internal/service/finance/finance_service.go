// Package finance 提供营收统计、仪表盘、收银对账与报表导出
package finance

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/dumeirei/innflow-backend/internal/common/cache"
	"github.com/dumeirei/innflow-backend/internal/common/errors"
	"github.com/dumeirei/innflow-backend/internal/common/logger"
	"github.com/dumeirei/innflow-backend/internal/common/metrics"
	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/repository"
	"github.com/dumeirei/innflow-backend/internal/service/audit"
)

// OtherMethod 未填写支付方式的分组名
const OtherMethod = "Other"

// DefaultDashboardTTL 仪表盘缓存有效期
const DefaultDashboardTTL = 30 * time.Second

// Config 财务服务配置
type Config struct {
	DashboardTTL time.Duration
	Now          func() time.Time
}

// FinanceService 财务服务
type FinanceService struct {
	db           *gorm.DB
	bookingRepo  *repository.BookingRepository
	roomRepo     *repository.RoomRepository
	cashUpRepo   *repository.CashUpRepository
	auditService *audit.AuditService
	redis        *redis.Client
	cfg          Config
}

// NewFinanceService 创建财务服务，redisClient 为空时不缓存仪表盘
func NewFinanceService(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	roomRepo *repository.RoomRepository,
	cashUpRepo *repository.CashUpRepository,
	auditService *audit.AuditService,
	redisClient *redis.Client,
	cfg Config,
) *FinanceService {
	if cfg.DashboardTTL <= 0 {
		cfg.DashboardTTL = DefaultDashboardTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &FinanceService{
		db:           db,
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		cashUpRepo:   cashUpRepo,
		auditService: auditService,
		redis:        redisClient,
		cfg:          cfg,
	}
}

// Stats 营收汇总
type Stats struct {
	Revenue float64 `json:"revenue"`
	Paid    float64 `json:"paid"`
	Pending float64 `json:"pending"`
}

// MethodTotal 按支付方式汇总
type MethodTotal struct {
	Method string  `json:"method"`
	Label  string  `json:"label"`
	Total  float64 `json:"total"`
}

// Overview 财务页数据
type Overview struct {
	Stats     Stats         `json:"stats"`
	Breakdown []MethodTotal `json:"breakdown"`
}

// Overview 营收汇总及支付方式分布
func (s *FinanceService) Overview(ctx context.Context, propertyID int64) (*Overview, error) {
	bookings, err := s.bookingRepo.ListAll(ctx, propertyID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return &Overview{
		Stats:     ComputeStats(bookings),
		Breakdown: MethodBreakdown(bookings),
	}, nil
}

// ComputeStats 营收为未取消预订总额，已收为其中已支付部分
func ComputeStats(bookings []*models.Booking) Stats {
	var st Stats
	for _, b := range bookings {
		if b.IsCancelled() {
			continue
		}
		st.Revenue += b.TotalAmount
		if b.PaymentStatus == models.PaymentStatusPaid {
			st.Paid += b.TotalAmount
		}
	}
	st.Pending = st.Revenue - st.Paid
	return st
}

// MethodBreakdown 全部预订按支付方式汇总，按首次出现顺序排列
func MethodBreakdown(bookings []*models.Booking) []MethodTotal {
	index := make(map[string]int)
	var out []MethodTotal
	// bookings 为创建时间倒序
	for i := len(bookings) - 1; i >= 0; i-- {
		b := bookings[i]
		key, label := OtherMethod, OtherMethod
		if b.PaymentMethod != nil {
			key, label = string(*b.PaymentMethod), b.PaymentMethod.Label()
		}
		pos, ok := index[key]
		if !ok {
			pos = len(out)
			index[key] = pos
			out = append(out, MethodTotal{Method: key, Label: label})
		}
		out[pos].Total += b.TotalAmount
	}
	return out
}

// DailyRevenue 某日新建预订金额
type DailyRevenue struct {
	Date    string  `json:"date"`
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
}

// RecentBooking 最近动态
type RecentBooking struct {
	ID          int64                `json:"id"`
	Reference   string               `json:"reference"`
	GuestName   string               `json:"guest_name"`
	Status      models.BookingStatus `json:"status"`
	TotalAmount float64              `json:"total_amount"`
}

// Dashboard 仪表盘数据
type Dashboard struct {
	CheckInsToday  int64           `json:"check_ins_today"`
	CheckOutsToday int64           `json:"check_outs_today"`
	OccupancyRate  int             `json:"occupancy_rate"`
	AvailableRooms int64           `json:"available_rooms"`
	TotalRevenue   float64         `json:"total_revenue"`
	RevenueSeries  []DailyRevenue  `json:"revenue_series"`
	Recent         []RecentBooking `json:"recent"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

func dashboardKey(propertyID int64) string {
	return cache.BuildKey(cache.KeyPrefixDashboard, strconv.FormatInt(propertyID, 10))
}

// Dashboard 读取仪表盘，优先使用缓存
func (s *FinanceService) Dashboard(ctx context.Context, propertyID int64) (*Dashboard, error) {
	if s.redis != nil {
		var cached Dashboard
		err := cache.GetJSON(ctx, s.redis, dashboardKey(propertyID), &cached)
		if err == nil {
			metrics.GetMetrics().RecordCacheHit("dashboard")
			return &cached, nil
		}
		metrics.GetMetrics().RecordCacheMiss("dashboard")
		if !cache.IsMiss(err) {
			logger.Warn("读取仪表盘缓存失败", logger.PropertyID(propertyID), logger.Err(err))
		}
	}
	return s.RefreshDashboard(ctx, propertyID)
}

// RefreshDashboard 重新计算仪表盘并写入缓存
func (s *FinanceService) RefreshDashboard(ctx context.Context, propertyID int64) (*Dashboard, error) {
	d, err := s.computeDashboard(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	metrics.GetMetrics().SetOccupancyRate(float64(d.OccupancyRate))

	if s.redis != nil {
		if err := cache.SetJSON(ctx, s.redis, dashboardKey(propertyID), d, s.cfg.DashboardTTL); err != nil {
			logger.Warn("写入仪表盘缓存失败", logger.PropertyID(propertyID), logger.Err(err))
		}
	}
	return d, nil
}

// InvalidateDashboard 清除仪表盘缓存
func (s *FinanceService) InvalidateDashboard(ctx context.Context, propertyID int64) {
	if s.redis == nil {
		return
	}
	if err := cache.Delete(ctx, s.redis, dashboardKey(propertyID)); err != nil {
		logger.Warn("清除仪表盘缓存失败", logger.PropertyID(propertyID), logger.Err(err))
	}
}

func (s *FinanceService) computeDashboard(ctx context.Context, propertyID int64) (*Dashboard, error) {
	now := s.cfg.Now()
	today := models.DateOf(now)
	d := &Dashboard{GeneratedAt: now}

	var err error
	if d.CheckInsToday, err = s.bookingRepo.CountCheckIns(ctx, propertyID, today); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if d.CheckOutsToday, err = s.bookingRepo.CountCheckOuts(ctx, propertyID, today); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	checkedIn, err := s.bookingRepo.CountByStatus(ctx, propertyID, models.BookingStatusCheckedIn)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	rooms, err := s.roomRepo.Count(ctx, propertyID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	d.OccupancyRate = OccupancyRate(checkedIn, rooms)
	d.AvailableRooms = rooms - checkedIn
	if d.AvailableRooms < 0 {
		d.AvailableRooms = 0
	}
	if d.TotalRevenue, err = s.bookingRepo.SumRevenue(ctx, propertyID); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	first := today.AddDays(-6)
	since := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, now.Location())
	recent, err := s.bookingRepo.ListCreatedSince(ctx, propertyID, since)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	d.RevenueSeries = RevenueSeries(recent, first, now.Location())

	all, err := s.bookingRepo.ListAll(ctx, propertyID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	d.Recent = RecentActivity(all, 4)
	return d, nil
}

// OccupancyRate 在住预订数占客房数的百分比，四舍五入
func OccupancyRate(checkedIn, rooms int64) int {
	if rooms <= 0 {
		return 0
	}
	return int(math.Round(float64(checkedIn) / float64(rooms) * 100))
}

// RevenueSeries 从 first 起连续 7 天，按创建日期汇总未取消预订金额
func RevenueSeries(bookings []*models.Booking, first models.Date, loc *time.Location) []DailyRevenue {
	series := make([]DailyRevenue, 7)
	pos := make(map[string]int, 7)
	for i := range series {
		day := first.AddDays(i)
		series[i] = DailyRevenue{Date: day.String(), Day: day.Time().Weekday().String()[:3]}
		pos[day.String()] = i
	}
	for _, b := range bookings {
		if b.IsCancelled() {
			continue
		}
		key := models.DateOf(b.CreatedAt.In(loc)).String()
		if i, ok := pos[key]; ok {
			series[i].Revenue += b.TotalAmount
		}
	}
	return series
}

// RecentActivity 最近的已确认或在住预订，最新在前
func RecentActivity(bookings []*models.Booking, limit int) []RecentBooking {
	out := make([]RecentBooking, 0, limit)
	for _, b := range bookings {
		if len(out) == limit {
			break
		}
		if b.Status != models.BookingStatusConfirmed && b.Status != models.BookingStatusCheckedIn {
			continue
		}
		out = append(out, RecentBooking{
			ID:          b.ID,
			Reference:   b.Reference,
			GuestName:   b.GuestName,
			Status:      b.Status,
			TotalAmount: b.TotalAmount,
		})
	}
	return out
}
