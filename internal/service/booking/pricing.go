// Package booking 提供预订定价、可用性、预订号及生命周期服务
package booking

import (
	"math"

	"github.com/dumeirei/innflow-backend/internal/models"
)

// NightlyRate 单晚价格明细
type NightlyRate struct {
	Date       models.Date `json:"date"`
	Multiplier float64     `json:"multiplier"`
	RateName   string      `json:"rate_name,omitempty"`
	Amount     float64     `json:"amount"`
}

// Quote 报价
type Quote struct {
	Nights        int           `json:"nights"`
	PricePerNight float64       `json:"price_per_night"`
	Subtotal      float64       `json:"subtotal"`
	Total         float64       `json:"total"`
	Breakdown     []NightlyRate `json:"breakdown"`
}

// ComputeStayTotal 计算入住总价
// 按 [checkIn, checkOut) 逐晚计价，首个覆盖该晚的季节价格生效，最后统一取整
func ComputeStayTotal(room *models.Room, checkIn, checkOut models.Date, rates []models.SeasonalRate) float64 {
	return ComputeQuote(room, checkIn, checkOut, rates).Total
}

// ComputeQuote 计算报价及逐晚明细，checkOut 不晚于 checkIn 时总价为 0
func ComputeQuote(room *models.Room, checkIn, checkOut models.Date, rates []models.SeasonalRate) *Quote {
	quote := &Quote{
		PricePerNight: room.PricePerNight,
		Breakdown:     []NightlyRate{},
	}
	if !checkOut.After(checkIn) {
		return quote
	}

	for night := checkIn; night.Before(checkOut); night = night.AddDays(1) {
		multiplier, name := 1.0, ""
		if rate := matchRate(night, rates); rate != nil {
			multiplier, name = rate.Multiplier, rate.Name
		}
		amount := room.PricePerNight * multiplier
		quote.Breakdown = append(quote.Breakdown, NightlyRate{
			Date:       night,
			Multiplier: multiplier,
			RateName:   name,
			Amount:     amount,
		})
		quote.Subtotal += amount
		quote.Nights++
	}

	quote.Total = math.Round(quote.Subtotal)
	return quote
}

// matchRate 按列表顺序返回首个包含该日期的季节价格
func matchRate(night models.Date, rates []models.SeasonalRate) *models.SeasonalRate {
	for i := range rates {
		if rates[i].Contains(night) {
			return &rates[i]
		}
	}
	return nil
}
