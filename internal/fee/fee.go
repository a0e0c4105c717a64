// Package fee derives overdue status and monetary totals from a vehicle's
// readiness date. Fee evaluation is advisory: malformed input degrades to an
// Error result with zero fees (extras still carried) instead of failing, so
// it can never block an otherwise valid occupancy mutation.
package fee

import (
	"time"

	"github.com/shopspring/decimal"

	"vehicle-storage-backend/config"
	"vehicle-storage-backend/internal/model"
)

// Calculator computes overdue fees from a fixed schedule.
type Calculator struct {
	graceDays int
	baseFee   decimal.Decimal
	dailyRate decimal.Decimal
}

// NewCalculator builds a Calculator from the configured fee schedule.
// Unparseable amounts are treated as zero.
func NewCalculator(cfg config.FeeConfig) *Calculator {
	base, err := decimal.NewFromString(cfg.BaseFee)
	if err != nil {
		base = decimal.Zero
	}
	rate, err := decimal.NewFromString(cfg.DailyRate)
	if err != nil {
		rate = decimal.Zero
	}
	return &Calculator{
		graceDays: cfg.GraceDays,
		baseFee:   base,
		dailyRate: rate,
	}
}

// GraceDays returns the configured grace-period length.
func (c *Calculator) GraceDays() int {
	return c.graceDays
}

// Calculate evaluates the fee for a readiness date at the given time.
// readyDate is a "2006-01-02" date or empty; whole days are counted from the
// readiness date at midnight, so the optional readiness time of day never
// shifts the grace window.
func (c *Calculator) Calculate(readyDate string, extras []model.Extra, now time.Time) model.FeeResult {
	extrasTotal := decimal.Zero
	for _, e := range extras {
		extrasTotal = extrasTotal.Add(e.Cost)
	}

	if readyDate == "" {
		return model.FeeResult{
			Status:      model.StatusNoAppointment,
			ExtrasTotal: extrasTotal,
			GrandTotal:  extrasTotal,
		}
	}

	ready, err := time.Parse(model.DateLayout, readyDate)
	if err != nil {
		return model.FeeResult{
			Status:      model.StatusError,
			ExtrasTotal: extrasTotal,
			GrandTotal:  extrasTotal,
		}
	}

	// Compare calendar dates, not instants: now carries the server's zone
	// offset and instant arithmetic would shift the day count near midnight.
	nowDay, _ := time.Parse(model.DateLayout, now.Format(model.DateLayout))
	elapsed := int(nowDay.Sub(ready).Hours() / 24)
	if elapsed <= c.graceDays {
		return model.FeeResult{
			Status:      model.StatusWithinGracePeriod,
			ExtrasTotal: extrasTotal,
			GrandTotal:  extrasTotal,
		}
	}

	overdueDays := elapsed - c.graceDays
	dailyFeeTotal := c.dailyRate.Mul(decimal.NewFromInt(int64(overdueDays)))
	totalFee := c.baseFee.Add(dailyFeeTotal)

	status := model.StatusSeverelyOverdue
	switch {
	case overdueDays <= 3:
		status = model.StatusMildlyOverdue
	case overdueDays <= 7:
		status = model.StatusOverdue
	}

	return model.FeeResult{
		Status:        status,
		OverdueDays:   overdueDays,
		BaseFee:       c.baseFee,
		DailyFeeTotal: dailyFeeTotal,
		TotalFee:      totalFee,
		ExtrasTotal:   extrasTotal,
		GrandTotal:    totalFee.Add(extrasTotal),
	}
}
