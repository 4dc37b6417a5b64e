package loancalc

import "math"

// Details is the repayment breakdown for a simple daily-interest loan.
type Details struct {
	Principal      float64 `json:"principal"`
	DailyRate      float64 `json:"daily_rate"`
	TenureDays     int     `json:"tenure_days"`
	TotalInterest  float64 `json:"total_interest"`
	TotalRepayment float64 `json:"total_repayment"`
}

// Calculate computes interest as principal * rate%/day * days, rounded to
// 2 decimal places. Repayment is always principal + interest.
func Calculate(principal, dailyRate float64, tenureDays int) Details {
	interest := round2(principal * dailyRate / 100 * float64(tenureDays))
	return Details{
		Principal:      principal,
		DailyRate:      dailyRate,
		TenureDays:     tenureDays,
		TotalInterest:  interest,
		TotalRepayment: round2(principal + interest),
	}
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
