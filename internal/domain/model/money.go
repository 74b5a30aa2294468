package model

import (
	"fmt"
	"math"
)

// Amount is a monetary value in minor currency units (paise).
type Amount int64

// AmountFromFloat converts a decimal value, rounding half away from zero to 2 places.
func AmountFromFloat(v float64) Amount {
	return Amount(math.Round(v * 100))
}

// Float returns the decimal representation of the amount.
func (a Amount) Float() float64 {
	return float64(a) / 100
}

// MulRate applies a fractional rate and rounds to the nearest minor unit.
func (a Amount) MulRate(rate float64) Amount {
	return Amount(math.Round(float64(a) * rate))
}

func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
