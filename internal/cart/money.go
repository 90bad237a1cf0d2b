package cart

import "fmt"

// Money is an exact amount in cents.
type Money struct{ Cents int64 }

func (m Money) Add(o Money) Money   { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Mul(qty int64) Money { return Money{Cents: m.Cents * qty} }

// String formats with two decimals, e.g. 1998 -> "19.98".
func (m Money) String() string {
	c := m.Cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
