package market

// Direction is the side of a trade.
type Direction int

const (
	Long Direction = iota + 1
	Short
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	}
	return "UNKNOWN"
}

// Sign returns +1 for long, -1 for short. Used wherever P/L math flips with
// the trade side.
func (d Direction) Sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}
