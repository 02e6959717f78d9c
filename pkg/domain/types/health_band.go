package types

// HealthBand is the display band of a department health score
type HealthBand string

const (
	HealthBandExcellent      HealthBand = "Excellent"
	HealthBandGood           HealthBand = "Good"
	HealthBandNeedsAttention HealthBand = "Needs Attention"
)

// BandForScore maps a 0-100 health score to its band
func BandForScore(score float64) HealthBand {
	switch {
	case score >= 80:
		return HealthBandExcellent
	case score >= 60:
		return HealthBandGood
	default:
		return HealthBandNeedsAttention
	}
}

// Color returns the display colour name of the band
func (b HealthBand) Color() string {
	switch b {
	case HealthBandExcellent:
		return "green"
	case HealthBandGood:
		return "amber"
	default:
		return "red"
	}
}

func (b HealthBand) String() string {
	return string(b)
}
