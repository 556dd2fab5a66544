package model

// EquilibriumZone classifies a price relative to a swing range's midpoint.
type EquilibriumZone string

const (
	ZonePremium     EquilibriumZone = "PREMIUM"
	ZoneDiscount    EquilibriumZone = "DISCOUNT"
	ZoneEquilibrium EquilibriumZone = "EQUILIBRIUM"
)

// EquilibriumLevel is the output of the pure C5 classifier function.
type EquilibriumLevel struct {
	Range            SwingRange
	CurrentPrice     float64
	Equilibrium      float64
	Zone             EquilibriumZone
	DistancePoints   float64
	DistancePercent  float64
}
