package main

import (
	"fmt"

	"github.com/nicewolf/mstruct/internal/metrics"
	"github.com/nicewolf/mstruct/internal/runner"
)

func recordMetrics(reg *metrics.Registry, res runner.SymbolResult) {
	m := res.Levels.Metrics
	reg.BarsAccepted.WithLabelValues("sessionlevels", res.Symbol).Add(float64(m.BarsAccepted))
	reg.BarsRejected.WithLabelValues("sessionlevels", res.Symbol).Add(float64(m.BarsRejected))
	reg.BarsIgnored.WithLabelValues("sessionlevels", res.Symbol).Add(float64(m.BarsIgnored))

	reg.SwingsConfirmed.WithLabelValues(res.Symbol, "H1", "HIGH").Add(float64(len(res.Swings.H1.SwingHighs)))
	reg.SwingsConfirmed.WithLabelValues(res.Symbol, "H1", "LOW").Add(float64(len(res.Swings.H1.SwingLows)))
	reg.SwingsConfirmed.WithLabelValues(res.Symbol, "H4", "HIGH").Add(float64(len(res.Swings.H4.SwingHighs)))
	reg.SwingsConfirmed.WithLabelValues(res.Symbol, "H4", "LOW").Add(float64(len(res.Swings.H4.SwingLows)))

	for _, sig := range res.BosSignals {
		reg.WindowsTriggered.WithLabelValues(res.Symbol, string(sig.Direction)).Inc()
	}
}

// printPlan renders a human-readable summary of the replay's output.
func printPlan(res runner.SymbolResult) {
	fmt.Printf("symbol=%s\n", res.Symbol)
	for _, lvl := range res.Levels.Levels {
		if !lvl.HasData() {
			continue
		}
		fmt.Printf("  session %-6s high=%.2f low=%.2f\n", lvl.Session, lvl.High, lvl.Low)
	}

	if res.Equilibrium != nil {
		fmt.Printf("  equilibrium zone=%s eq=%.2f distance=%.2f (%.2f%%)\n",
			res.Equilibrium.Zone, res.Equilibrium.Equilibrium, res.Equilibrium.DistancePoints, res.Equilibrium.DistancePercent*100)
	}

	for _, sig := range res.BosSignals {
		fmt.Printf("  bos %s pivot=%.2f confidence=%.3f strength=%.3f at %s\n",
			sig.Direction, sig.ReferencePivot.Price, sig.Confidence, sig.Strength, sig.EmittedAt.Format("15:04:05"))
	}

	if res.Plan == nil {
		fmt.Println("  no plan: insufficient levels")
		return
	}

	fmt.Printf("plan id=%s current_ref=%.2f\n", res.Plan.ID, res.Plan.CurrentRef)
	fmt.Println("  up targets:")
	for _, t := range res.Plan.UpTargets {
		fmt.Printf("    %-28s price=%.2f priority=%.4f status=%s\n", t.Level.ID, t.Level.Price, t.Priority, t.Status)
	}
	fmt.Println("  down targets:")
	for _, t := range res.Plan.DownTargets {
		fmt.Printf("    %-28s price=%.2f priority=%.4f status=%s\n", t.Level.ID, t.Level.Price, t.Priority, t.Status)
	}
}
