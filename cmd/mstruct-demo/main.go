package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/metrics"
	"github.com/nicewolf/mstruct/internal/model"
	"github.com/nicewolf/mstruct/internal/runner"
)

const (
	appName = "mstruct-demo"
	version = "v0.1.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Replay a bar file through the market-structure strategy core",
		Version: version,
	}

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a CSV bar file for one symbol and print the resulting daily bias plan",
		RunE:  runReplay,
	}
	replayCmd.Flags().String("symbol", "ES", "Instrument symbol")
	replayCmd.Flags().String("date", "", "Local trading date, YYYY-MM-DD (required)")
	replayCmd.Flags().String("tz", "America/Chicago", "IANA timezone for session windows")
	replayCmd.Flags().Float64("tick-size", 0.25, "Instrument tick size")
	replayCmd.Flags().String("bars", "", "Path to a CSV bar file: timestamp,open,high,low,close,volume (required)")
	replayCmd.Flags().String("metrics-addr", "", "If set, serve Prometheus /metrics on this address until the replay completes")
	_ = replayCmd.MarkFlagRequired("date")
	_ = replayCmd.MarkFlagRequired("bars")

	rootCmd.AddCommand(replayCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	symbol, _ := cmd.Flags().GetString("symbol")
	dateLocal, _ := cmd.Flags().GetString("date")
	tz, _ := cmd.Flags().GetString("tz")
	tickSize, _ := cmd.Flags().GetFloat64("tick-size")
	barsPath, _ := cmd.Flags().GetString("bars")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	reg := metrics.NewRegistry()
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			log.Info().Str("addr", metricsAddr).Msg("serving /metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	bars, err := loadBarsCSV(barsPath)
	if err != nil {
		return err
	}
	log.Info().Str("symbol", symbol).Str("date", dateLocal).Int("bars", len(bars)).Msg("replaying bar stream")

	sc := runner.SymbolConfig{
		Symbol:      symbol,
		DateLocal:   dateLocal,
		Timezone:    tz,
		Sessions:    config.DefaultUSIndexFutures(symbol, tickSize),
		HtfSwings:   config.DefaultHtfSwingConfig(),
		Bos:         config.DefaultBosConfig(),
		Equilibrium: config.DefaultEquilibriumConfig(),
		Priority:    config.DefaultPriorityConfig(),
		TickSize:    tickSize,
	}
	for i := range sc.Sessions.Windows {
		sc.Sessions.Windows[i].TzIana = tz
	}

	results, err := runner.Run(context.Background(), []runner.SymbolConfig{sc}, func(s string) ([]model.Bar, error) {
		return bars, nil
	})
	if err != nil {
		return err
	}
	res := results[0]
	recordMetrics(reg, res)

	if res.Err != nil {
		log.Error().Err(res.Err).Str("symbol", symbol).Msg("replay failed")
		return res.Err
	}

	printPlan(res)
	return nil
}
