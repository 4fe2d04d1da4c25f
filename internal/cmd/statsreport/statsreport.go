// Package statsreport parses reporting flags and prints roll
// statistics from a store file.
package statsreport

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	entrypoint "github.com/bubblecraft/runeforge/internal/platform/cmd"
	"github.com/bubblecraft/runeforge/internal/reward"
	"github.com/bubblecraft/runeforge/internal/storage"
	"github.com/bubblecraft/runeforge/internal/storage/sqlite"
)

// Config holds statsreport command configuration.
type Config struct {
	DBPath string `env:"RUNEFORGE_DB_PATH" envDefault:"runeforge.db"`
	Top    int    `env:"RUNEFORGE_TOP_LIMIT" envDefault:"10"`
	Actor  string
	Recent int
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the roll store file")
	fs.IntVar(&cfg.Top, "top", cfg.Top, "Leaderboard depth")
	fs.StringVar(&cfg.Actor, "actor", "", "Report one actor's stats and recent rolls")
	fs.IntVar(&cfg.Recent, "recent", 5, "Recent rolls to list for -actor")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the store and prints the report to stdout.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStatsReport, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open roll store: %w", err)
		}
		defer store.Close()
		return Report(ctx, store, cfg, os.Stdout)
	})
}

// Report writes global, leaderboard and optional per-actor sections.
func Report(ctx context.Context, store storage.RollStore, cfg Config, out io.Writer) error {
	global, err := store.GetGlobalStats(ctx)
	if err != nil {
		return fmt.Errorf("global stats: %w", err)
	}
	fmt.Fprintf(out, "Total rolls:\t%d\n", global.TotalRolls)
	fmt.Fprintf(out, "Primary spent:\t%d\n", global.TotalPrimarySpent)
	fmt.Fprintf(out, "Secondary spent:\t%d\n", global.TotalSecondarySpent)
	fmt.Fprintf(out, "Unique actors:\t%d\n", global.UniqueActors)

	distribution, err := store.GetTierDistribution(ctx)
	if err != nil {
		return fmt.Errorf("tier distribution: %w", err)
	}
	fmt.Fprintln(out, "\nTier distribution:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, tier := range reward.Tiers() {
		fmt.Fprintf(w, "  %s\t%d\n", tier, distribution[tier])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	top, err := store.GetTopPlayers(ctx, cfg.Top)
	if err != nil {
		return fmt.Errorf("top players: %w", err)
	}
	fmt.Fprintf(out, "\nTop %d by rolls:\n", cfg.Top)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, player := range top {
		fmt.Fprintf(w, "  %d.\t%s\t%d\n", i+1, player.ActorName, player.TotalRolls)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if cfg.Actor == "" {
		return nil
	}
	return reportActor(ctx, store, cfg, out)
}

func reportActor(ctx context.Context, store storage.RollStore, cfg Config, out io.Writer) error {
	agg, err := store.GetPlayerStats(ctx, cfg.Actor)
	if err != nil {
		return fmt.Errorf("player stats for %s: %w", cfg.Actor, err)
	}
	rank, err := store.GetRank(ctx, cfg.Actor)
	if err != nil {
		return fmt.Errorf("rank for %s: %w", cfg.Actor, err)
	}

	fmt.Fprintf(out, "\nActor %s (%s):\n", agg.ActorName, agg.ActorID)
	fmt.Fprintf(out, "  Rank:\t%d\n", rank)
	fmt.Fprintf(out, "  Total rolls:\t%d\n", agg.TotalRolls)
	fmt.Fprintf(out, "  Primary spent:\t%d\n", agg.TotalPrimarySpent)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, tier := range reward.Tiers() {
		if count := agg.TierRolls[tier]; count > 0 {
			fmt.Fprintf(w, "  %s\t%d\n", tier, count)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if cfg.Recent <= 0 {
		return nil
	}
	recent, err := store.GetRecentRolls(ctx, cfg.Actor, cfg.Recent)
	if err != nil {
		return fmt.Errorf("recent rolls for %s: %w", cfg.Actor, err)
	}
	fmt.Fprintln(out, "\n  Recent rolls:")
	for _, record := range recent {
		fmt.Fprintf(out, "    %s  %s  %s (cost %d)\n",
			record.Timestamp.Format("2006-01-02 15:04:05"),
			record.Tier,
			record.PrizeID,
			record.PrimaryCost,
		)
	}
	return nil
}
