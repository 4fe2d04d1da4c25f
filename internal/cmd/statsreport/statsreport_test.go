package statsreport

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bubblecraft/runeforge/internal/reward"
	"github.com/bubblecraft/runeforge/internal/storage"
	"github.com/bubblecraft/runeforge/internal/storage/sqlite"
)

func TestParseConfigFlagsOverrideDefaults(t *testing.T) {
	fs := flag.NewFlagSet("statsreport", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "/tmp/test.db", "-top", "3", "-actor", "sarah"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.Top != 3 {
		t.Fatalf("top = %d, want 3", cfg.Top)
	}
	if cfg.Actor != "sarah" {
		t.Fatalf("actor = %q, want sarah", cfg.Actor)
	}
}

func TestReportPrintsGlobalAndActorSections(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rolls.db")
	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := store.RecordRoll(ctx, storage.RollRecord{
			ActorID:     "sarah",
			ActorName:   "Sarah",
			Tier:        reward.Rare,
			PrizeID:     "sharpness",
			PrizeName:   "Sharpness",
			PrizeLevel:  1,
			PrimaryCost: 1200,
		})
		if err != nil {
			t.Fatalf("record roll: %v", err)
		}
	}

	var buf bytes.Buffer
	cfg := Config{Top: 5, Actor: "sarah", Recent: 5}
	if err := Report(ctx, store, cfg, &buf); err != nil {
		t.Fatalf("report: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Total rolls:\t2",
		"Unique actors:\t1",
		"Sarah",
		"Rank:\t1",
		"sharpness",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}
}

func TestReportActorMissingStats(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rolls.db")
	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	var buf bytes.Buffer
	cfg := Config{Top: 5, Actor: "ghost"}
	if err := Report(context.Background(), store, cfg, &buf); err == nil {
		t.Fatal("expected error for actor with no stats")
	}
}
