// Package main prints roll statistics from a store file.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	statsreportcmd "github.com/bubblecraft/runeforge/internal/cmd/statsreport"
)

func main() {
	cfg, err := statsreportcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[STATSREPORT] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := statsreportcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to report: %v", err)
	}
}
