// Package main rolls dice notation from the command line and prints luck
// statistics for the rolled scopes.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	rollcmd "github.com/louisbranch/kobold-keeper/internal/cmd/roll"
	"github.com/louisbranch/kobold-keeper/internal/platform/config"
)

func main() {
	log.SetPrefix("[ROLL] ")
	cfg, err := rollcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %s", rollcmd.ErrorMessage(err, cfg.Locale))
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = rollcmd.Run(ctx, cfg, os.Stdout)
	stop()
	if err != nil {
		config.Exitf("%s", rollcmd.ErrorMessage(err, cfg.Locale))
	}
}
