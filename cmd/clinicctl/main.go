// Command clinicctl inspects and maintains the clinic data store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/mmynk/clinicbook/internal/config"
	"github.com/mmynk/clinicbook/internal/service"
	"github.com/mmynk/clinicbook/internal/storage"
	"github.com/mmynk/clinicbook/internal/storage/backends"
	"github.com/mmynk/clinicbook/pkg/logging"
)

var (
	envFile = flag.String("env", ".env", "dotenv file read before the environment")
	raw     = flag.Bool("raw", false, "print markdown without terminal rendering")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&clientsCmd{}, "reports")
	commander.Register(&statementCmd{}, "reports")
	commander.Register(&statusCmd{}, "reports")

	commander.Register(&recomputeCmd{}, "maintenance")
	commander.Register(&exportCmd{}, "maintenance")
	commander.Register(&clearCmd{}, "maintenance")
	commander.Register(&hashPasscodeCmd{}, "maintenance")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// openPractice loads the practice from the configured backend. The sample
// roster is never installed from the command line. A read-only practice
// leaves the store untouched, even when Load repairs stale ledgers.
func openPractice(ctx context.Context, readOnly bool) (*service.Practice, *config.Config, func(), error) {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	backend, err := backends.Open(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}

	store := storage.NewStore(backend, storage.WithLogger(logger))
	opts := []service.Option{service.WithLogger(logger)}
	if readOnly {
		opts = append(opts, service.WithReadOnly())
	}
	practice := service.NewPractice(store, opts...)
	practice.Load(ctx)

	closeFn := func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}
	return practice, cfg, closeFn, nil
}

// printMarkdown renders md for the terminal unless -raw is set.
func printMarkdown(w io.Writer, md string) {
	if *raw {
		fmt.Fprint(w, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	fmt.Fprint(w, out)
}
