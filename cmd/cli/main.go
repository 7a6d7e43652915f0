package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"vaeval/internal/config"
	"vaeval/internal/container"
	"vaeval/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:           "vaeval",
		Short:         "Validate and score verbal autopsy cause-of-death classifiers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newValidateCmd(),
		newCombineCmd(),
		newSummarizeCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}

// storeFlags select where results are written and read
type storeFlags struct {
	outdir string
	format string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.outdir, "outdir", "", "output directory (default $OUTPUT_DIR/<analysis>)")
	cmd.Flags().StringVar(&f.format, "format", "", "result format: csv, xlsx or postgres (default $OUTPUT_FORMAT)")
}

// loadConfig reads the environment and applies the store flags. Without
// --outdir, results go to a per-analysis subdirectory of OUTPUT_DIR.
func loadConfig(f storeFlags, subdir string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.outdir != "" {
		cfg.Output.Dir = f.outdir
	} else if subdir != "" {
		cfg.Output.Dir = filepath.Join(cfg.Output.Dir, subdir)
	}
	return cfg, nil
}

// openContainer validates cfg and connects the configured archive
func openContainer(ctx context.Context, cfg *config.Config) (*container.Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
