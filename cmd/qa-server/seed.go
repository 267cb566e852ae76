package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-qa-backend/internal/config"
	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/store"
	"github.com/tbourn/go-qa-backend/internal/sysutil"
)

func newSeedCmd() *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Inspect the startup seed",
	}
	seedCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Decode the configured seed and report how many questions it holds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			seed, err := loadSeed(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed ok: %d questions (%s)\n",
				len(seed), sysutil.SeedSource(cfg.SeedJSON, cfg.SeedPath))
			return nil
		},
	})
	return seedCmd
}

// loadSeed picks SEED_JSON, then SEED_PATH, then the embedded fixture.
func loadSeed(cfg config.Config) ([]domain.Question, error) {
	var (
		seed []domain.Question
		err  error
	)
	switch sysutil.SeedSource(cfg.SeedJSON, cfg.SeedPath) {
	case "inline":
		seed, err = store.LoadSeed(strings.NewReader(cfg.SeedJSON))
	case "file":
		seed, err = store.LoadSeedFile(cfg.SeedPath)
	default:
		seed, err = store.DefaultSeed()
	}
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	return seed, nil
}
