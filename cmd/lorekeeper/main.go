package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/branwick/lorekeeper/internal/campaign"
	"github.com/branwick/lorekeeper/internal/config"
	"github.com/branwick/lorekeeper/internal/lock"
	"github.com/branwick/lorekeeper/internal/relindex"
	"github.com/branwick/lorekeeper/internal/store"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "lorekeeper",
		Short: "Lorekeeper — campaign content manager",
		Long:  "Lorekeeper stores campaign entities (NPCs, locations, ships, factions) as individual text files with structured headers, with relationship indexing and a player-safe projection.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		listCmd(),
		getCmd(),
		createCmd(),
		updateCmd(),
		deleteCmd(),
		refsCmd(),
		campaignCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// deps bundles the wired store stack for a command invocation.
type deps struct {
	campaigns *campaign.Manager
	store     *store.Store
	index     *relindex.Index
	logger    *slog.Logger
}

func newDeps() *deps {
	logger := newLogger()
	campaigns := campaign.NewManager(cfg.Campaign.Root, cfg.Campaign.Active)
	locks := lock.NewManager(time.Duration(cfg.Lock.StallWarnSeconds)*time.Second, logger)
	modules := cfg.ModuleSet()
	st := store.New(campaigns, modules, locks, logger)

	// Relationship fields register once per module at startup.
	idx := relindex.New(st, logger)
	relindex.RegisterModules(idx, modules)

	return &deps{
		campaigns: campaigns,
		store:     st,
		index:     idx,
		logger:    logger,
	}
}

// resolveCampaign returns the --campaign flag value or the active campaign.
func (d *deps) resolveCampaign(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	active, err := d.campaigns.GetActive()
	if err != nil {
		return "", fmt.Errorf("no campaign selected (set campaign.active or pass --campaign): %w", err)
	}
	return active.ID, nil
}
