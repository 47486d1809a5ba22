package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/branwick/lorekeeper/internal/playerview"
	"github.com/branwick/lorekeeper/internal/store"
)

func getCmd() *cobra.Command {
	var (
		campaignID string
		player     bool
	)

	cmd := &cobra.Command{
		Use:   "get <module> <id>",
		Short: "Show one entity with its body content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := newDeps()
			cid, err := d.resolveCampaign(campaignID)
			if err != nil {
				return err
			}
			moduleID, id := args[0], args[1]

			entity, err := d.store.Get(cid, moduleID, id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("entity %q not found in module %q", id, moduleID)
				}
				return fmt.Errorf("get: %w", err)
			}
			if player {
				if playerview.IsHiddenFromPlayers(entity.Frontmatter) {
					return fmt.Errorf("entity %q not found in module %q", id, moduleID)
				}
				filtered := playerview.FilterEntity(*entity)
				entity = &filtered
			}

			keys := make([]string, 0, len(entity.Frontmatter))
			for k := range entity.Frontmatter {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s: %v\n", k, entity.Frontmatter[k])
			}
			if entity.Content != "" {
				fmt.Println()
				fmt.Println(entity.Content)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&campaignID, "campaign", "", "campaign id (default: active campaign)")
	cmd.Flags().BoolVar(&player, "player", false, "player-safe view")
	return cmd
}
