package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branwick/lorekeeper/internal/playerview"
)

func listCmd() *cobra.Command {
	var (
		campaignID string
		player     bool
	)

	cmd := &cobra.Command{
		Use:   "list <module>",
		Short: "List entities in a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := newDeps()
			cid, err := d.resolveCampaign(campaignID)
			if err != nil {
				return err
			}

			metas, err := d.store.List(cid, args[0])
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}
			if player {
				metas = playerview.FilterMetadataList(metas)
			}

			for _, m := range metas {
				fmt.Printf("%-28s %s\n", m.ID, m.Name)
			}
			if len(metas) == 0 {
				fmt.Println("No entities found.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&campaignID, "campaign", "", "campaign id (default: active campaign)")
	cmd.Flags().BoolVar(&player, "player", false, "player-safe view: hide hidden entities, strip DM-only fields")
	return cmd
}
