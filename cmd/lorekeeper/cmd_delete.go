package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func deleteCmd() *cobra.Command {
	var campaignID string

	cmd := &cobra.Command{
		Use:   "delete <module> <id>",
		Short: "Delete an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := newDeps()
			cid, err := d.resolveCampaign(campaignID)
			if err != nil {
				return err
			}
			moduleID, id := args[0], args[1]

			removed, err := d.store.Delete(cid, moduleID, id)
			if err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			if !removed {
				fmt.Printf("Nothing to delete: %s/%s does not exist\n", moduleID, id)
				return nil
			}
			fmt.Printf("Deleted %s/%s\n", moduleID, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&campaignID, "campaign", "", "campaign id (default: active campaign)")
	return cmd
}
