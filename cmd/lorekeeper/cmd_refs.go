package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func refsCmd() *cobra.Command {
	var campaignID string

	cmd := &cobra.Command{
		Use:   "refs [target-id]",
		Short: "Show reverse references: which entities reference a target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := newDeps()
			cid, err := d.resolveCampaign(campaignID)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				refs, err := d.index.References(cid, args[0])
				if err != nil {
					return fmt.Errorf("refs: %w", err)
				}
				for _, r := range refs {
					fmt.Printf("%s/%s via %s\n", r.Module, r.EntityID, r.Field)
				}
				if len(refs) == 0 {
					fmt.Printf("Nothing references %s.\n", args[0])
				}
				return nil
			}

			all, err := d.index.ComputeReverseReferences(cid)
			if err != nil {
				return fmt.Errorf("refs: %w", err)
			}
			targets := make([]string, 0, len(all))
			for t := range all {
				targets = append(targets, t)
			}
			sort.Strings(targets)
			for _, t := range targets {
				fmt.Printf("%s:\n", t)
				for _, r := range all[t] {
					fmt.Printf("  %s/%s via %s\n", r.Module, r.EntityID, r.Field)
				}
			}
			if len(all) == 0 {
				fmt.Println("No references found.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&campaignID, "campaign", "", "campaign id (default: active campaign)")
	return cmd
}
