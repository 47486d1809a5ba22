package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branwick/lorekeeper/internal/campaign"
)

func campaignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "campaign",
		Short: "Show the active campaign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := newDeps()
			active, err := d.campaigns.GetActive()
			if err != nil {
				if errors.Is(err, campaign.ErrNoActiveCampaign) {
					fmt.Println("No active campaign. Set campaign.active in config or LOREKEEPER_CAMPAIGN_ACTIVE.")
					return nil
				}
				return err
			}
			fmt.Printf("Active campaign: %s\n", active.ID)
			fmt.Printf("Root: %s\n", active.Root)
			return nil
		},
	}
}
