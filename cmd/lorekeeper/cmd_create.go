package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branwick/lorekeeper/internal/hierarchy"
	"github.com/branwick/lorekeeper/internal/models"
)

func createCmd() *cobra.Command {
	var (
		campaignID string
		fields     []string
		content    string
	)

	cmd := &cobra.Command{
		Use:   "create <module> <name>",
		Short: "Create a new entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := newDeps()
			cid, err := d.resolveCampaign(campaignID)
			if err != nil {
				return err
			}
			moduleID, name := args[0], args[1]

			fm, err := parseFieldFlags(fields)
			if err != nil {
				return err
			}
			if fm == nil {
				fm = models.Frontmatter{}
			}
			fm["name"] = name

			// Validation runs before any write.
			if err := hierarchy.ValidateUpdate(d.store, cid, moduleID, "", fm); err != nil {
				return err
			}

			entity, err := d.store.Create(cid, moduleID, models.EntityInput{
				Frontmatter: fm,
				Content:     content,
			})
			if err != nil {
				return fmt.Errorf("create: %w", err)
			}

			fmt.Printf("Created %s/%s (%s)\n", moduleID, entity.ID, name)
			return nil
		},
	}

	cmd.Flags().StringVar(&campaignID, "campaign", "", "campaign id (default: active campaign)")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "frontmatter field as key=value (repeatable)")
	cmd.Flags().StringVar(&content, "content", "", "free-text body content")
	return cmd
}
