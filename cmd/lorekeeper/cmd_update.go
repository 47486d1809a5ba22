package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branwick/lorekeeper/internal/hierarchy"
	"github.com/branwick/lorekeeper/internal/models"
	"github.com/branwick/lorekeeper/internal/store"
)

func updateCmd() *cobra.Command {
	var (
		campaignID string
		fields     []string
		unset      []string
		content    string
	)

	cmd := &cobra.Command{
		Use:   "update <module> <id>",
		Short: "Merge a partial update into an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := newDeps()
			cid, err := d.resolveCampaign(campaignID)
			if err != nil {
				return err
			}
			moduleID, id := args[0], args[1]

			fm, err := parseFieldFlags(fields)
			if err != nil {
				return err
			}
			for _, k := range unset {
				if fm == nil {
					fm = models.Frontmatter{}
				}
				fm[k] = nil
			}

			hasContent := cmd.Flags().Changed("content")
			if fm == nil && !hasContent {
				return fmt.Errorf("nothing to update: provide --field, --unset or --content")
			}

			upd := models.EntityUpdate{Frontmatter: fm}
			if hasContent {
				upd.Content = &content
			}

			// Parent changes are validated before any write.
			if err := hierarchy.ValidateUpdate(d.store, cid, moduleID, id, fm); err != nil {
				return err
			}

			entity, err := d.store.Update(cid, moduleID, id, upd)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("entity %q not found in module %q", id, moduleID)
				}
				return fmt.Errorf("update: %w", err)
			}

			fmt.Printf("Updated %s/%s\n", moduleID, entity.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&campaignID, "campaign", "", "campaign id (default: active campaign)")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "frontmatter field as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&unset, "unset", nil, "frontmatter key to remove (repeatable)")
	cmd.Flags().StringVar(&content, "content", "", "replacement body content")
	return cmd
}
