package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmarks/internal/logger"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage tags",
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := env.repo.FetchAllTags(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME")
		for _, t := range tags {
			fmt.Fprintf(w, "%d\t%s\n", t.ID, t.Name)
		}
		return w.Flush()
	},
}

var tagsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := env.repo.CreateTag(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created tag %s (%d)\n", tag.Name, tag.ID)
		return nil
	},
}

var tagsRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a tag and detach it from all bookmarks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := env.repo.GetTagByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		deleted, err := env.repo.DeleteTag(cmd.Context(), tag.ID)
		if err != nil {
			return err
		}
		env.log.Info("tag deleted", logger.Int64("id", deleted.ID), logger.String("name", deleted.Name))
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted tag %s\n", deleted.Name)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show bookmark, tag and link counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := env.repo.Stats(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "bookmarks: %d\n", st.Bookmarks)
		fmt.Fprintf(out, "tags:      %d\n", st.Tags)
		fmt.Fprintf(out, "links:     %d\n", st.Links)
		fmt.Fprintf(out, "database:  %s\n", env.repo.Path())
		return nil
	},
}

func init() {
	tagsCmd.AddCommand(tagsListCmd)
	tagsCmd.AddCommand(tagsAddCmd)
	tagsCmd.AddCommand(tagsRmCmd)
}
