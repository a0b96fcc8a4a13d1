/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/

// The renumber command rewrites folder and bookmark order into dense
// 0..n-1 sequences, repairing gaps or duplicates left behind by older
// clients that saved orders one row at a time.
//
// Example usage:
//
//	moohub renumber --user=6f1c...
//	moohub renumber
package cmd

import (
	"fmt"

	"github.com/seckatie/moohub/internal/core"
	"github.com/spf13/cobra"
)

// renumberCmd represents the renumber command
var renumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Repair folder and bookmark ordering in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRenumber(cmd)
	},
}

func runRenumber(cmd *cobra.Command) error {
	logger, err := initLogger(cmd)
	if err != nil {
		return err
	}
	log := core.Component(logger, "renumber")

	database, err := initDB(cmd, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	userID, err := cmd.Flags().GetString("user")
	if err != nil {
		return fmt.Errorf("failed to read --user: %w", err)
	}

	ctx := cmd.Context()
	userIDs := []string{userID}
	if userID == "" {
		if userIDs, err = database.ListUserIDs(ctx); err != nil {
			return err
		}
	}
	if len(userIDs) == 0 {
		log.Info("No users to renumber.")
		return nil
	}

	log.Infof("Renumbering bookmarks of %d user(s)...", len(userIDs))
	var failures int
	for _, id := range userIDs {
		if err := database.Renumber(ctx, id); err != nil {
			failures++
			log.Errorf("Renumber failed for user=%s: %v", id, err)
		}
	}
	if failures > 0 {
		return fmt.Errorf("renumbering finished with %d failure(s)", failures)
	}

	log.Info("Renumbering finished successfully.")
	return nil
}

func init() {
	rootCmd.AddCommand(renumberCmd)

	renumberCmd.Flags().String("user", "", "Renumber a single user id (default all users)")
}
