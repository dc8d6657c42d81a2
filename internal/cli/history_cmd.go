package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmelis/melodybot/internal/config"
	"github.com/dmelis/melodybot/internal/store"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <user-id>",
		Short: "Print a user's recent search queries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if limit == 0 {
				limit = cfg.History.Retention
			}

			db, err := store.Open(filepath.Join(paths.Data, "melodybot.db"), log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			entries := store.NewHistoryStore(db).Recent(userID, limit)
			if len(entries) == 0 {
				fmt.Println("no history for user", userID)
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Query)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "max entries to print (default: configured retention)")
	return cmd
}
