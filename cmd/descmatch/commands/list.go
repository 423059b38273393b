package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored feature sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		sets, err := s.List(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOUNT\tDIM\tCREATED")
		for _, info := range sets {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", info.ID, info.Name, info.Count, info.Dim, info.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a stored feature set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := s.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		logger.Info("deleted", "id", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}
