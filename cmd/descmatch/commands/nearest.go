package commands

import (
	"database/sql"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/index"
)

var (
	nearestFrom     string
	nearestPosition int
	nearestK        int
	nearestExact    bool
)

var nearestCmd = &cobra.Command{
	Use:   "nearest <set-id>",
	Short: "Find the stored descriptors closest to one query descriptor",
	Long: `Find the k descriptors of a stored set closest to descriptor --position of
set --from. The search runs in SQL through the knn virtual table, or as an
exhaustive vec_l2 scan with --exact.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		from := nearestFrom
		if from == "" {
			from = args[0]
		}
		src, err := s.Load(ctx, from)
		if err != nil {
			return err
		}
		if nearestPosition < 0 || nearestPosition >= src.Len() {
			return fmt.Errorf("position %d outside [0, %d)", nearestPosition, src.Len())
		}
		query := src.Descriptors[nearestPosition]

		var found []index.Neighbor
		if nearestExact {
			found, err = s.NearestExact(ctx, args[0], query, nearestK)
		} else {
			found, err = nearestApprox(cmd, db, args[0], query)
		}
		if err != nil {
			return err
		}
		logger.Debug("nearest", "set", args[0], "from", from, "position", nearestPosition, "exact", nearestExact, "found", len(found))

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tPOSITION\tDISTANCE")
		for i, n := range found {
			fmt.Fprintf(w, "%d\t%d\t%.4f\n", i+1, n.Index, n.Distance)
		}
		return w.Flush()
	},
}

// nearestApprox queries a knn virtual table configured from the parameter
// file. Tables are named after their options so differing settings never
// share one.
func nearestApprox(cmd *cobra.Command, db *sql.DB, setID string, query descriptor.Descriptor) ([]index.Neighbor, error) {
	ctx := cmd.Context()
	m := params.Matching
	table := fmt.Sprintf("knn_k%d_t%d_b%d_s%d", nearestK, m.Trees, m.SearchBudget, params.Index.Seed)
	create := fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING knn(k=%d, trees=%d, budget=%d, seed=%d)`,
		table, nearestK, m.Trees, m.SearchBudget, params.Index.Seed)
	if _, err := db.ExecContext(ctx, create); err != nil {
		return nil, fmt.Errorf("create %s: %w", table, err)
	}
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT position, distance FROM %s WHERE set_id = ? AND descriptor MATCH ?`, table),
		setID, descriptor.Encode(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []index.Neighbor
	for rows.Next() {
		var n index.Neighbor
		var dist float64
		if err := rows.Scan(&n.Index, &dist); err != nil {
			return nil, err
		}
		n.Distance = float32(dist)
		out = append(out, n)
	}
	return out, rows.Err()
}

func init() {
	f := nearestCmd.Flags()
	f.StringVar(&nearestFrom, "from", "", "set holding the query descriptor (default: the searched set)")
	f.IntVar(&nearestPosition, "position", 0, "position of the query descriptor in --from")
	f.IntVar(&nearestK, "k", 2, "number of neighbours")
	f.BoolVar(&nearestExact, "exact", false, "exhaustive SQL scan instead of the KD forest")
	rootCmd.AddCommand(nearestCmd)
}
