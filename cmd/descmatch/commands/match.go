package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/index"
	"github.com/viant/descmatch/index/bruteforce"
	"github.com/viant/descmatch/index/kdforest"
	"github.com/viant/descmatch/match"
	"github.com/viant/descmatch/session"
)

var (
	matchRatio     float64
	matchTrees     int
	matchBudget    int
	matchTop       int
	matchThickness int
	matchSeed      int64
	matchRecall    bool
	matchFormat    string
)

var matchCmd = &cobra.Command{
	Use:   "match <train-id> <query-id>",
	Short: "Match two stored feature sets",
	Long: `Match every query descriptor against the train set, keep the matches that
pass Lowe's ratio test and print the best ones ordered by distance.

Flags left unset fall back to the parameter file.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, seed, err := matchConfiguration(cmd)
	if err != nil {
		return err
	}

	s, db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	train, err := s.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load train set: %w", err)
	}
	query, err := s.Load(ctx, args[1])
	if err != nil {
		return fmt.Errorf("load query set: %w", err)
	}

	opts := []session.Option{session.WithLogger(logger), session.WithSeed(seed)}
	if params.Index.Parallelism > 0 {
		opts = append(opts, session.WithParallelism(params.Index.Parallelism))
	}
	res, err := session.New(opts...).Recompute(ctx, train, query, cfg)
	if err != nil {
		return err
	}

	recall := -1.0
	if matchRecall && query.Len() > 0 && train.Len() >= 2 {
		if recall, err = measureRecall(cmd, train.Descriptors, query.Descriptors, cfg, seed); err != nil {
			return err
		}
	}
	return printResult(cmd, res, recall)
}

func matchConfiguration(cmd *cobra.Command) (match.Configuration, int64, error) {
	m := params.Matching
	seed := params.Index.Seed
	flags := cmd.Flags()
	if flags.Changed("ratio") {
		m.RatioThreshold = matchRatio
	}
	if flags.Changed("trees") {
		m.Trees = matchTrees
	}
	if flags.Changed("budget") {
		m.SearchBudget = matchBudget
	}
	if flags.Changed("top") {
		m.TopN = matchTop
	}
	if flags.Changed("thickness") {
		m.LineThickness = matchThickness
	}
	if flags.Changed("seed") {
		seed = matchSeed
	}
	p := *params
	p.Matching = m
	cfg, err := p.Configuration()
	return cfg, seed, err
}

// measureRecall compares the forest against an exhaustive index on the
// 2-nearest-neighbour queries the matcher issues.
func measureRecall(cmd *cobra.Command, train, query descriptor.Set, cfg match.Configuration, seed int64) (float64, error) {
	approx := kdforest.New(kdforest.WithTrees(cfg.TreesCount()), kdforest.WithSeed(seed))
	if err := approx.BuildContext(cmd.Context(), train); err != nil {
		return 0, err
	}
	exact := bruteforce.New()
	if err := exact.Build(train); err != nil {
		return 0, err
	}
	return index.Recall(cmd.Context(), approx, exact, query, 2, cfg.SearchBudget())
}

type matchRow struct {
	Rank       int     `json:"rank"`
	QueryIndex int     `json:"query_index"`
	TrainIndex int     `json:"train_index"`
	Distance   float32 `json:"distance"`
	FromX      float32 `json:"from_x"`
	FromY      float32 `json:"from_y"`
	ToX        float32 `json:"to_x"`
	ToY        float32 `json:"to_y"`
	Thickness  int     `json:"thickness"`
}

type matchReport struct {
	Config     string     `json:"config"`
	Candidates int        `json:"candidates"`
	Accepted   int        `json:"accepted"`
	Recall     *float64   `json:"recall,omitempty"`
	Matches    []matchRow `json:"matches"`
}

func printResult(cmd *cobra.Command, res *session.Result, recall float64) error {
	report := matchReport{
		Config:     res.Config.String(),
		Candidates: res.Candidates,
		Accepted:   res.Accepted,
		Matches:    make([]matchRow, 0, len(res.Ranked)),
	}
	if recall >= 0 {
		report.Recall = &recall
	}
	for i, l := range res.Lines() {
		m := res.Ranked[i]
		report.Matches = append(report.Matches, matchRow{
			Rank:       i + 1,
			QueryIndex: m.QueryIndex,
			TrainIndex: m.TrainIndex,
			Distance:   m.Distance,
			FromX:      l.From.X,
			FromY:      l.From.Y,
			ToX:        l.To.X,
			ToY:        l.To.Y,
			Thickness:  l.Thickness,
		})
	}

	out := cmd.OutOrStdout()
	switch matchFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "table", "":
		fmt.Fprintf(out, "%s\ncandidates: %d  accepted: %d\n", report.Config, report.Candidates, report.Accepted)
		if report.Recall != nil {
			fmt.Fprintf(out, "recall@2: %.4f\n", *report.Recall)
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tQUERY\tTRAIN\tDISTANCE\tFROM\tTO")
		for _, r := range report.Matches {
			fmt.Fprintf(w, "%d\t%d\t%d\t%.4f\t(%.1f,%.1f)\t(%.1f,%.1f)\n",
				r.Rank, r.QueryIndex, r.TrainIndex, r.Distance, r.FromX, r.FromY, r.ToX, r.ToY)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown format %q (want table or json)", matchFormat)
	}
}

func init() {
	f := matchCmd.Flags()
	f.Float64Var(&matchRatio, "ratio", match.DefaultRatioThreshold, "Lowe ratio threshold in (0, 1]")
	f.IntVar(&matchTrees, "trees", match.DefaultTreesCount, "number of randomized trees")
	f.IntVar(&matchBudget, "budget", match.DefaultSearchBudget, "distance checks per query")
	f.IntVar(&matchTop, "top", match.DefaultTopN, "number of ranked matches to print")
	f.IntVar(&matchThickness, "thickness", match.DefaultLineThickness, "line thickness hint")
	f.Int64Var(&matchSeed, "seed", kdforest.DefaultSeed, "forest seed")
	f.BoolVar(&matchRecall, "recall", false, "also measure forest recall against an exhaustive search")
	f.StringVarP(&matchFormat, "format", "o", "table", "output format: table or json")
	rootCmd.AddCommand(matchCmd)
}
