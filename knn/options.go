package knn

import (
	"strconv"
	"strings"

	"github.com/viant/descmatch/index/kdforest"
	"github.com/viant/descmatch/match"
)

// tableOptions are parsed from the USING knn(...) arguments.
type tableOptions struct {
	k      int
	trees  int
	budget int
	seed   int64
}

func defaultTableOptions() tableOptions {
	return tableOptions{
		k:      2,
		trees:  match.DefaultTreesCount,
		budget: match.DefaultSearchBudget,
		seed:   kdforest.DefaultSeed,
	}
}

// parseTableOptions reads key=value arguments. Unknown keys and values
// outside their domain are ignored.
func parseTableOptions(args []string) tableOptions {
	opts := defaultTableOptions()
	for _, raw := range args {
		key, val, ok := strings.Cut(strings.TrimSpace(raw), "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.Trim(strings.TrimSpace(val), `'"`)
		if key == "seed" {
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				opts.seed = n
			}
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			continue
		}
		switch key {
		case "k":
			opts.k = n
		case "trees":
			opts.trees = n
		case "budget":
			opts.budget = n
		}
	}
	return opts
}

func (o tableOptions) cacheKey() string {
	return strconv.Itoa(o.trees) + "/" + strconv.FormatInt(o.seed, 10)
}
