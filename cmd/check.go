package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cottand/exhaust/internal/log"
	"github.com/cottand/exhaust/model"
	"github.com/cottand/exhaust/space"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check model.yaml [more.yaml...]",
	Short:        "Run the exhaustiveness queries of one or more model files",
	RunE:         runCheck,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var logLevel *int

func init() {
	logLevel = CheckCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
}

func runCheck(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))

	failed := 0
	for _, path := range args {
		doc, err := model.LoadFile(path)
		if err != nil {
			return err
		}
		for i, query := range doc.Queries {
			res, err := space.Check(query.Value, query.Cases)
			if err != nil {
				return fmt.Errorf("query %d of %s: %w", i, path, err)
			}
			report(cmd, path, i, query, res)
			if !res.Exhaustive {
				failed++
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d queries are not exhaustive", failed)
	}
	return nil
}

func report(cmd *cobra.Command, path string, i int, query model.Query, res space.Result) {
	header := fmt.Sprintf("%s: query %d: match %s {%s}", path, i, query.ValueSrc, strings.Join(query.CaseSrcs, ", "))
	switch {
	case res.Exhaustive && len(res.Redundant) == 0:
		cmd.Printf("%s\n  exhaustive\n", header)
	case res.Exhaustive:
		redundant := make([]string, len(res.Redundant))
		for j, caseIdx := range res.Redundant {
			redundant[j] = query.CaseSrcs[caseIdx]
		}
		cmd.Printf("%s\n  exhaustive (redundant cases: %s)\n", header, strings.Join(redundant, ", "))
	default:
		cmd.Printf("%s\n  NOT exhaustive: no case matches %s\n", header, res.Witness)
	}
}
