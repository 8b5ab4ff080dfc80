package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"escape-room-service/internal/domain"
	"escape-room-service/internal/infra/file"
	"escape-room-service/internal/scoring"
	"github.com/spf13/cobra"
)

// NewCheckCmd validates a content directory without touching any store.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <content-dir>",
		Short: "Validate YAML round content and print each round's maximum score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rounds, err := file.NewRoundLoader(args[0]).LoadAll()
			if err != nil {
				return err
			}
			return writeCheckReport(cmd.OutOrStdout(), rounds)
		},
	}
}

func writeCheckReport(out io.Writer, rounds []domain.Round) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tROUND\tMODE\tMAX\tSTATUS")
	failed := 0
	sectionMax := make(map[int]int)
	for _, r := range rounds {
		status := "ok"
		if err := scoring.ValidateRound(r); err != nil {
			status = strings.ReplaceAll(err.Error(), "\n", "; ")
			failed++
		} else {
			sectionMax[r.Section] += r.Scoring.MaxScore
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", r.Section, r.ID, r.Scoring.Mode, scoring.MaxEarnable(r), status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	sections := make([]int, 0, len(sectionMax))
	for section := range sectionMax {
		sections = append(sections, section)
	}
	sort.Ints(sections)
	for _, section := range sections {
		fmt.Fprintf(out, "section %d: %d points\n", section, sectionMax[section])
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d rounds failed validation", failed, len(rounds))
	}
	return nil
}
