package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"forestdash/internal/config"
	"forestdash/internal/data"
	"forestdash/internal/domain"
	"forestdash/internal/forest"
	"forestdash/internal/history"
	"forestdash/internal/stats"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func main() {
	root := &cobra.Command{
		Use:          "analyzer",
		Short:        "Inspect datasets and synthetic forests from the terminal",
		SilenceUsage: true,
	}
	root.AddCommand(summaryCmd(), correlationCmd(), missingCmd(), predictCmd(), treeCmd(), historyCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dataset(name string) (*data.Dataset, error) {
	return data.Default().Get(name)
}

func summaryCmd() *cobra.Command {
	var exclude string
	cmd := &cobra.Command{
		Use:   "summary <dataset>",
		Short: "Mean, median, deviation and range of each numeric column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("exclude") {
				exclude = ds.Target
			}
			w := table(cmd.OutOrStdout(), "Feature", "Mean", "Median", "Std", "Min", "Max")
			for _, s := range stats.SummarizeDataset(ds, exclude) {
				fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n", s.Feature, s.Mean, s.Median, s.Std, s.Min, s.Max)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&exclude, "exclude", "", "column to leave out (default the target)")
	return cmd
}

func correlationCmd() *cobra.Command {
	var exclude string
	cmd := &cobra.Command{
		Use:   "correlation <dataset>",
		Short: "Pearson correlation matrix of the numeric columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("exclude") {
				exclude = ds.Target
			}
			m := stats.CorrelationMatrix(ds, exclude)
			w := table(cmd.OutOrStdout(), append([]string{""}, m.Features...)...)
			w.labels = true
			for i, f := range m.Features {
				cells := make([]string, len(m.Features))
				for j := range m.Features {
					cells[j] = strconv.FormatFloat(m.Values[i][j], 'f', 3, 64)
				}
				fmt.Fprintf(w, "%s\t%s\n", f, strings.Join(cells, "\t"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&exclude, "exclude", "", "column to leave out (default the target)")
	return cmd
}

func missingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "missing <dataset>",
		Short: "Missing cells per column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset(args[0])
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout(), "Feature", "Missing", "Percent")
			for _, m := range stats.MissingValues(ds) {
				fmt.Fprintf(w, "%s\t%d\t%.1f%%\n", m.Feature, m.Count, m.Percent)
			}
			return w.Flush()
		},
	}
}

func domainArg(name, catalogPath string) (*domain.Domain, error) {
	c := domain.Builtin()
	if catalogPath != "" {
		extra, err := domain.LoadCatalog(catalogPath)
		if err != nil {
			return nil, err
		}
		c = c.Merge(extra)
	}
	return c.Get(name)
}

func predictCmd() *cobra.Command {
	var (
		trees   int
		values  map[string]string
		partial bool
		catalog string
	)
	cmd := &cobra.Command{
		Use:   "predict <domain>",
		Short: "Run the synthetic forest on one record",
		Example: `  analyzer predict customer-purchase --trees 3 \
    --set age=Youth --set income=Medium --set student=No --set creditRating=Fair`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domainArg(args[0], catalog)
			if err != nil {
				return err
			}
			r := domain.RecordFromStrings(values)
			if !partial {
				if err := d.CheckRecord(r); err != nil {
					return err
				}
			}
			res, err := forest.New(d).Aggregate(d.ClampTrees(trees), r)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := table(out, "Tree", "Vote", "Path")
			for _, t := range res.Trees {
				fmt.Fprintf(w, "%d\t%s\t%s\n", t.Seed, t.Label, strings.Join(t.Path, " → "))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			note := ""
			if res.Tie {
				note = " (tie)"
			}
			fmt.Fprintf(out, "\n%s %s%s  %s=%d %s=%d\n", headerStyle.Render("Forest:"), res.Label, note,
				d.PositiveTag, res.Counts[d.PositiveTag], d.NegativeTag, res.Counts[d.NegativeTag])
			return nil
		},
	}
	cmd.Flags().IntVar(&trees, "trees", 0, "number of trees (default per domain)")
	cmd.Flags().StringToStringVar(&values, "set", map[string]string{}, "feature=value, repeatable")
	cmd.Flags().BoolVar(&partial, "partial", false, "allow missing features")
	cmd.Flags().StringVar(&catalog, "catalog", "", "extra domain catalog YAML")
	return cmd
}

func treeCmd() *cobra.Command {
	var catalog string
	cmd := &cobra.Command{
		Use:   "tree <domain> <seed>",
		Short: "Show the conditions and leaves a seed produces",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domainArg(args[0], catalog)
			if err != nil {
				return err
			}
			seed, err := strconv.Atoi(args[1])
			if err != nil || seed < 1 {
				return fmt.Errorf("seed must be a positive integer, got %q", args[1])
			}
			t := forest.BuildTree(d, seed)

			w := table(cmd.OutOrStdout(), "Node", "Test")
			for _, n := range []struct {
				id string
				c  forest.ConditionSpec
			}{{forest.RootID, t.Root}, {t.Root.Feature + ">", t.Right}, {t.Root.Feature + "<=", t.Left}} {
				fmt.Fprintf(w, "%s\t%s\n", n.id, describe(n.c))
			}
			for _, l := range t.Leaves {
				fmt.Fprintf(w, "%s\t→ %s (path seed %d)\n", l.ID, l.Label, l.PathSeed)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&catalog, "catalog", "", "extra domain catalog YAML")
	return cmd
}

func describe(c forest.ConditionSpec) string {
	if c.Operator == forest.OpGreater {
		return fmt.Sprintf("%s > %s", c.Feature, strconv.FormatFloat(c.Threshold, 'f', -1, 64))
	}
	return fmt.Sprintf("%s == %q", c.Feature, c.Target)
}

func historyCmd() *cobra.Command {
	var (
		limit   int
		cfgFile string
	)
	cmd := &cobra.Command{
		Use:   "history <domain>",
		Short: "List stored forest predictions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			store, err := history.Open(s.Storage.Path)
			if err != nil {
				return err
			}
			defer store.Close()
			entries, err := store.Recent(args[0], limit)
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout(), "ID", "When", "Trees", "Label", "Counts")
			for _, e := range entries {
				counts := make([]string, 0, len(e.Counts))
				for k, v := range e.Counts {
					counts = append(counts, fmt.Sprintf("%s=%d", k, v))
				}
				sort.Strings(counts)
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", e.ID, e.Timestamp.Format("2006-01-02 15:04:05"), e.TreeCount, e.Label, strings.Join(counts, " "))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "entries to show")
	cmd.Flags().StringVar(&cfgFile, "config", "", "YAML settings file")
	return cmd
}
