package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"igprofile/pkg/checkpoint"
	"igprofile/pkg/config"
	"igprofile/pkg/scraper"
	"igprofile/pkg/ui"
)

var clearAll bool

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect or forget recorded actor runs",
	Long: `Each successful scrape records the actor run and dataset for the profile.
'igprofile scrape --reuse-dataset' reads that dataset again instead of
starting a new paid run.`,
}

// runsListCmd represents the runs list command
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openRuns(cmd)
		if err != nil {
			return err
		}
		return listRuns(store, ui.Out)
	},
}

// runsClearCmd represents the runs clear command
var runsClearCmd = &cobra.Command{
	Use:   "clear [username]",
	Short: "Forget the recorded run of a profile, or all runs with --all",
	Example: `  igprofile runs clear naturelovers
  igprofile runs clear --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !clearAll {
			return &configError{err: fmt.Errorf("give a username or --all")}
		}
		store, err := openRuns(cmd)
		if err != nil {
			return err
		}
		var username string
		if len(args) > 0 {
			username = args[0]
		}
		n, err := clearRuns(store, username)
		if err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Forgot %d recorded run(s)", n))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsClearCmd)

	runsCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory holding the run records")
	runsClearCmd.Flags().BoolVar(&clearAll, "all", false, "forget every recorded run")
}

func openRuns(cmd *cobra.Command) (*checkpoint.Store, error) {
	flags := map[string]interface{}{}
	if cmd.Flags().Changed("output") {
		flags["output"] = outputDir
	}
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, &configError{err: err}
	}
	return checkpoint.NewStore(scraper.RunsPath(cfg), nil)
}

func listRuns(store *checkpoint.Store, w io.Writer) error {
	recs, err := store.List()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintf(w, "No recorded runs in %s\n", store.Path())
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tRUN\tDATASET\tSTATUS\tITEMS\tFINISHED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.Username, r.RunID, r.DatasetID, r.Status, r.ItemCount, r.FinishedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// clearRuns forgets username, or every record when username is empty. It
// returns how many records were removed.
func clearRuns(store *checkpoint.Store, username string) (int, error) {
	if username != "" {
		rec, err := store.Get(username)
		if err != nil || rec == nil {
			return 0, err
		}
		return 1, store.Delete(username)
	}

	recs, err := store.List()
	if err != nil {
		return 0, err
	}
	for i, r := range recs {
		if err := store.Delete(r.Username); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}
