package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/paper-trail/papertrail/internal/ingest"
)

var ingestStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ingest run history",
	Long:  "Lists recorded pipeline runs, most recent first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		entries, err := ingest.NewRunLog(pool).ListAll(ctx)
		if err != nil {
			return eris.Wrap(err, "ingest status")
		}

		if len(entries) == 0 {
			fmt.Println("No runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STAGE\tSTATUS\tSTARTED\tDURATION\tROWS\tERROR")
		for _, e := range entries {
			duration := "-"
			if e.CompletedAt != nil {
				duration = e.CompletedAt.Sub(e.StartedAt).Round(time.Second).String()
			}
			errMsg := e.Error
			if len(errMsg) > 60 {
				errMsg = errMsg[:57] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				e.Stage,
				e.Status,
				e.StartedAt.Format("2006-01-02 15:04:05"),
				duration,
				e.RowsInserted,
				errMsg,
			)
		}
		return w.Flush()
	},
}

func init() {
	ingestCmd.AddCommand(ingestStatusCmd)
}
