package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/n3phtys/rustixbl/internal/aggregate"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the version, top users, and open/total bill counts (per-user top items are not shown)",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		s := eng.State()
		top := s.TopUserIDs()
		openBills := 0
		for _, b := range s.Bills {
			if b.State == aggregate.BillCreated {
				openBills++
			}
		}

		if jsonOutput {
			out := map[string]any{
				"version":     eng.Version(),
				"top_users":   top,
				"open_bills":  openBills,
				"total_bills": len(s.Bills),
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Println(accentStyle.Render(fmt.Sprintf("ledger @ version %d", eng.Version())))
		fmt.Println(mutedStyle.Render(fmt.Sprintf("top users (%d): %v", len(top), top)))
		fmt.Println(mutedStyle.Render(fmt.Sprintf("bills: %d open / %d total", openBills, len(s.Bills))))
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Replay the log from the last snapshot and print the resulting version",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		v, err := eng.Reload(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(accentStyle.Render(fmt.Sprintf("reloaded to version %d", v)))
		return nil
	},
}
