package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "Manage units of lecture material",
}

var unitsCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		unit, err := a.svc.CreateUnit(cmd.Context(), a.user, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), unit.ID)
		return nil
	},
}

var unitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your units",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		units, err := a.svc.ListUnits(cmd.Context(), a.user)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCREATED")
		for _, u := range units {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Title, u.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	unitsCmd.AddCommand(unitsCreateCmd)
	unitsCmd.AddCommand(unitsListCmd)
}
