package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"ignis/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history <guild-id>",
	Short: "Show the most recent commands used in a guild",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stor, err := storage.New(cfg.StoragePath)
		if err != nil {
			return fmt.Errorf("failed to open storage %s: %w", cfg.StoragePath, err)
		}
		defer stor.Close()

		entries, err := stor.CommandHistory(args[0])
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), entries)
		return nil
	},
}

func printHistory(w io.Writer, entries []storage.CommandHistory) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No commands recorded.")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"When", "User", "Channel", "Command"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, e := range entries {
		channel := e.ChannelName
		if channel == "" {
			channel = e.ChannelID
		}
		table.Append([]string{e.Datetime.Format("2006-01-02 15:04:05"), e.Username, channel, e.Command})
	}
	table.Render()
}
