package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"ignis/internal/radio"
)

var radiosCmd = &cobra.Command{
	Use:   "radios",
	Short: "Print the station catalog as the /radio menus show it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		stor, store, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStores(stor, store)

		radios, err := store.Radios(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read radios: %w", err)
		}
		return printCatalog(cmd.OutOrStdout(), radio.NewCatalog(radios))
	},
}

func printCatalog(w io.Writer, cat *radio.Catalog) error {
	if cat.Empty() {
		fmt.Fprintln(w, "No radios configured.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Country", "#", "Name", "Place", "URL"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)

	for _, country := range cat.Countries() {
		stations, err := cat.Stations(country)
		if err != nil {
			return err
		}
		for i, st := range stations {
			table.Append([]string{country, strconv.Itoa(i + 1), st.Name, st.Place, st.URL})
		}
	}
	table.Render()
	return nil
}
