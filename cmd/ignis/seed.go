package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ignis/internal/configstore"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert configuration documents from a JSON file",
	Long: `seed reads a JSON object whose top-level keys are document IDs
(canais, escopos, status, radios) and replaces each document in the store.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("file")
		docs, err := readSeedFile(path)
		if err != nil {
			return err
		}

		for _, id := range unknownDocuments(docs) {
			log.Warn().Str("document", id).Strs("known", configstore.KnownDocuments).
				Msg("Document is not read by the bot")
		}

		stor, store, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStores(stor, store)

		for _, id := range sortedKeys(docs) {
			if err := store.Put(cmd.Context(), id, docs[id]); err != nil {
				return err
			}
			log.Info().Str("document", id).Msg("Document stored")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %d document(s).\n", len(docs))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringP("file", "f", "", "JSON file with the documents to store")
	_ = seedCmd.MarkFlagRequired("file")
}

func readSeedFile(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var docs map[string]json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%s is not a JSON object of documents: %w", path, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s contains no documents", path)
	}
	return docs, nil
}

// unknownDocuments returns the IDs in docs the bot never reads, sorted.
func unknownDocuments(docs map[string]json.RawMessage) []string {
	var out []string
	for _, id := range sortedKeys(docs) {
		if !slices.Contains(configstore.KnownDocuments, id) {
			out = append(out, id)
		}
	}
	return out
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
