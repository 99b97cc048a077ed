package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/catalog"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the monster catalog",
	Long: `Search monsters by English or Chinese name. Matching is a
case-insensitive substring match; results are ordered by name.

Examples:
  bazaarlens search --monsters combat_encounters.json crab
  bazaarlens search --monsters combat_encounters.json 香蕉 --format pretty`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	addCatalogFlags(searchCmd, false)
	addFormatFlag(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cfg.MonstersPath == "" {
		return errors.New("no monster catalog: set --monsters or monsters in the config file")
	}

	monsters, err := catalog.LoadMonsters(cfg.MonstersPath)
	if err != nil {
		return err
	}

	results := monsters.Search(strings.Join(args, " "))
	return OutputMonsters(cfg.Format, results, cmd.OutOrStdout())
}
