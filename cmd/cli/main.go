package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"excelops/adapters/excel"
	"excelops/adapters/postgres"
	presetstore "excelops/adapters/preset"
	"excelops/app"
	"excelops/internal/config"
	"excelops/ports"
)

func main() {
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "excelops",
		Short: "ExcelOps batch automation",
	}
	rootCmd.AddCommand(newBatchCmd(), newPresetsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newBatchCmd() *cobra.Command {
	var (
		inputs     []string
		out        string
		presetName string
		userCol    string
		users      []string
		usersFile  string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Slice input files per identifier using a saved preset",
		Long: `Loads each input file, replays the preset's first sheet (filters,
sorts, columns), slices the result per identifier on the given column and
writes one sheet per identifier to the output workbook.

Example: excelops batch --input report.xlsx --preset daily --user-col Owner --users alice,bob --out sliced.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(inputs) == 0 {
				return fmt.Errorf("at least one --input is required")
			}
			if presetName == "" || userCol == "" {
				return fmt.Errorf("--preset and --user-col are required")
			}

			ids, err := collectUsers(users, usersFile)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return fmt.Errorf("no identifiers given; use --users or --users-file")
			}

			presets, err := newPresetStore()
			if err != nil {
				return err
			}
			automation := app.NewAutomation(excel.NewReader(), presets, excel.NewWriter())

			jobs := make([]app.BatchJob, 0, len(inputs))
			for _, input := range inputs {
				jobs = append(jobs, app.BatchJob{
					Input:      input,
					Output:     outputPath(out, input, len(inputs)),
					PresetName: presetName,
					UserColumn: userCol,
					Users:      ids,
				})
			}
			return automation.RunBatch(cmd.Context(), jobs)
		},
	}

	cmd.Flags().StringSliceVar(&inputs, "input", nil, "input workbook or CSV (repeatable)")
	cmd.Flags().StringVar(&out, "out", "", "output workbook path (default: <input>_sliced.xlsx)")
	cmd.Flags().StringVar(&presetName, "preset", "", "preset name to replay")
	cmd.Flags().StringVar(&userCol, "user-col", "", "identifier column")
	cmd.Flags().StringSliceVar(&users, "users", nil, "identifiers, comma separated")
	cmd.Flags().StringVar(&usersFile, "users-file", "", "file with one identifier per line")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List saved presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := newPresetStore()
			if err != nil {
				return err
			}
			names, err := presets.List(context.Background())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
	return cmd
}

func newPresetStore() (ports.PresetStore, error) {
	cfg := config.Load()
	if cfg.Storage.DatabaseURL != "" {
		return postgres.Connect(cfg.Storage.DatabaseURL)
	}
	return presetstore.NewFileStore(cfg.Storage.PresetDir)
}

func collectUsers(users []string, usersFile string) ([]string, error) {
	out := append([]string(nil), users...)
	if usersFile != "" {
		f, err := os.Open(usersFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open users file: %w", err)
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				out = append(out, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read users file: %w", err)
		}
	}
	return out, nil
}

// outputPath derives per-input output names when many inputs share one run
func outputPath(out, input string, numInputs int) string {
	if out != "" && numInputs == 1 {
		return out
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_sliced.xlsx"
}
