package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"arena/internal/adapt"
	"arena/internal/config"
	"arena/internal/convert"
	"arena/internal/member"
	"arena/internal/pipeline"
	"arena/internal/samples"
	"arena/internal/sheet"
	"arena/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "arena",
		Short: "Run behavioral test sheets against adapted implementations",
	}
	dbPath     string
	configPath string
	implNames  []string
	execID     string
	replayID   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the cell database (SQLite), overrides the config")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "arena.yaml", "Path to the configuration file")

	matchCmd.Flags().StringSliceVarP(&implNames, "impl", "i", nil, "Implementations to adapt (default: all)")
	runCmd.Flags().StringSliceVarP(&implNames, "impl", "i", nil, "Implementations to run (default: all)")
	runCmd.Flags().StringVarP(&replayID, "replay", "r", "", "Reuse the adaptations stored for this execution instead of matching")
	cellsCmd.Flags().StringVarP(&execID, "execution", "e", "", "Execution id (default: most recent)")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cellsCmd)
	rootCmd.AddCommand(executionsCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	return cfg
}

func initStore(cfg *config.Config) *storage.SQLiteStore {
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	return store
}

// selectClasses returns the registered classes named by --impl, or all of them.
func selectClasses(reg *member.Registry) []*member.Class {
	if len(implNames) == 0 {
		return reg.All()
	}
	var out []*member.Class
	for _, name := range implNames {
		c, ok := reg.Get(name)
		if !ok {
			log.Fatalf("Unknown implementation %q", name)
		}
		out = append(out, c)
	}
	return out
}

var matchCmd = &cobra.Command{
	Use:   "match [sheet.yaml]",
	Short: "Show how each implementation is adapted to the sheet's interface",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		reg := samples.Registry()

		sh, err := sheet.Load(args[0], reg)
		if err != nil {
			log.Fatalf("Failed to load sheet: %v", err)
		}

		engine := adapt.NewDefaultEngine(convert.NewDefaultCatalogue(), cfg.Adaptation.MaxOverfit,
			adapt.WithMaxParamsLength(cfg.Adaptation.MaxParamsLength))

		for _, class := range selectClasses(reg) {
			for _, impl := range engine.AdaptAll(sh.Interface, class, cfg.Adaptation.MaxPermutations) {
				fmt.Printf("%s [%s]\n", class.Name, impl.ID)
				for _, b := range adapt.Describe(impl) {
					sig := fmt.Sprintf("  %s %d %s", b.Role, b.Index, b.Signature)
					if b.Error != "" {
						fmt.Printf("%s -> error: %s\n", sig, b.Error)
						continue
					}
					fmt.Printf("%s -> %s via %s", sig, b.Member, b.Strategy)
					if b.Producer != "" {
						fmt.Printf(" (%s)", b.Producer)
					}
					fmt.Printf(" positions=%v alternates=%d\n", b.Positions, b.Alternates)
				}
			}
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run [sheet.yaml]",
	Short: "Execute a sheet against implementations and store the cells",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		reg := samples.Registry()

		sh, err := sheet.Load(args[0], reg)
		if err != nil {
			log.Fatalf("Failed to load sheet: %v", err)
		}

		store := initStore(cfg)
		defer store.Close()

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		runner, err := pipeline.NewRunner(cfg, store, logger)
		if err != nil {
			log.Fatalf("Failed to create runner: %v", err)
		}

		var res *pipeline.Result
		if replayID != "" {
			fmt.Printf("Replaying adaptations of %s\n", replayID)
			res, err = runner.Replay(context.Background(), filepath.Base(args[0]), sh, replayID, reg)
		} else {
			res, err = runner.Run(context.Background(), filepath.Base(args[0]), sh, selectClasses(reg))
		}
		if err != nil {
			log.Fatalf("Run failed: %v", err)
		}

		fmt.Printf("Execution %s\n", res.ExecutionID)
		for _, impl := range res.Implementations {
			status := "ok"
			if impl.Err != nil {
				status = "failed: " + impl.Err.Error()
			}
			fmt.Printf("  %-16s %-12s sequences=%d cells=%d %s\n",
				impl.Implementation, impl.AdapterID, len(impl.Records), len(impl.Cells), status)
		}
		fmt.Printf("%d implementations, %d failed\n", len(res.Implementations), res.Failed())
	},
}

var cellsCmd = &cobra.Command{
	Use:   "cells",
	Short: "Print the stored cells of an execution",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := initStore(cfg)
		defer store.Close()
		ctx := context.Background()

		id := execID
		if id == "" {
			execs, err := store.ListExecutions(ctx)
			if err != nil {
				log.Fatalf("Failed to list executions: %v", err)
			}
			if len(execs) == 0 {
				fmt.Println("No executions stored.")
				return
			}
			id = execs[0].ID
		}

		cells, err := store.LoadCells(ctx, id)
		if err != nil {
			log.Fatalf("Failed to load cells: %v", err)
		}
		for _, c := range cells {
			field := string(c.ID.Field)
			if c.ID.Oracle {
				field = "oracle"
			}
			fmt.Printf("%s/%s %s [%d,%d] %s = %s",
				c.ID.Implementation, c.ID.AdapterID, c.ID.Sequence, c.ID.Row, c.ID.Column, field,
				strings.ReplaceAll(c.Value.RawValue, "\n", "\\n"))
			if c.Value.Value != "" && c.Value.Value != c.Value.RawValue {
				fmt.Printf(" (%s)", c.Value.Value)
			}
			fmt.Println()
		}
	},
}

var executionsCmd = &cobra.Command{
	Use:   "executions",
	Short: "List stored executions",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := initStore(cfg)
		defer store.Close()

		execs, err := store.ListExecutions(context.Background())
		if err != nil {
			log.Fatalf("Failed to list executions: %v", err)
		}
		for _, e := range execs {
			fmt.Printf("%s  %s  %s  implementations=%d failed=%d\n",
				e.ID, e.StartedAt.Format("2006-01-02 15:04:05"), e.Sheet, e.Implementations, e.Failed)
		}
	},
}
