package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openfdw/openfdw/pkg/config"
	"github.com/openfdw/openfdw/pkg/connector/core"
	"github.com/openfdw/openfdw/pkg/connector/registry"
	"github.com/openfdw/openfdw/pkg/logger"
	"github.com/openfdw/openfdw/pkg/observability"
	"github.com/openfdw/openfdw/pkg/secrets"
	"github.com/openfdw/openfdw/pkg/value"

	// Import all available wrappers to register them
	_ "github.com/openfdw/openfdw/pkg/connector/sources/logflare"
	_ "github.com/openfdw/openfdw/pkg/connector/sources/s3"
)

var version = "0.1.0"

func main() {
	viper.SetEnvPrefix("OPENFDW")
	viper.AutomaticEnv()

	root := &cobra.Command{
		Use:   "openfdw",
		Short: "openfdw - foreign table wrappers for external data sources",
		Long: `openfdw exposes external, heterogeneous data sources (REST APIs,
object stores) as relational tables through a common scan lifecycle.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("openfdw v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "connectors",
		Short: "List registered wrappers",
		Run: func(cmd *cobra.Command, args []string) {
			metas := registry.List()
			sort.Slice(metas, func(i, j int) bool { return metas[i].Name < metas[j].Name })
			for _, m := range metas {
				fmt.Printf("%-12s %-8s %-10s %s\n", m.Name, m.Version, m.Author, m.Website)
			}
		},
	})

	var profilePath, tableName string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a table profile's options at definition time",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(profilePath, tableName)
			if err != nil {
				return err
			}
			if err := registry.Validate(table.Wrapper, table.Options, core.ObjectKindTable); err != nil {
				return err
			}
			fmt.Printf("table '%s' is valid for wrapper '%s'\n", tableName, table.Wrapper)
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&profilePath, "profile", "p", "openfdw.yaml", "table profile file")
	validateCmd.Flags().StringVarP(&tableName, "table", "t", "", "table name within the profile")
	validateCmd.MarkFlagRequired("table")
	root.AddCommand(validateCmd)

	var limitCount int64
	var timeout time.Duration
	var trace bool

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a foreign table and emit its rows as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(profilePath, tableName)
			if err != nil {
				return err
			}
			return runScan(table, limitCount, timeout, trace)
		},
	}
	scanCmd.Flags().StringVarP(&profilePath, "profile", "p", "openfdw.yaml", "table profile file")
	scanCmd.Flags().StringVarP(&tableName, "table", "t", "", "table name within the profile")
	scanCmd.Flags().Int64VarP(&limitCount, "limit", "l", -1, "advisory row limit pushed down to the wrapper")
	scanCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall scan timeout")
	scanCmd.Flags().BoolVar(&trace, "trace", viper.GetBool("TRACE"), "export scan spans to stdout")
	scanCmd.MarkFlagRequired("table")
	root.AddCommand(scanCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadTable(profilePath, tableName string) (config.TableProfile, error) {
	profiles, err := config.LoadProfiles(profilePath)
	if err != nil {
		return config.TableProfile{}, err
	}
	return profiles.Table(tableName)
}

func runScan(table config.TableProfile, limitCount int64, timeout time.Duration, trace bool) error {
	level := viper.GetString("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	if err := logger.Init(logger.Config{Level: level, Encoding: "json"}); err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if trace {
		if err := observability.Init(observability.DefaultConfig()); err != nil {
			return err
		}
		defer observability.Shutdown(ctx)
	}

	columns, err := parseColumns(table.Columns)
	if err != nil {
		return err
	}

	fdw, err := registry.New(ctx, table.Wrapper, table.Options, secrets.NewEnvStore())
	if err != nil {
		return err
	}

	var limit *value.Limit
	if limitCount >= 0 {
		limit = &value.Limit{Count: limitCount}
	}

	if err := fdw.BeginScan(ctx, nil, columns, nil, limit, table.Options); err != nil {
		return err
	}
	defer fdw.EndScan()

	enc := gojson.NewEncoder(os.Stdout)
	count := 0
	for {
		row, ok := fdw.IterScan()
		if !ok {
			break
		}
		if err := enc.Encode(row.Interface()); err != nil {
			return err
		}
		count++
	}

	logger.Info("scan complete",
		zap.String("wrapper", table.Wrapper),
		zap.Int("rows", count))
	return nil
}

func parseColumns(specs []config.ColumnSpec) ([]value.Column, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("table profile defines no columns")
	}
	columns := make([]value.Column, 0, len(specs))
	for _, spec := range specs {
		if strings.TrimSpace(spec.Name) == "" {
			return nil, fmt.Errorf("column with empty name in profile")
		}
		columns = append(columns, value.Column{
			Name: spec.Name,
			Type: value.ColumnType(spec.Type),
		})
	}
	return columns, nil
}
