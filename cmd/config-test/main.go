package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/chrissnell/ephemeris/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <ephemeris.yaml> -sqlite <ephemeris.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlConfig, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	mismatches := 0

	fmt.Printf("Observers - YAML: %d, SQLite: %d\n", len(yamlConfig.Observers), len(sqliteConfig.Observers))
	if len(yamlConfig.Observers) == len(sqliteConfig.Observers) {
		fmt.Println("✓ Observer count matches")
		for i, yamlObserver := range yamlConfig.Observers {
			if reflect.DeepEqual(yamlObserver, sqliteConfig.Observers[i]) {
				fmt.Printf("✓ Observer %d (%s) matches\n", i, yamlObserver.Name)
				continue
			}
			mismatches++
			fmt.Printf("✗ Observer %d differs\n", i)
			fmt.Printf("  YAML:   %+v\n", yamlObserver)
			fmt.Printf("  SQLite: %+v\n", sqliteConfig.Observers[i])
		}
	} else {
		mismatches++
		fmt.Println("✗ Observer count mismatch")
	}

	if reflect.DeepEqual(yamlConfig.Report, sqliteConfig.Report) {
		fmt.Println("✓ Report settings match")
	} else {
		mismatches++
		fmt.Println("✗ Report settings differ")
		fmt.Printf("  YAML:   %+v\n", yamlConfig.Report)
		fmt.Printf("  SQLite: %+v\n", sqliteConfig.Report)
	}

	for name, c := range map[string]*config.ConfigData{"YAML": yamlConfig, "SQLite": sqliteConfig} {
		if err := c.Validate(); err != nil {
			mismatches++
			fmt.Printf("✗ %s configuration is invalid:\n%v\n", name, err)
		}
	}

	if mismatches > 0 {
		fmt.Printf("\n%d problem(s) found\n", mismatches)
		os.Exit(1)
	}
	fmt.Println("\nConfigurations are identical")
}
