package file

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/fetchd/cmd/util"
	metrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for file servers",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfNumThreads = 10
	perfIterations = 100
	perfFile       = ""
	perfSkip       = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. list,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "iterations"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("Number of requests per benchmark"))
	key = "file"
	perfTestCmd.Flags().String(key, "", util.WrapString("File to retrieve in the get benchmark (default: the first listed file)"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumThreads = viper.GetInt("threads")
	perfIterations = viper.GetInt("iterations")
	perfFile = viper.GetString("file")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for file servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Iterations: %d\n", perfIterations)
	fmt.Println()

	fmt.Println("starting tests...")

	// Each benchmark records into its own timer
	registry := metrics.NewRegistry()
	results := make(map[string]metrics.Timer)

	listTimer := metrics.GetOrRegisterTimer("list", registry)
	if !shouldSkip("list") {
		runTimed(listTimer, func() error {
			_, err := fileClient.List()
			return err
		})
	}
	results["list"] = listTimer
	printResult("list", listTimer)

	getTimer := metrics.GetOrRegisterTimer("get", registry)
	if !shouldSkip("get") {
		// Without an explicit file the first listed one is retrieved
		name := perfFile
		if name == "" {
			names, err := fileClient.ListNames()
			if err != nil {
				return fmt.Errorf("failed to pick a file for the get benchmark: %v", err)
			}
			if len(names) == 0 {
				return fmt.Errorf("the server serves no files, use --skip get or --file")
			}
			name = names[0]
		}

		runTimed(getTimer, func() error {
			_, err := fileClient.Get(name)
			return err
		})
	}
	results["get"] = getTimer
	printResult("get", getTimer)

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// runTimed spreads perfIterations invocations of op over perfNumThreads
// goroutines, recording every invocation into the timer
func runTimed(timer metrics.Timer, op func() error) {
	var wg sync.WaitGroup
	iterations := make(chan struct{}, perfIterations)
	for i := 0; i < perfIterations; i++ {
		iterations <- struct{}{}
	}
	close(iterations)

	for t := 0; t < perfNumThreads; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iterations {
				timer.Time(func() {
					if err := op(); err != nil {
						log.Printf("benchmark request failed: %v", err)
					}
				})
			}
		}()
	}

	wg.Wait()
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, timer metrics.Timer) {
	if timer.Count() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	mean := time.Duration(timer.Mean())
	p95 := time.Duration(timer.Percentile(0.95))
	p99 := time.Duration(timer.Percentile(0.99))

	fmt.Printf("%-20s%d ops\tmean %v\tp95 %v\tp99 %v\t%.0f ops/sec\n",
		test, timer.Count(), mean, p95, p99, timer.RateMean())
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]metrics.Timer) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	config := util.GetClientConfig()

	// Write header
	header := []string{
		"Test", "Count", "MeanNs", "P95Ns", "P99Ns", "OpsPerSec", "Skipped",
		"Endpoint", "TimeoutSec", "Threads", "Iterations",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, timer := range results {
		skipped := strconv.FormatBool(timer.Count() == 0)

		row := []string{
			test,
			strconv.FormatInt(timer.Count(), 10),
			fmt.Sprintf("%.0f", timer.Mean()),
			fmt.Sprintf("%.0f", timer.Percentile(0.95)),
			fmt.Sprintf("%.0f", timer.Percentile(0.99)),
			fmt.Sprintf("%.0f", timer.RateMean()),
			skipped,
			config.Endpoint,
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfIterations),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
