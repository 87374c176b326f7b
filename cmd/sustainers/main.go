// Command sustainers filters an Engaging Networks monthly donor export down
// to the donors whose monthly gift started in one month and writes
// "<Month> New EN Monthly Donors.csv".
//
//	sustainers [-out DIR] <csv_path> <month_number>
//
// Missing arguments are prompted for on stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"sustainers/internal/config"
	"sustainers/internal/dataprocessing"
	"sustainers/internal/exporter"
	"sustainers/internal/infrastructure"
	"sustainers/internal/services"
	"sustainers/internal/validation"
	"sustainers/pkg/contracts/domain"
)

const (
	msgMonthNotNumber  = "Month must be a number between 1-12"
	msgMonthOutOfRange = "Month must be between 1 and 12"
	msgInvalidNumber   = "Please enter a valid number"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

// run executes one CLI session and returns the process exit code
func run(args []string, stdin io.Reader, stdout io.Writer) int {
	flags := flag.NewFlagSet("sustainers", flag.ContinueOnError)
	flags.SetOutput(stdout)
	outDir := flags.String("out", "", "output directory (defaults to the configured output directory)")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	positional := flags.Args()

	fmt.Fprintln(stdout, "CLI Mode")
	fmt.Fprintln(stdout, strings.Repeat("=", 40))

	// With both arguments the month is checked before anything touches disk
	var month domain.Month
	haveMonth := len(positional) > 1
	if haveMonth {
		m, err := validation.ParseMonthArgument(positional[1])
		if err != nil {
			fmt.Fprintf(stdout, "Error: %s\n", monthArgumentMessage(err))
			return 1
		}
		month = m
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(infrastructure.CLILoggingConfig(cfg.Logging, paths))
	if err != nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	defer infrastructure.CloseLogFile()

	in := bufio.NewReader(stdin)
	files := validation.NewFileValidator(logger)

	var path string
	if len(positional) > 0 {
		path = positional[0]
	} else {
		path = prompt(stdout, in, "Enter CSV file path: ")
	}

	if err := files.ValidateInputFile(path); err != nil {
		return fail(stdout, logger, err.Error(), err)
	}

	if !haveMonth {
		month, err = promptMonth(stdout, in)
		if err != nil {
			return fail(stdout, logger, promptMonthMessage(err), err)
		}
	}

	dir := *outDir
	if dir == "" {
		dir = paths.OutputDir
	}
	if err := files.ValidateOutputDirectory(dir); err != nil {
		return fail(stdout, logger, err.Error(), err)
	}

	fmt.Fprintf(stdout, "\nProcessing CSV file: %s\n", path)
	fmt.Fprintf(stdout, "Filtering for month: %s\n", month.Name())

	writer := exporter.NewCSVWriter(paths, cfg.Export.BOM, logger)
	service := services.NewDonorService(writer, dataprocessing.LoadOptions{
		Encoding: cfg.Import.Encoding,
		Sheet:    cfg.Import.Sheet,
	}, logger)

	result, err := service.ProcessFile(context.Background(), path, month, dir)
	if err != nil {
		return fail(stdout, logger, err.Error(), err)
	}

	fmt.Fprintln(stdout, "\nSuccess!")
	fmt.Fprintln(stdout, result.String())
	fmt.Fprintf(stdout, "Output saved to: %s\n", result.OutputPath)
	return 0
}

func fail(stdout io.Writer, logger *slog.Logger, message string, err error) int {
	logger.Error("cli run failed", slog.String("error", err.Error()))
	fmt.Fprintf(stdout, "Error: %s\n", message)
	return 1
}

// prompt prints label and returns the next trimmed input line
func prompt(stdout io.Writer, in *bufio.Reader, label string) string {
	fmt.Fprint(stdout, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptMonth lists the months and reads a month number
func promptMonth(stdout io.Writer, in *bufio.Reader) (domain.Month, error) {
	fmt.Fprintln(stdout, "\nAvailable months:")
	for _, m := range domain.AllMonths() {
		fmt.Fprintf(stdout, "%d: %s\n", int(m), m.Name())
	}

	n, err := strconv.Atoi(prompt(stdout, in, "\nEnter month number (1-12): "))
	if err != nil {
		return 0, validation.ErrMonthNotNumber
	}
	return validation.ValidateMonth(n)
}

func monthArgumentMessage(err error) string {
	if errors.Is(err, validation.ErrMonthOutOfRange) {
		return msgMonthOutOfRange
	}
	return msgMonthNotNumber
}

func promptMonthMessage(err error) string {
	if errors.Is(err, validation.ErrMonthOutOfRange) {
		return msgMonthOutOfRange
	}
	return msgInvalidNumber
}
