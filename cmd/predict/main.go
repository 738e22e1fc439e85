// Command predict scores a single booking from the command line and prints
// the verdict the web form would show.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"bookingrisk/internal/config"
	"bookingrisk/internal/models"
	"bookingrisk/internal/pipeline"
	"bookingrisk/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)

	modelPath := fs.String("model", config.DefaultModelPath, "path to the pipeline artifact (relative paths resolve against the executable)")
	asJSON := fs.Bool("json", false, "print the prediction as JSON")
	verbose := fs.Bool("v", false, "log model loading to stderr")

	values := make(map[string]*string, len(models.Fields()))
	for _, f := range models.Fields() {
		values[f.Name] = fs.String(f.Name, f.DefaultString(), usage(f))
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()

	in := models.DefaultInput()
	for _, f := range models.Fields() {
		if err := in.Set(f.Name, *values[f.Name]); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	if err := in.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	path, err := pipeline.ResolvePath(*modelPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	classifier, err := pipeline.NewLoader(path, &logger).Get()
	if err != nil {
		fmt.Fprintf(stderr, "load model: %v\n", err)
		return 1
	}

	predictor, err := service.NewPredictionService(classifier, nil, 0, &logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	prediction, err := predictor.Predict(context.Background(), in)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(prediction); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}
	fmt.Fprintln(stdout, prediction.Message)
	return 0
}

func usage(f models.Field) string {
	switch f.Kind {
	case models.KindChoice, models.KindFlag:
		return fmt.Sprintf("%s %q", f.Label, f.Options)
	default:
		return fmt.Sprintf("%s [%g, %g]", f.Label, f.Min, f.Max)
	}
}
