// Command predict scores a single record against the models directory
// without starting the web service.
//
//	predict -task regression floor_area=70 cbd_dist=5000 min_dist_mrt=300
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"

	"formcast/ml"
	"formcast/records"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	modelsDir := fs.String("models", "models", "models directory")
	taskName := fs.String("task", "", "regression, anomaly or classification")
	cacheSize := fs.Int("cache", 0, "prediction cache size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	task, err := ml.ParseTask(*taskName)
	if err != nil {
		return err
	}
	form, err := parseFields(fs.Args())
	if err != nil {
		return err
	}

	store, err := ml.LoadStore(ctx, *modelsDir, ml.StoreOptions{CacheSize: *cacheSize})
	if err != nil {
		return fmt.Errorf("load models: %w", err)
	}
	model, ok := store.Get(task)
	if !ok {
		return fmt.Errorf("no model for task %s in %s", task, *modelsDir)
	}

	input, err := records.Build(task, form)
	if err != nil {
		return err
	}
	raw, err := model.Invoke(ctx, input)
	if err != nil {
		return err
	}
	prediction, err := ml.FormatResult(task, raw)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, prediction)
	return nil
}

// parseFields turns key=value arguments into form values.
func parseFields(args []string) (url.Values, error) {
	form := url.Values{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.New("fields must be key=value, got " + arg)
		}
		form.Add(key, value)
	}
	return form, nil
}
