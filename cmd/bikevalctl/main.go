package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval"
	"github.com/kailas-cloud/bikeval/internal/domain/valuation"
	"github.com/kailas-cloud/bikeval/internal/format"
	"github.com/kailas-cloud/bikeval/internal/logger"
	"github.com/kailas-cloud/bikeval/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bikevalctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "bikevalctl",
		Usage:   "estimate used motorcycle prices from the command line",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "catalog", Value: "data/Used_Bikes.csv", Usage: "listings file (.csv or .parquet)", EnvVars: []string{"BIKEVAL_CATALOG"}},
			&cli.StringFlag{Name: "model", Value: "data/bike_model.json", Usage: "model artifact", EnvVars: []string{"BIKEVAL_MODEL"}},
			&cli.StringFlag{Name: "remote", Usage: "model server endpoint, overrides --model", EnvVars: []string{"BIKEVAL_MODEL_ENDPOINT"}},
			&cli.StringFlag{Name: "remote-key", Usage: "model server API key", EnvVars: []string{"BIKEVAL_MODEL_API_KEY"}},
			&cli.DurationFlag{Name: "remote-timeout", Value: 5 * time.Second},
			&cli.StringFlag{Name: "images", Value: "images", Usage: "brand logo directory"},
			&cli.StringFlag{Name: "redis", Usage: "redis address for the prediction cache", EnvVars: []string{"BIKEVAL_REDIS_ADDR"}},
			&cli.DurationFlag{Name: "redis-ttl", Value: 24 * time.Hour, Usage: "prediction cache expiry; 0 keeps entries forever"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Commands: []*cli.Command{
			{
				Name:      "models",
				Usage:     "list catalog model names",
				ArgsUsage: "[query]",
				Action:    runModels,
			},
			{
				Name:      "resolve",
				Usage:     "show form defaults for a model",
				ArgsUsage: "<name>",
				Action:    runResolve,
			},
			{
				Name:   "estimate",
				Usage:  "estimate a price and list comparable listings",
				Flags:  append(requestFlags(), &cli.BoolFlag{Name: "json", Usage: "print the valuation as JSON"}),
				Action: runEstimate,
			},
			{
				Name:  "export",
				Usage: "write a PDF or XLSX valuation report",
				Flags: append(requestFlags(),
					&cli.StringFlag{Name: "format", Value: string(bikeval.FormatPDF), Usage: "pdf or xlsx"},
					&cli.StringFlag{Name: "out", Usage: "output directory or file; defaults to the suggested file name"},
				),
				Action: runExport,
			},
		},
	}
}

func requestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "catalog model name; empty values a custom bike"},
		&cli.Float64Flag{Name: "kms", Value: bikeval.DefaultKmsDriven, Usage: "kilometres driven"},
		&cli.IntFlag{Name: "year", Value: bikeval.DefaultYear, Usage: "manufacturing year"},
		&cli.Float64Flag{Name: "power", Usage: "engine cc; 0 uses the model's catalog power"},
		&cli.StringFlag{Name: "profile", Usage: "comparables profile (standard, wide)"},
	}
}

// newClient builds the library client from global flags. CLI logging stays
// on stderr at warn level unless --log-level says otherwise.
func newClient(c *cli.Context) (*bikeval.Client, error) {
	zl, err := logger.NewLogger("cli", c.String("log-level"))
	if err != nil {
		return nil, err
	}

	opts := []bikeval.Option{
		bikeval.WithCatalog(c.String("catalog")),
		bikeval.WithModel(c.String("model")),
		bikeval.WithImagesDir(c.String("images")),
		bikeval.WithZapLogger(zl),
	}
	if ep := c.String("remote"); ep != "" {
		opts = append(opts, bikeval.WithRemoteModel(ep, c.String("remote-key"), c.Duration("remote-timeout")))
	}
	if addr := c.String("redis"); addr != "" {
		opts = append(opts, bikeval.WithRedisCache(addr, os.Getenv("BIKEVAL_REDIS_PASSWORD"), c.Duration("redis-ttl")))
	}

	client, err := bikeval.New(c.Context, opts...)
	if err != nil {
		zl.Debug("Client init failed", zap.Error(err))
		return nil, err
	}
	return client, nil
}

func requestFrom(c *cli.Context) bikeval.Request {
	return bikeval.Request{
		Name:      c.String("name"),
		KmsDriven: c.Float64("kms"),
		Year:      c.Int("year"),
		Power:     c.Float64("power"),
		Profile:   c.String("profile"),
	}
}

func runModels(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	names, err := client.Models(c.Args().First())
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(c.App.Writer, n)
	}
	return nil
}

func runResolve(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("resolve: model name is required", 2)
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	sel, err := client.Resolve(strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return err
	}
	brand := "-"
	if sel.Brand != nil {
		brand = *sel.Brand
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "name\t%s\n", sel.Name)
	fmt.Fprintf(w, "in catalog\t%t\n", sel.Found)
	fmt.Fprintf(w, "power\t%g cc\n", sel.DefaultPower)
	fmt.Fprintf(w, "category\t%s\n", sel.Category)
	fmt.Fprintf(w, "brand\t%s\n", brand)
	fmt.Fprintf(w, "logo\t%s\n", sel.Logo)
	return w.Flush()
}

func runEstimate(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	v, err := client.Valuate(c.Context, requestFrom(c))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	printValuation(c, v)
	return nil
}

func printValuation(c *cli.Context, v *bikeval.Valuation) {
	money := format.Default()
	out := c.App.Writer

	fmt.Fprintf(out, "%s (%d, %s)\n", v.Label, v.Year, v.Category)
	fmt.Fprintf(out, "Estimated price: %s\n", money.Format(v.Estimate))
	fmt.Fprintf(out, "Expected range:  %s\n", money.Range(valuation.Range{Lower: v.Range.Lower, Upper: v.Range.Upper}))
	if v.Summary != "" {
		fmt.Fprintf(out, "\n%s\n", v.Summary)
	}
	if len(v.Comparables) == 0 {
		fmt.Fprintf(out, "\nNo comparable listings in the %s range.\n", v.Profile)
		return
	}

	fmt.Fprintf(out, "\nComparable listings (%s):\n", v.Profile)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tCITY\tCC\tKMS\tPRICE")
	for _, l := range v.Comparables {
		fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%s\n", l.Name, l.City, l.Power, money.Number(l.KmsDriven), money.Format(l.Price))
	}
	_ = w.Flush()
}

func runExport(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	rep, err := client.Export(c.Context, bikeval.Format(c.String("format")), requestFrom(c))
	if err != nil {
		return err
	}

	path := rep.Filename
	if out := c.String("out"); out != "" {
		path = out
		if fi, statErr := os.Stat(out); statErr == nil && fi.IsDir() {
			path = filepath.Join(out, rep.Filename)
		}
	}
	if err := os.WriteFile(path, rep.Data, 0o644); err != nil { //nolint:gosec // reports are not secret
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "wrote %s (%d bytes)\n", path, len(rep.Data))
	return nil
}
