package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/minesched/app"
	coremetrics "github.com/kilianp07/minesched/core/metrics"
	"github.com/kilianp07/minesched/core/model"
	coremqtt "github.com/kilianp07/minesched/core/mqtt"
	"github.com/kilianp07/minesched/core/roster"
	"github.com/kilianp07/minesched/core/schedule"
	"github.com/kilianp07/minesched/core/snapshot"
	"github.com/kilianp07/minesched/pkg/export"
)

var genOpts struct {
	roster  string
	delays  string
	hours   int
	format  string
	output  string
	persist bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a schedule once and print it",
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genOpts.roster, "roster", "", "roster file (yaml or json); defaults to the configured reader")
	f.StringVar(&genOpts.delays, "delays", "", "file with delayed slots (yaml or json)")
	f.IntVar(&genOpts.hours, "hours", 0, "grid hours (6, 12, 24 or 48); defaults to the configured value")
	f.StringVarP(&genOpts.format, "format", "f", "csv", "output format: json, csv, html or summary")
	f.StringVarP(&genOpts.output, "output", "o", "", "output file; stdout when empty")
	f.BoolVar(&genOpts.persist, "persist", false, "save the grid to the configured snapshot store")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := []app.Option{
		app.WithPublisher(coremqtt.NopPublisher{}),
		app.WithSink(coremetrics.NopSink{}),
	}
	if genOpts.roster != "" {
		opts = append(opts, app.WithReader(roster.NewFileReader(genOpts.roster)))
	}
	if !genOpts.persist {
		opts = append(opts, app.WithStore(snapshot.NewMemoryStore(1)))
	}
	svc, err := app.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	req := schedule.Request{GridHours: genOpts.hours}
	if genOpts.delays != "" {
		if req.DelayedSlots, err = readDelays(genOpts.delays); err != nil {
			return err
		}
	}
	ev, err := svc.Generate(ctx, req, "cli")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if genOpts.output != "" {
		f, err := os.Create(genOpts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	if err := writeGrid(out, ev.Grid, genOpts.format, "Schedule "+ev.ID); err != nil {
		return err
	}
	for _, w := range ev.Grid.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s %s: %s\n", w.Kind, w.Site, w.Message)
	}
	if ev.SnapshotID != "" && genOpts.persist {
		fmt.Fprintf(cmd.ErrOrStderr(), "saved snapshot %s\n", ev.SnapshotID)
	}
	return nil
}

func writeGrid(w io.Writer, g *schedule.Grid, format, title string) error {
	switch format {
	case "json":
		return export.WriteJSON(w, g)
	case "csv":
		return export.WriteCSV(w, g)
	case "html":
		return export.RenderChartHTML(w, g, title)
	case "summary":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(export.Summarize(g))
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func readDelays(path string) ([]model.DelaySlot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open delays: %w", err)
	}
	defer func() { _ = f.Close() }()
	var slots []model.DelaySlot
	switch format := roster.FormatFromPath(path); format {
	case "json":
		err = json.NewDecoder(f).Decode(&slots)
	case "yaml":
		err = yaml.NewDecoder(f).Decode(&slots)
	default:
		err = fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode delays %s: %w", path, err)
	}
	return slots, nil
}
