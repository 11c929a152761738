// Sort CLI - классификация одного изображения или поиск по журналу
// без интерактивного интерфейса.
//
//	sort-cli -image ./bottle.jpg -prompt "is the cap attached?"
//	sort-cli -search plastic
//	sort-cli -search ""        # весь журнал
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ilkoid/sortbot/pkg/app"
	"github.com/ilkoid/sortbot/pkg/audit"
	"github.com/ilkoid/sortbot/pkg/sorter"
	"github.com/ilkoid/sortbot/pkg/utils"
)

var (
	configFlag  = flag.String("config", "", "Path to config.yaml")
	imageFlag   = flag.String("image", "", "Image to classify: local path or s3://key")
	promptFlag  = flag.String("prompt", "", "Extra prompt appended to the base prompt")
	searchFlag  = flag.String("search", "", "Search the log by keyword (empty shows everything)")
	timeoutFlag = flag.Duration("timeout", 2*time.Minute, "Timeout for one classification")
)

// summaryLen - длина описания в таблице результатов.
const summaryLen = 50

func main() {
	flag.Parse()

	searchSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "search" {
			searchSet = true
		}
	})

	if *imageFlag == "" && flag.NArg() > 0 {
		*imageFlag = flag.Arg(0)
	}
	if *imageFlag == "" && !searchSet {
		fmt.Fprintln(os.Stderr, "Either -image or -search is required.")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(searchSet); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(searchSet bool) error {
	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	cfg, cfgPath, err := app.InitializeConfig(&app.DefaultConfigPathFinder{ConfigFlag: *configFlag})
	if err != nil {
		return err
	}

	if err := utils.InitLoggerIn(cfg.App.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "Logger init failed: %v\n", err)
	}
	defer utils.Close()
	utils.SetDebug(cfg.App.Debug)
	utils.Info("sort-cli started", "config", cfgPath, "image", *imageFlag, "search", searchSet)

	components, err := app.Initialize(ctx, cfg, nil)
	if err != nil {
		utils.Error("Initialization failed", "error", err)
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer components.Close()

	if *imageFlag != "" {
		if err := classify(ctx, components.Sorter); err != nil {
			return err
		}
	}

	if searchSet {
		return search(ctx, components.Sorter, *searchFlag)
	}
	return nil
}

func classify(ctx context.Context, s *sorter.Sorter) error {
	ctx, cancel := context.WithTimeout(ctx, *timeoutFlag)
	defer cancel()

	res, err := s.Classify(ctx, sorter.Request{ImageRef: *imageFlag, Prompt: *promptFlag})
	if res.Description == "" {
		return err
	}

	fmt.Printf("Image:    %s\n", res.ImageRef)
	fmt.Printf("Category: %s\n", res.Label)
	fmt.Printf("Action:   %s\n\n", res.Action)
	fmt.Println(res.Summary())

	if err != nil {
		return fmt.Errorf("result was not saved: %w", err)
	}
	fmt.Printf("\nSaved to the log (#%d) in %v\n", res.ID, res.Duration.Round(time.Millisecond))
	return nil
}

func search(ctx context.Context, s *sorter.Sorter, keyword string) error {
	evs, err := s.Search(ctx, keyword)
	if err != nil {
		return err
	}

	if len(evs) == 0 {
		fmt.Printf("No records for %q\n", keyword)
		return nil
	}

	fmt.Println(renderTable(evs))
	fmt.Printf("%d record(s)\n", len(evs))
	return nil
}

func renderTable(evs []audit.Event) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("ID", "CATEGORY", "ACTION", "DESCRIPTION", "TIME")

	for _, ev := range evs {
		created := "-"
		if !ev.CreatedAt.IsZero() {
			created = ev.CreatedAt.Format("2006-01-02 15:04:05")
		}
		t.Row(fmt.Sprintf("%d", ev.ID), ev.Category, ev.Action, summary(ev.Description), created)
	}
	return t.Render()
}

// summary - первые summaryLen символов описания в одну строку.
func summary(s string) string {
	runes := []rune(s)
	if len(runes) > summaryLen {
		runes = runes[:summaryLen]
	}
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
