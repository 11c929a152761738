// Sortbot TUI - интерактивный сортировщик отходов.
//
// Выбор изображения, дополнительный промпт, классификация и поиск по
// журналу решений в одном терминальном окне.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/sortbot/internal/ui"
	"github.com/ilkoid/sortbot/pkg/app"
	"github.com/ilkoid/sortbot/pkg/events"
	"github.com/ilkoid/sortbot/pkg/utils"
)

var configFlag = flag.String("config", "", "Path to config.yaml")

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	// 1. Конфигурация
	cfg, cfgPath, err := app.InitializeConfig(&app.DefaultConfigPathFinder{ConfigFlag: *configFlag})
	if err != nil {
		return err
	}

	// 2. Логгер (директория берется из конфига)
	if err := utils.InitLoggerIn(cfg.App.LogDir); err != nil {
		log.Printf("Warning: failed to init logger: %v", err)
	}
	defer utils.Close()
	utils.SetDebug(cfg.App.Debug)
	utils.Info("Application started", "config", cfgPath)

	// 3. Компоненты + emitter для событий конвейера
	emitter := events.NewChanEmitter(100)
	defer emitter.Close()

	components, err := app.Initialize(ctx, cfg, emitter)
	if err != nil {
		utils.Error("Initialization failed", "error", err)
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer components.Close()

	// 4. TUI
	model := ui.InitialModel(ui.Deps{
		Pipeline: components.Sorter,
		Images:   components.Images,
		Store:    components.Store,
		Model:    components.Vision.Model(),
		Context:  ctx,
	}, emitter.Subscribe())

	utils.Info("Starting TUI")

	// Без AltScreen - текст лога можно выделять и копировать.
	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		utils.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	utils.Info("Application exited normally")
	return nil
}
