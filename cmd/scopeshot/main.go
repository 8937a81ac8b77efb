package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/dmawson/scopeshot/internal/app"
	"github.com/dmawson/scopeshot/internal/config"
	"github.com/dmawson/scopeshot/internal/pages"
	"github.com/dmawson/scopeshot/internal/profile"
	"github.com/dmawson/scopeshot/internal/registry"
	"github.com/dmawson/scopeshot/internal/scpi"
	"github.com/dmawson/scopeshot/internal/session"
	"github.com/dmawson/scopeshot/internal/store"
	"github.com/dmawson/scopeshot/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/scopeshot/config.yaml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg := config.Load(*configPath)
	setupLogging(cfg.LogFile)

	profiles, err := profile.Load(cfg.ProfilesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading profiles: %v\n", err)
		os.Exit(1)
	}

	reg, err := registry.Load(cfg.InstrumentsCSV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading instrument registry: %v\n", err)
		os.Exit(1)
	}

	st := store.New(stateDir())

	opts := scpi.Options{
		Timeout:   cfg.Timeout(),
		ChunkSize: cfg.ChunkSize,
	}
	runner := session.NewLive(profiles, reg, opts, cfg.TCPEndpoints, cfg.BaudRate)

	pageMap := map[app.PageID]app.Page{
		app.InstrumentsPage: pages.NewInstrumentsPage(runner),
		app.CapturePage:     pages.NewCapturePage(runner, st, &cfg),
		app.ConsolePage:     pages.NewConsolePage(runner, st),
		app.ProfilesPage:    pages.NewProfilesPage(profiles),
		app.SettingsPage:    pages.NewSettingsPage(&cfg, *configPath),
	}

	model := app.New(pageMap)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends logrus output to the configured file. The terminal is
// owned by the TUI, so stderr logging would corrupt the screen.
func setupLogging(path string) {
	if path == "" {
		logrus.SetOutput(os.Stderr)
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logrus.SetOutput(os.Stderr)
		logrus.Warnf("cannot open log file %s: %v", path, err)
		return
	}
	logrus.SetOutput(f)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.Infof("%s starting", version.String())
}

func stateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scopeshot"
	}
	return filepath.Join(home, ".config", "scopeshot")
}
