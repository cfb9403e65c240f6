package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ayusman/physioduel/internal/app"
	"github.com/ayusman/physioduel/internal/config"
	"github.com/ayusman/physioduel/internal/game"
	"github.com/ayusman/physioduel/internal/hook"
	"github.com/ayusman/physioduel/internal/pose"
	"github.com/ayusman/physioduel/internal/report"
	"github.com/ayusman/physioduel/internal/server"
	"github.com/ayusman/physioduel/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	exportPath := flag.String("export", "", "write the session history to this XLSX file and exit")
	stdin := flag.Bool("stdin", false, "read JSON landmark frames from standard input")
	flag.Parse()

	fmt.Println("PhysioDuel - Rehab Exercise Duel")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if *exportPath != "" {
		if err := report.Export(st, *exportPath); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		fmt.Printf("Session history written to %s\n", *exportPath)
		return
	}

	a, err := app.New(app.Config{Store: st, Game: cfg.Game})
	if err != nil {
		log.Fatalf("Failed to create game: %v", err)
	}

	// Closed in order on shutdown
	var closers []func()

	// Run event hooks if a hook directory is configured
	if cfg.Hooks.Dir != "" {
		manager := hook.NewManager(cfg.Hooks.Dir)
		if err := manager.Discover(); err != nil {
			log.Printf("Failed to discover hooks: %v", err)
		}
		log.Printf("Loaded %d hooks from %s", len(manager.List()), cfg.Hooks.Dir)

		watchCtx, stopWatch := context.WithCancel(context.Background())
		go func() {
			if err := manager.Watch(watchCtx); err != nil {
				log.Printf("Hook directory not watched: %v", err)
			}
		}()

		dispatcher := hook.NewDispatcher(manager, hook.NewExecutor(cfg.Hooks.Timeout))
		closers = append(closers, stopWatch, dispatcher.Close)
		a.Subscribe(func(r game.FrameResult) {
			dispatcher.Notify(a.MatchID(), r.Events)
		})
	}

	// Start the pose pipeline if a source is configured
	switch {
	case *stdin:
		if err := a.Start(pose.NewStreamSource(os.Stdin)); err != nil {
			log.Fatalf("Failed to start pipeline: %v", err)
		}
	case cfg.Pose.Command != "":
		src, err := pose.NewProcessSource(cfg.Pose.Command, cfg.Pose.Args...)
		if err != nil {
			log.Printf("Pose service not available (%v), waiting for frames on /api/frames", err)
		} else if err := a.Start(src); err != nil {
			log.Fatalf("Failed to start pipeline: %v", err)
		}
	}

	webDir := cfg.Server.StaticDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
	})

	// Record the running match before exiting
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down")
		srv.Close()
		a.Close()
		for _, c := range closers {
			c()
		}
		st.Close()
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
	if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.physioduel/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".physioduel", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
