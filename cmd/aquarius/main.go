package main

import (
	"fyne.io/fyne/v2/app"
	"github.com/alecthomas/kong"
	"github.com/mudler/xlog"

	studioui "github.com/aquarius4k/aquarius/cmd/aquarius/internal"
	"github.com/aquarius4k/aquarius/core/backend"
	"github.com/aquarius4k/aquarius/core/cli"
	cliContext "github.com/aquarius4k/aquarius/core/cli/context"
	"github.com/aquarius4k/aquarius/core/config"
	"github.com/aquarius4k/aquarius/core/startup"
	"github.com/aquarius4k/aquarius/core/studio"
	"github.com/aquarius4k/aquarius/pkg/signals"
	"github.com/aquarius4k/aquarius/pkg/xsysinfo"
)

var CLI cli.StudioCLI

func main() {
	// Initialize xlog at a level of INFO, we will set the desired level after we parse the CLI options
	xlog.SetLogger(xlog.NewLogger(xlog.LogLevel("info"), "text"))

	cliContext.LoadEnvFiles(cliContext.EnvFiles()...)

	kong.Parse(&CLI,
		kong.Name("aquarius"),
		kong.Description(`  Aquarius 4K turns a prompt into a 3840x2160 image through a diffusion model and an x4 upscaler.

Images are saved as AQ_0001.png, AQ_0002.png, ... in the output directory.
`),
		kong.UsageOnError(),
	)
	CLI.ConfigureLogging()

	cfg, err := CLI.Load()
	if err != nil {
		xlog.Fatal("Cannot load configuration", "error", err)
	}
	holder := config.NewHolder(cfg)

	pipeline, err := backend.NewOpenAIPipeline(cfg, holder.Get)
	if err != nil {
		xlog.Fatal("Cannot create image pipeline", "error", err)
	}

	xlog.Debug("Host", xsysinfo.CPUSummary()...)
	xlog.Info("Using device", "device", cfg.Device)

	ctx := signals.Context()
	if !CLI.SkipPreload {
		xlog.Info("Checking models", "endpoint", cfg.Endpoint, "base", cfg.BaseModel, "upscaler", cfg.UpscaleModel)
		if err := pipeline.Preload(ctx); err != nil {
			xlog.Fatal("Models are not available", "error", err)
		}
	}

	if CLI.WatchConfig {
		watcher := startup.NewConfigFileWatcher(CLI.ConfigFile, CLI.Overrides(), holder)
		if err := watcher.Watch(); err != nil {
			xlog.Error("Config file will not be reloaded", "error", err, "path", CLI.ConfigFile)
		} else {
			signals.RegisterGracefulTerminationHandler(func() {
				if err := watcher.Stop(); err != nil {
					xlog.Error("Error stopping config watcher", "error", err)
				}
			})
		}
	}

	myApp := app.NewWithID("io.aquarius4k.studio")
	myApp.Settings().SetTheme(studioui.DarkTheme())
	myWindow := myApp.NewWindow(studioui.WindowTitle)

	ui := studioui.NewStudioUI(ctx, studio.New(pipeline, holder.Get))
	myWindow.SetContent(ui.CreateMainUI())
	myWindow.Resize(studioui.WindowSize)
	myWindow.SetFixedSize(true)

	xlog.Info("Aquarius 4K ready", "output", cfg.OutputDir)
	myWindow.ShowAndRun()
}
