package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"github.com/alecthomas/kong"
	"github.com/mudler/xlog"

	"github.com/aquarius4k/aquarius/core/cli"
	cliContext "github.com/aquarius4k/aquarius/core/cli/context"
	"github.com/aquarius4k/aquarius/pkg/imageutils"
)

var CLI cli.DreamCLI

func main() {
	xlog.SetLogger(xlog.NewLogger(xlog.LogLevel("info"), "text"))

	cliContext.LoadEnvFiles(cliContext.EnvFiles()...)

	kong.Parse(&CLI,
		kong.Name("toydream"),
		kong.Description("  toydream runs a prompt through an untrained text encoder and generator and shows the 28x28 result."),
		kong.UsageOnError(),
	)
	CLI.ConfigureLogging()

	img, err := CLI.Render()
	if err != nil {
		xlog.Fatal("Cannot dream", "error", err, "prompt", CLI.Prompt)
	}
	if err := CLI.Save(img); err != nil {
		xlog.Fatal("Cannot write image", "error", err, "path", CLI.Output)
	}
	if CLI.Headless {
		return
	}

	zoom := max(CLI.Zoom, 1)
	view := canvas.NewImageFromImage(imageutils.Enlarge(img, zoom))
	view.FillMode = canvas.ImageFillContain
	view.ScaleMode = canvas.ImageScalePixels

	myApp := app.NewWithID("io.aquarius4k.toydream")
	myWindow := myApp.NewWindow(CLI.Prompt)
	myWindow.SetContent(view)
	size := float32(img.Bounds().Dx() * zoom)
	myWindow.Resize(fyne.NewSize(size, size))
	myWindow.ShowAndRun()
}
