package studioui

import (
	"context"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/aquarius4k/aquarius/core/studio"
)

const (
	WindowTitle       = "Aquarius 4K"
	PromptPlaceholder = "Enter your prompt here"
)

// Window geometry, in device independent pixels.
var (
	WindowSize = fyne.NewSize(532, 622)

	promptPos   = fyne.NewPos(10, 10)
	promptSize  = fyne.NewSize(512, 40)
	buttonPos   = fyne.NewPos(206, 60)
	buttonSize  = fyne.NewSize(120, 40)
	previewPos  = fyne.NewPos(10, 110)
	previewSize = fyne.NewSize(512, 512)
)

// Trigger is the work behind the Generate button. It reports to view and
// must not be called from the UI thread.
type Trigger interface {
	Trigger(ctx context.Context, prompt string, view studio.View)
}

// StudioUI is the single window of the studio
type StudioUI struct {
	promptEntry    *widget.Entry
	generateButton *widget.Button
	preview        *canvas.Image
	messageLabel   *widget.Label

	ctx     context.Context
	trigger Trigger
	done    chan struct{}
}

func NewStudioUI(ctx context.Context, trigger Trigger) *StudioUI {
	ui := &StudioUI{
		promptEntry:  widget.NewEntry(),
		preview:      canvas.NewImageFromImage(nil),
		messageLabel: widget.NewLabel(""),
		ctx:          ctx,
		trigger:      trigger,
	}
	ui.promptEntry.SetPlaceHolder(PromptPlaceholder)
	ui.promptEntry.OnSubmitted = func(string) { ui.generate() }
	ui.generateButton = widget.NewButton("Generate", ui.generate)

	ui.preview.FillMode = canvas.ImageFillContain
	ui.preview.ScaleMode = canvas.ImageScaleSmooth
	ui.messageLabel.Alignment = fyne.TextAlignCenter
	ui.messageLabel.Wrapping = fyne.TextWrapWord
	return ui
}

// CreateMainUI lays the widgets out at fixed positions.
func (ui *StudioUI) CreateMainUI() *fyne.Container {
	previewArea := container.NewStack(ui.preview, container.NewCenter(ui.messageLabel))

	ui.promptEntry.Move(promptPos)
	ui.promptEntry.Resize(promptSize)
	ui.generateButton.Move(buttonPos)
	ui.generateButton.Resize(buttonSize)
	previewArea.Move(previewPos)
	previewArea.Resize(previewSize)

	return container.NewWithoutLayout(ui.promptEntry, ui.generateButton, previewArea)
}

// ShowMessage replaces the preview with text. Safe to call from any
// goroutine.
func (ui *StudioUI) ShowMessage(text string) {
	fyne.Do(func() {
		ui.preview.Image = nil
		ui.preview.Refresh()
		ui.messageLabel.SetText(text)
		ui.messageLabel.Show()
	})
}

// ShowImage replaces the preview with img. Safe to call from any goroutine.
func (ui *StudioUI) ShowImage(img image.Image) {
	fyne.Do(func() {
		ui.messageLabel.Hide()
		ui.messageLabel.SetText("")
		ui.preview.Image = img
		ui.preview.Refresh()
	})
}

// generate runs one request off the UI thread. The button stays disabled
// until it finishes, so requests never overlap.
func (ui *StudioUI) generate() {
	if ui.generateButton.Disabled() {
		return
	}
	prompt := ui.promptEntry.Text
	ui.generateButton.Disable()
	done := make(chan struct{})
	ui.done = done

	go func() {
		defer close(done)
		defer fyne.Do(ui.generateButton.Enable)
		ui.trigger.Trigger(ui.ctx, prompt, ui)
	}()
}

// Wait blocks until the request in flight, if any, has reported back.
func (ui *StudioUI) Wait() {
	if ui.done != nil {
		<-ui.done
	}
}
