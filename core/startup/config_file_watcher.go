package startup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aquarius4k/aquarius/core/config"
	"github.com/aquarius4k/aquarius/pkg/xsysinfo"
	"github.com/fsnotify/fsnotify"
	"github.com/mudler/xlog"
)

type fileHandler func(fileContent []byte, holder *config.Holder) error

// ConfigFileWatcher re-reads registered files in a directory whenever they
// change and lets their handlers update the live studio config.
type ConfigFileWatcher struct {
	dir      string
	handlers map[string]fileHandler
	watcher  *fsnotify.Watcher
	holder   *config.Holder
	done     chan struct{}
}

// NewConfigFileWatcher watches the studio YAML at path. overrides are the
// CLI/env values, which keep winning over the file on every reload.
func NewConfigFileWatcher(path string, overrides config.StudioConfig, holder *config.Holder) *ConfigFileWatcher {
	c := &ConfigFileWatcher{
		dir:      filepath.Dir(path),
		handlers: make(map[string]fileHandler),
		holder:   holder,
		done:     make(chan struct{}),
	}
	if err := c.Register(filepath.Base(path), readStudioConfig(overrides), false); err != nil {
		xlog.Error("unable to register config file handler", "error", err, "file", path)
	}
	return c
}

func (c *ConfigFileWatcher) Register(filename string, handler fileHandler, runNow bool) error {
	if _, ok := c.handlers[filename]; ok {
		return fmt.Errorf("handler already registered for file %s", filename)
	}
	c.handlers[filename] = handler
	if runNow {
		c.callHandler(filename, handler)
	}
	return nil
}

func (c *ConfigFileWatcher) callHandler(filename string, handler fileHandler) {
	rootedFilePath := filepath.Join(c.dir, filepath.Clean(filename))
	xlog.Debug("reading file for dynamic config update", "filename", rootedFilePath)
	fileContent, err := os.ReadFile(rootedFilePath)
	if err != nil && !os.IsNotExist(err) {
		xlog.Error("could not read file", "error", err, "filename", rootedFilePath)
		return
	}

	if err = handler(fileContent, c.holder); err != nil {
		xlog.Error("config reload failed, keeping previous settings", "error", err, "filename", rootedFilePath)
	}
}

// Watch starts listening for changes in the background. Stop ends it.
func (c *ConfigFileWatcher) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create a watcher for %s: %w", c.dir, err)
	}
	if err := watcher.Add(c.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("unable to watch %s: %w", c.dir, err)
	}
	c.watcher = watcher

	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
					continue
				}
				handler, ok := c.handlers[filepath.Base(event.Name)]
				if !ok {
					continue
				}
				c.callHandler(filepath.Base(event.Name), handler)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				xlog.Error("config watcher error received", "error", err)
			}
		}
	}()
	return nil
}

func (c *ConfigFileWatcher) Stop() error {
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	<-c.done
	return err
}

func readStudioConfig(overrides config.StudioConfig) fileHandler {
	return func(fileContent []byte, holder *config.Holder) error {
		xlog.Debug("processing studio config update")

		file, err := config.Parse(fileContent)
		if err != nil {
			return err
		}
		next, err := config.Resolve(file, overrides)
		if err != nil {
			return err
		}

		current := holder.Get()
		if next.Endpoint != current.Endpoint {
			xlog.Warn("endpoint changes need a restart, keeping the current one", "current", current.Endpoint, "requested", next.Endpoint)
			next.Endpoint = current.Endpoint
		}
		next.AuthToken = current.AuthToken
		next.Device = xsysinfo.ResolveDevice(next.Device)

		if err := next.Validate(); err != nil {
			return err
		}
		holder.Set(next)
		xlog.Info("studio config reloaded", "base_model", next.BaseModel, "upscale_model", next.UpscaleModel, "guidance", next.GuidanceScale, "output_dir", next.OutputDir)
		return nil
	}
}
