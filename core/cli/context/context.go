package cliContext

import "github.com/mudler/xlog"

// Context holds the flags every aquarius binary shares.
type Context struct {
	Debug     bool    `env:"AQUARIUS_DEBUG,DEBUG" default:"false" hidden:"" help:"Same as --log-level=debug"`
	LogLevel  *string `env:"AQUARIUS_LOG_LEVEL" enum:"error,warn,info,debug,trace" help:"Set the level of logs to output [${enum}]"`
	LogFormat *string `env:"AQUARIUS_LOG_FORMAT" default:"default" enum:"default,text,json" help:"Set the format of logs to output [${enum}]"`
}

// Level resolves the effective log level, honouring --debug when no level
// was given explicitly.
func (c *Context) Level() string {
	if c.LogLevel != nil {
		return *c.LogLevel
	}
	if c.Debug {
		return "debug"
	}
	return "info"
}

func (c *Context) Format() string {
	if c.LogFormat == nil {
		return "default"
	}
	return *c.LogFormat
}

// ConfigureLogging installs the global xlog logger.
func (c *Context) ConfigureLogging() {
	xlog.SetLogger(xlog.NewLogger(xlog.LogLevel(c.Level()), c.Format()))
}
