package internal

import (
	"io"
	"os"

	"github.com/spf13/afero"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	fs     afero.Fs
	stdout io.Writer
	logOut io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithFs sets the file system holding the content tree and build output.
func WithFs(fsys afero.Fs) Option {
	return func(a *application) {
		a.fs = fsys
	}
}

// WithOutput sets where command results are printed.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}

// WithLogOutput sets where structured logs are written.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}

func newApplication(opts []Option) *application {
	app := &application{
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		logOut: os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}
