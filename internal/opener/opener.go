// Package opener hands user websites to the desktop's URL handler.
package opener

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pders01/postr/internal/config"
	"github.com/pders01/postr/internal/debuglog"
	"github.com/pders01/postr/internal/validation"
)

var ErrNoOpener = errors.New("no application found to open URL")

type Opener struct {
	command   string
	validator *validation.URLValidator
	lookPath  func(string) (string, error)
	start     func(name string, args ...string) error
}

func New(cfg *config.Config, v *validation.URLValidator) *Opener {
	if v == nil {
		v = validation.NewURLValidator()
	}
	cmd := ""
	if cfg != nil {
		cmd = strings.TrimSpace(cfg.UI.Opener)
	}
	return &Opener{
		command:   cmd,
		validator: v,
		lookPath:  exec.LookPath,
		start:     startDetached,
	}
}

// Command reports the executable Open will run.
func (o *Opener) Command() string {
	if o.command != "" {
		return o.command
	}
	return defaultCommand()
}

// Open normalizes website (bare hosts get https) and launches it.
func (o *Opener) Open(website string) (string, error) {
	if strings.TrimSpace(website) == "" {
		return "", fmt.Errorf("user has no website")
	}
	target, err := o.validator.ValidateAndNormalize(website)
	if err != nil {
		return "", fmt.Errorf("invalid website: %w", err)
	}

	name := o.Command()
	if name == "" {
		return "", ErrNoOpener
	}

	args := []string{target}
	if name == "start" {
		// start is a cmd.exe builtin
		name, args = "cmd", []string{"/c", "start", "", target}
	} else if _, err := o.lookPath(name); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoOpener, name)
	}

	debuglog.WithFields(map[string]interface{}{"cmd": name, "url": target}).Infof("opening website")
	if err := o.start(name, args...); err != nil {
		return "", fmt.Errorf("failed to start %s: %w", name, err)
	}
	return target, nil
}

func defaultCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "start"
	default:
		return "xdg-open"
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
