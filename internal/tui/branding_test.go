package tui

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/postr/internal/config"
)

func TestShowBanner(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	ShowBanner("1.0.0-test")

	w.Close()
	os.Stdout = old
	out := <-outC

	if !strings.Contains(out, "posts & users browser") {
		t.Errorf("Expected banner to contain tagline, got: %s", out)
	}
	if !strings.Contains(out, "╔") || !strings.Contains(out, "╝") {
		t.Errorf("Expected banner to contain border characters, got: %s", out)
	}
	if !strings.Contains(out, "◆") {
		t.Errorf("Expected banner to contain separator symbols, got: %s", out)
	}
	if !strings.Contains(out, "v1.0.0-test") {
		t.Errorf("Expected banner to contain version 'v1.0.0-test', got: %s", out)
	}
}

func TestBannerDevVersion(t *testing.T) {
	out := Banner("dev")
	if strings.Contains(out, "dev") {
		t.Errorf("dev builds should not print a version, got: %s", out)
	}
}

func TestGetCompactBanner(t *testing.T) {
	message := "Test message"
	result := GetCompactBanner(message)

	if !strings.Contains(result, message) {
		t.Errorf("Expected compact banner to contain '%s', got: %s", message, result)
	}
	if !strings.Contains(result, "█▀▀▄") {
		t.Errorf("Expected compact banner to contain logo elements, got: %s", result)
	}
}

func TestGetWelcomeMessage(t *testing.T) {
	if result := GetWelcomeMessage(false); !strings.Contains(result, "ctrl+n") {
		t.Errorf("Expected welcome message to mention ctrl+n, got: %s", result)
	}
	if result := GetWelcomeMessage(true); strings.Contains(result, "ctrl+n") {
		t.Errorf("Read-only welcome should not offer to write posts, got: %s", result)
	}
}

func TestLogoConstants(t *testing.T) {
	if len(LogoLines) != 3 {
		t.Errorf("Expected 3 logo lines, got %d", len(LogoLines))
	}
	if len(BannerColors) != 5 {
		t.Errorf("Expected 5 banner colors, got %d", len(BannerColors))
	}
}

func TestApplyTheme(t *testing.T) {
	saved := []lipgloss.Color{PrimaryColor, MutedColor, ErrorColor}
	t.Cleanup(func() {
		PrimaryColor, MutedColor, ErrorColor = saved[0], saved[1], saved[2]
		buildStyles()
	})

	ApplyTheme(config.UIColors{Primary: "#000001", Error: ""})

	if PrimaryColor != lipgloss.Color("#000001") {
		t.Errorf("PrimaryColor = %v, want #000001", PrimaryColor)
	}
	if ErrorColor != saved[2] {
		t.Errorf("empty entries should keep the built-in color, got %v", ErrorColor)
	}
	if LogoStyle.GetForeground() != lipgloss.Color("#000001") {
		t.Errorf("styles should be rebuilt from the new palette")
	}
}
