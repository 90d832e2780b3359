package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pders01/postr/internal/listing"
	"github.com/pders01/postr/internal/validation"
)

var exportFlags struct {
	format  string
	out     string
	search  string
	userID  int
	refresh bool
}

var exportCmd = &cobra.Command{
	Use:       "export posts|users",
	Short:     "Write the filtered collection as JSON, YAML or TOML",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"posts", "users"},
	RunE:      runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.format, "format", "json", "Output format: json, yaml or toml")
	f.StringVarP(&exportFlags.out, "out", "o", "", "Write to this file instead of stdout")
	f.StringVar(&exportFlags.search, "search", "", "Only export items containing this text")
	f.IntVar(&exportFlags.userID, "user", 0, "Only export posts by this user id")
	f.BoolVar(&exportFlags.refresh, "refresh", false, "Bypass the cache")
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(exportFlags.format)
	switch format {
	case "json", "yaml", "yml", "toml":
	default:
		return fmt.Errorf("unsupported format %q (want json, yaml or toml)", exportFlags.format)
	}

	var outPath string
	if exportFlags.out != "" {
		p, err := validation.ValidateFilePath(exportFlags.out)
		if err != nil {
			return fmt.Errorf("invalid output path: %w", err)
		}
		outPath = p
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := openRuntime(cfg, flags.allowLocal, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	var data []byte
	switch args[0] {
	case "posts":
		m := rt.postManager()
		defer m.Dispose()
		items, err := exportItems(cmd, rt, m, rt.posts, exportFlags.userID)
		if err != nil {
			return err
		}
		data, err = encode(format, "posts", items)
		if err != nil {
			return err
		}
	case "users":
		m := rt.userManager()
		defer m.Dispose()
		items, err := exportItems(cmd, rt, m, rt.users, 0)
		if err != nil {
			return err
		}
		data, err = encode(format, "users", items)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown collection %q (want posts or users)", args[0])
	}

	if outPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", args[0], outPath)
	return nil
}

func exportItems[T listing.Item](cmd *cobra.Command, rt *runtime, m *listing.Manager[T], src listing.Source[T], userID int) ([]T, error) {
	if err := loadManager(cmd, rt, m, src, exportFlags.refresh); err != nil {
		return nil, err
	}
	m.SetUserFilter(userID)
	m.ApplySearch(exportFlags.search)
	return m.Snapshot().Filtered, nil
}

// encode renders items in format. TOML has no top-level arrays, so the
// items go under a table named after the collection; YAML and JSON get
// the bare list.
func encode[T any](format, name string, items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	switch format {
	case "yaml", "yml":
		return yaml.Marshal(items)
	case "toml":
		return toml.Marshal(map[string][]T{name: items})
	default:
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}
