package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// answers collects the wizard's responses.
type answers struct {
	Source    CatalogSource
	Path      string
	Port      string
	RemoteURL string
}

// detectCatalog looks for comic data in the current directory and suggests a
// source for it.
func detectCatalog() (CatalogSource, string) {
	for _, name := range []string{"comic.yaml", "comic.yml", "catalog.yaml"} {
		if _, err := os.Stat(name); err == nil {
			return SourceFile, name
		}
	}
	if matches, _ := filepath.Glob(filepath.Join("pages", "*.yaml")); len(matches) > 0 {
		return SourceDir, "pages"
	}
	return SourceEmbedded, ""
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to galatea! Let's configure your reader.")
	fmt.Println()

	detected, detectedPath := detectCatalog()
	if detected != SourceEmbedded {
		fmt.Printf("Found comic data at %s\n\n", detectedPath)
	}

	// 1. Catalog source.
	sources := []CatalogSource{SourceEmbedded, SourceFile, SourceDir, SourceSQLite}
	cursor := 0
	for i, s := range sources {
		if s == detected {
			cursor = i
		}
	}
	sourcePrompt := promptui.Select{
		Label: "Where should pages come from",
		Items: []string{
			"embedded: the built-in sixteen-page story",
			"file: a single YAML catalog",
			"dir: a directory of YAML page files",
			"sqlite: the catalog imported with 'galatea catalog import'",
		},
		CursorPos: cursor,
	}
	idx, _, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("source selection: %w", err)
	}
	a := answers{Source: sources[idx]}

	// 2. Catalog path.
	if a.Source == SourceFile || a.Source == SourceDir {
		pathPrompt := promptui.Prompt{
			Label:   "Catalog path",
			Default: detectedPath,
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("path is required")
				}
				return nil
			},
		}
		if a.Path, err = pathPrompt.Run(); err != nil {
			return nil, fmt.Errorf("catalog path: %w", err)
		}
	}

	// 3. Port.
	portPrompt := promptui.Prompt{
		Label:    "Server port",
		Default:  strconv.Itoa(DefaultPort),
		Validate: validatePort,
	}
	if a.Port, err = portPrompt.Run(); err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}

	// 4. Remote page service.
	remotePrompt := promptui.Prompt{
		Label:   "Remote page service URL (leave blank to serve pages locally)",
		Default: "",
	}
	if a.RemoteURL, err = remotePrompt.Run(); err != nil {
		return nil, fmt.Errorf("remote url: %w", err)
	}

	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}

// config builds and validates a Config from the answers.
func (a answers) config() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Catalog.Source = a.Source
	cfg.Catalog.Path = strings.TrimSpace(a.Path)
	if p := strings.TrimSpace(a.Port); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parsing port %q: %w", a.Port, err)
		}
		cfg.Server.Port = port
	}
	cfg.Reader.RemoteURL = strings.TrimSpace(a.RemoteURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
