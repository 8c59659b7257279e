package silex

import (
	"path/filepath"
	"strconv"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// DefaultTabSize is used when neither .silex.yaml nor .editorconfig set a tab size.
const DefaultTabSize = 4

// SourceExt is the file extension of Silex source files.
const SourceExt = ".slx"

// ErrConfigNotFound is returned when no config file exists in the directory tree.
var ErrConfigNotFound = errors.New("no .silex.yaml found")

// Config represents the .silex.yaml configuration file.
type Config struct {
	// TabSize is the display width of a tab character. Zero means "ask .editorconfig".
	TabSize int `yaml:"tabSize,omitempty"`

	// Environments lists extra function environment files, relative to the config file.
	Environments []string `yaml:"environments,omitempty"`

	// ScopedNamespaces pops a namespace segment when its body closes.
	// Off by default: entering a namespace extends the prefix for the rest of the document.
	ScopedNamespaces bool `yaml:"scopedNamespaces,omitempty"`

	// LateDeclarations lets a declaration replace the unknown-identifier placeholder
	// left by an earlier use in the same scope.
	LateDeclarations bool `yaml:"lateDeclarations,omitempty"`

	// EmitUnmapped emits punctuation tokens with the sentinel category id.
	EmitUnmapped bool `yaml:"emitUnmapped,omitempty"`

	// dir is the directory containing the config file.
	dir string
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".silex.yaml", ".silex.yml", "silex.yaml", "silex.yml"}

// LoadConfig finds and loads the nearest .silex.yaml walking up from dir.
func LoadConfig(fs afero.Fs, dir string) (*Config, error) {
	path, err := FindConfig(fs, dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(fs, path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(fs afero.Fs, dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.WithStack(err)
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			ok, err := afero.Exists(fs, path)
			if err == nil && ok {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, filepath.Clean(path))
	if err != nil {
		return nil, errors.Errorf("read config %s: %w", path, err)
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, errors.Errorf("parse config %s: %w", path, err)
	}

	if cfg.TabSize < 0 {
		return nil, errors.Errorf("parse config %s: tabSize must not be negative, got %d", path, cfg.TabSize)
	}

	cfg.dir = filepath.Dir(path)

	return &cfg, nil
}

// EnvironmentPaths returns the configured environment files as absolute paths.
func (c *Config) EnvironmentPaths() []string {
	paths := make([]string, 0, len(c.Environments))

	for _, p := range c.Environments {
		if !filepath.IsAbs(p) && c.dir != "" {
			p = filepath.Join(c.dir, p)
		}

		paths = append(paths, p)
	}

	return paths
}

// TabSizeFor returns the tab size for a source file.
// An explicit tabSize wins; otherwise .editorconfig's tab_width/indent_size is used.
func (c *Config) TabSizeFor(filePath string) int {
	if c != nil && c.TabSize > 0 {
		return c.TabSize
	}

	return editorconfigTabSize(filePath)
}

func editorconfigTabSize(filePath string) int {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return DefaultTabSize
	}

	def, err := editorconfig.GetDefinitionForFilename(abs)
	if err != nil || def == nil {
		return DefaultTabSize
	}

	if def.TabWidth > 0 {
		return def.TabWidth
	}

	if size, err := strconv.Atoi(def.IndentSize); err == nil && size > 0 {
		return size
	}

	return DefaultTabSize
}
