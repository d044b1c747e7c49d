package patterns

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// tradeFile is the on-disk YAML shape of one trade's pattern set.
type tradeFile struct {
	Trade            string            `yaml:"trade"`
	Priority         int               `yaml:"priority"`
	FilenameKeywords []string          `yaml:"filename_keywords"`
	PathKeywords     []string          `yaml:"path_keywords"`
	Content          []ContentPattern  `yaml:"content_patterns"`
	SignTypes        []SignTypePattern `yaml:"sign_types"`
}

// LoadFile reads and validates a single trade pattern file.
func LoadFile(path string) (string, TradePatterns, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", TradePatterns{}, fmt.Errorf("failed to read pattern file: %w", err)
	}
	var tf tradeFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return "", TradePatterns{}, fmt.Errorf("failed to parse pattern file: %w", err)
	}
	p := TradePatterns{
		Content:          tf.Content,
		SignTypes:        tf.SignTypes,
		FilenameKeywords: tf.FilenameKeywords,
		PathKeywords:     tf.PathKeywords,
		Priority:         tf.Priority,
	}
	if err := Validate(tf.Trade, p); err != nil {
		return "", TradePatterns{}, err
	}
	return tf.Trade, p, nil
}

// LoadDir loads every *.yaml / *.yml file in dir as one trade pattern set.
// Invalid files are reported individually and do not abort the load; the
// returned map holds only the sets that parsed and validated.
func LoadDir(dir string) (map[string]TradePatterns, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read pattern directory: %w", err)}
	}
	loaded := make(map[string]TradePatterns)
	var errs []error
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		trade, p, err := LoadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if _, dup := loaded[trade]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate trade %q", name, trade))
			continue
		}
		loaded[trade] = p
	}
	return loaded, errs
}

// LoadDirInto loads dir and registers every valid set into the registry.
// It returns the number registered along with the per-file errors.
func LoadDirInto(dir string, r *Registry) (int, []error) {
	loaded, errs := LoadDir(dir)
	n := 0
	for trade, p := range loaded {
		if err := r.Register(trade, p); err != nil {
			errs = append(errs, fmt.Errorf("trade %q: %w", trade, err))
			continue
		}
		n++
	}
	return n, errs
}
