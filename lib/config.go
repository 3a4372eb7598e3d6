package cc2svn

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yml "gopkg.in/yaml.v3"
)

// Config captures the yaml description of a conversion run.
type Config struct {
	Filename string `yaml:"-"`

	Cleartool   string `yaml:"cleartool"`
	VobDir      string `yaml:"vob-dir"`
	CacheDir    string `yaml:"cache-dir"`
	DumpFile    string `yaml:"dump-file"`
	HistoryFile string `yaml:"history-file"`

	AutoPropsFile   string `yaml:"autoprops-file"`
	LabelsFile      string `yaml:"labels-file,omitempty"`
	BranchesFile    string `yaml:"branches-file,omitempty"`
	IgnoredDirsFile string `yaml:"ignored-directories-file,omitempty"`

	ConfigSpecDir     string `yaml:"config-spec-dir,omitempty"`
	TmpDumpFile       string `yaml:"tmp-dump-file,omitempty"`
	BranchHistoryFile string `yaml:"branch-history-file,omitempty"`
	RunStateFile      string `yaml:"run-state-file,omitempty"`

	SinceDate   string `yaml:"dump-since-date,omitempty"`
	Encoding    string `yaml:"encoding,omitempty"`
	LinksBranch string `yaml:"links-branch,omitempty"`
	ReposUUID   string `yaml:"repos-uuid,omitempty"`

	CreateTopDirs       bool `yaml:"create-branches-tags-dirs"`
	ZeroSizeCheck       bool `yaml:"check-zerosize-cachefile"`
	TolerateChildBranch bool `yaml:"ignore-child-branch-warning"`
	Compress            bool `yaml:"compress"`

	sinceDate time.Time
}

// NewConfig returns a Config populated from the yaml definition in the
// given file, with defaults filled in for anything the file leaves out.
func NewConfig(filename string) (*Config, error) {
	config := &Config{
		Cleartool:         "cleartool",
		TmpDumpFile:       "branch.dump",
		BranchHistoryFile: "branches.done",
		RunStateFile:      "cc2svn.state",
		LinksBranch:       "main",
		CreateTopDirs:     true,
		ZeroSizeCheck:     true,
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err = yml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	config.Filename = filename

	for _, field := range []struct{ key, value string }{
		{"vob-dir", config.VobDir},
		{"cache-dir", config.CacheDir},
		{"dump-file", config.DumpFile},
		{"history-file", config.HistoryFile},
		{"autoprops-file", config.AutoPropsFile},
	} {
		if field.value == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, field.key)
		}
	}

	// Pin every path down so the conversion behaves the same no matter
	// where it was launched from.
	for _, path := range []*string{
		&config.VobDir, &config.CacheDir, &config.DumpFile,
		&config.HistoryFile, &config.AutoPropsFile, &config.LabelsFile,
		&config.BranchesFile, &config.IgnoredDirsFile, &config.ConfigSpecDir,
		&config.TmpDumpFile, &config.BranchHistoryFile, &config.RunStateFile,
	} {
		if *path == "" {
			continue
		}
		abs, aerr := filepath.Abs(*path)
		if aerr != nil {
			return nil, aerr
		}
		*path = abs
	}

	if config.SinceDate != "" {
		when, perr := time.Parse(CCDateLayout, config.SinceDate)
		if perr != nil {
			return nil, fmt.Errorf("dump-since-date: %w", perr)
		}
		config.sinceDate = when
	}

	return config, nil
}

// Since returns the inclusive history cutoff, if one was configured.
func (c *Config) Since() (time.Time, bool) {
	return c.sinceDate, !c.sinceDate.IsZero()
}

// DumpPath returns the dump file name, adjusted for compression.
func (c *Config) DumpPath() string {
	if c.Compress {
		return c.DumpFile + ".gz"
	}
	return c.DumpFile
}

// ReadList reads one name per line, ignoring blank lines. An empty
// filename means the list is absent.
func ReadList(filename string) ([]string, error) {
	if filename == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}
