package cc2svn

import (
	"os"

	yml "gopkg.in/yaml.v3"
)

// BranchFiles records the membership of one branch or tag file set.
type BranchFiles struct {
	Name  string   `yaml:"name"`
	Root  string   `yaml:"root"`
	Paths []string `yaml:"paths,omitempty"`
}

// RunState is everything needed to pick a conversion up where it
// stopped: the next revision number, the files known on every branch and
// tag, the element versions already replayed, and the labels already
// reconciled.
type RunState struct {
	Revision int           `yaml:"revision"`
	Branches []BranchFiles `yaml:"branches,omitempty"`
	Tags     []BranchFiles `yaml:"tags,omitempty"`
	Visited  []string      `yaml:"visited,omitempty"`
	Labels   []string      `yaml:"labels,omitempty"`
}

// SaveRunState writes the state as yaml, replacing any previous file.
func SaveRunState(filename string, state *RunState) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	ymlenc := yml.NewEncoder(f)
	ymlenc.SetIndent(2)
	if err = ymlenc.Encode(state); err != nil {
		return err
	}
	return ymlenc.Close()
}

// LoadRunState reads a previously saved state. A missing file is not an
// error, it just means there is nothing to resume.
func LoadRunState(filename string) (*RunState, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	state := &RunState{}
	if err = yml.Unmarshal(data, state); err != nil {
		return nil, err
	}
	return state, nil
}
