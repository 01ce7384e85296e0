package alerting

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/classifystack/drift-engine/internal/models"
)

// Playbook overrides the built-in recommended actions with operator-supplied
// ones, keyed by severity.
type Playbook struct {
	actions map[models.Severity]string
}

// PlaybookFile is the YAML root structure.
type PlaybookFile struct {
	Actions map[string]string `yaml:"actions"`
}

// LoadPlaybook loads severity overrides from the provided path. If path is
// empty or the file does not exist, returns a nil playbook.
func LoadPlaybook(path string) (*Playbook, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var file PlaybookFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	actions := make(map[models.Severity]string, len(file.Actions))
	for severity, action := range file.Actions {
		actions[models.Severity(strings.ToUpper(severity))] = action
	}
	return &Playbook{actions: actions}, nil
}

// Action returns the configured action for a severity, if any.
func (p *Playbook) Action(severity models.Severity) (string, bool) {
	if p == nil {
		return "", false
	}
	action, ok := p.actions[severity]
	return action, ok
}
