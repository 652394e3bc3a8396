// pkg/plugin_cli/inputs.go

package plugin_cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"gopkg.in/yaml.v3"
)

// ParseConfigInputs decodes --config-inputs. The value is YAML or JSON,
// or "@path" to read either from a file. An empty value yields an empty map.
func ParseConfigInputs(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	inputs := map[string]any{}
	if raw == "" {
		return inputs, nil
	}

	data := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, plugin_err.NewExpectedError(fmt.Errorf("failed to read config inputs %s: %w", path, err))
		}
		data = b
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, plugin_err.NewExpectedError(fmt.Errorf("config inputs are not valid YAML or JSON: %w", err))
	}
	if len(node.Content) == 0 {
		return inputs, nil
	}
	if node.Content[0].Kind != yaml.MappingNode {
		return nil, plugin_err.NewExpectedError(fmt.Errorf("config inputs must be a mapping"))
	}
	if err := node.Content[0].Decode(&inputs); err != nil {
		return nil, plugin_err.NewExpectedError(fmt.Errorf("failed to decode config inputs: %w", err))
	}
	return inputs, nil
}
