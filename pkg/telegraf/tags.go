// pkg/telegraf/tags.go

package telegraf

import (
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
)

// UpdateGlobalTags rewrites, in place, every tag whose value is exactly one
// of the CTX_* placeholders. Other entries, including non-string values,
// are left as they are.
func UpdateGlobalTags(tags map[string]any, d plugin_io.Deployment) {
	replacements := d.Replacements()
	for key, value := range tags {
		s, ok := value.(string)
		if !ok {
			continue
		}
		if r, ok := replacements[s]; ok {
			tags[key] = r
		}
	}
}

// UpdateStringTags is UpdateGlobalTags for an already typed tag map.
func UpdateStringTags(tags map[string]string, d plugin_io.Deployment) {
	replacements := d.Replacements()
	for key, value := range tags {
		if r, ok := replacements[value]; ok {
			tags[key] = r
		}
	}
}

// applyGlobalTags substitutes placeholders in inputs["global_tags"] if it
// holds a map. Anything else under that key is left for the template.
func applyGlobalTags(inputs map[string]any, d plugin_io.Deployment) {
	switch tags := inputs[shared.GlobalTagsKey].(type) {
	case map[string]any:
		UpdateGlobalTags(tags, d)
	case map[string]string:
		UpdateStringTags(tags, d)
	}
}

// PrepareInputs returns the template variables for a render, with
// global_tags placeholders substituted. A nil map becomes an empty one.
func PrepareInputs(inputs map[string]any, d plugin_io.Deployment) map[string]any {
	if inputs == nil {
		inputs = map[string]any{}
	}
	applyGlobalTags(inputs, d)
	return inputs
}
