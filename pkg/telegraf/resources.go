// pkg/telegraf/resources.go

package telegraf

import "embed"

// DefaultTemplatePath is the bundled config template inside Resources.
const DefaultTemplatePath = "resources/telegraf.conf"

//go:embed resources/telegraf.conf
var Resources embed.FS
