package airgradient

import "strings"

// Hardware identifier prefixes, checked before the DIY substring rule.
var modelPrefixes = []struct {
	prefix string
	name   string
}{
	{"I-9PSL", "AirGradient ONE"},
	{"O-1", "AirGradient Open Air"},
}

// ModelName maps a hardware identifier such as "I-9PSL-DE" to a product
// name. The second return is false for unknown identifiers.
func ModelName(modelID string) (string, bool) {
	for _, entry := range modelPrefixes {
		if strings.HasPrefix(modelID, entry.prefix) {
			return entry.name, true
		}
	}
	if strings.Contains(modelID, "DIY") {
		return "AirGradient DIY", true
	}
	return "", false
}
