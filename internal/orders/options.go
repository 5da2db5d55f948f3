package orders

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// PrintOptions is the parse result of a print job's opaque options payload.
// A payload that is not valid JSON is kept verbatim in Raw instead of being
// dropped, so malformed options still render as display text.
type PrintOptions struct {
	Parsed map[string]string
	Raw    string
}

// ParsePrintOptions decodes the JSON options string attached to a print job.
func ParsePrintOptions(raw string) PrintOptions {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return PrintOptions{}
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return PrintOptions{Raw: raw}
	}
	parsed := make(map[string]string, len(decoded))
	for key, value := range decoded {
		switch v := value.(type) {
		case string:
			parsed[key] = v
		case float64:
			parsed[key] = strings.TrimSuffix(fmt.Sprintf("%.2f", v), ".00")
		case bool:
			parsed[key] = fmt.Sprintf("%t", v)
		case nil:
			parsed[key] = ""
		default:
			encoded, _ := json.Marshal(v)
			parsed[key] = string(encoded)
		}
	}
	return PrintOptions{Parsed: parsed}
}

// IsParsed reports whether the payload decoded into key/value pairs.
func (o PrintOptions) IsParsed() bool {
	return o.Parsed != nil
}

// Get returns the value for a key, or empty string when absent or unparsed.
func (o PrintOptions) Get(key string) string {
	if o.Parsed == nil {
		return ""
	}
	return o.Parsed[key]
}

// Summary renders the options as stable display text, e.g.
// "binding: spiral, color: bw, paper: A4". Unparsed payloads return verbatim.
func (o PrintOptions) Summary() string {
	if o.Parsed == nil {
		return o.Raw
	}
	keys := make([]string, 0, len(o.Parsed))
	for key := range o.Parsed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		if o.Parsed[key] == "" {
			continue
		}
		parts = append(parts, key+": "+o.Parsed[key])
	}
	return strings.Join(parts, ", ")
}
