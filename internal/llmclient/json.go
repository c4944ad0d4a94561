package llmclient

import "strings"

// ExtractJSON strips an optional Markdown code fence (```json ... ``` or a
// bare ``` ... ```) around a JSON object and trims any leading/trailing
// prose the model added despite being asked for strict JSON. Callers still
// need to json.Unmarshal the result and handle a parse failure themselves.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	if start := strings.Index(s, "{"); start > 0 {
		if end := strings.LastIndex(s, "}"); end >= start {
			s = s[start : end+1]
		}
	}
	return s
}
