package verify

import (
	"encoding/json"
	"strings"
)

// missingFields checks the response body against the probe's declared
// top-level fields. The check is lenient: extra fields pass, a non-object
// body only fails when fields were declared, and nothing beyond presence is
// validated.
func missingFields(body []byte, fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return fields
	}
	var missing []string
	for _, f := range fields {
		if _, ok := obj[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

func joinFields(fields []string) string {
	return strings.Join(fields, ", ")
}
