package config

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// envLine is one physical line of a dotenv file. Lines that do not parse as
// KEY=VALUE (comments, blanks, garbage) keep key == "" and are written back
// untouched.
type envLine struct {
	key string
	raw string
}

// ParseEnvFile reads a dotenv-style file into key/value pairs.
// A missing file is not an error; it parses as empty.
func ParseEnvFile(path string) (map[string]string, error) {
	lines, err := readEnvLines(path)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string)
	for _, l := range lines {
		if l.key == "" {
			continue
		}
		_, v, _ := strings.Cut(l.raw, "=")
		values[l.key] = strings.TrimSpace(v)
	}
	return values, nil
}

// UpsertEnvFile rewrites path so that every key in set has exactly one
// KEY=VALUE line and every key in unset has none. Unrelated lines, comments
// and blank lines are preserved in place; new keys are appended at the end.
// Running it twice with the same arguments is a no-op.
func UpsertEnvFile(path string, set map[string]string, unset []string) error {
	lines, err := readEnvLines(path)
	if err != nil {
		return err
	}

	drop := make(map[string]bool, len(unset))
	for _, k := range unset {
		drop[k] = true
	}

	written := make(map[string]bool, len(set))
	out := make([]string, 0, len(lines)+len(set))
	for _, l := range lines {
		if l.key == "" {
			out = append(out, l.raw)
			continue
		}
		if drop[l.key] {
			continue
		}
		v, ok := set[l.key]
		if !ok {
			out = append(out, l.raw)
			continue
		}
		if written[l.key] {
			// duplicate from a previous ad-hoc edit, collapse it
			continue
		}
		out = append(out, l.key+"="+v)
		written[l.key] = true
	}
	for _, k := range sortedKeys(set) {
		if !written[k] {
			out = append(out, k+"="+set[k])
		}
	}

	data := strings.Join(out, "\n")
	if data != "" {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readEnvLines(path string) ([]envLine, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []envLine
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		raw := sc.Text()
		lines = append(lines, envLine{key: envKey(raw), raw: raw})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

// envKey extracts the key of a KEY=VALUE line, or "" for anything else.
func envKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ""
	}
	k, _, ok := strings.Cut(trimmed, "=")
	if !ok {
		return ""
	}
	k = strings.TrimSpace(k)
	if k == "" || strings.ContainsAny(k, " \t") {
		return ""
	}
	return k
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
