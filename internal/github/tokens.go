package github

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadTokenFile reads one token per line. Blank lines and # comments are
// skipped.
func ReadTokenFile(path string) ([]string, error) {
	return readListFile(path, "token", func(line string) string { return line })
}

// ReadProxyFile reads one proxy per line, defaulting to the http scheme.
func ReadProxyFile(path string) ([]string, error) {
	return readListFile(path, "proxy", func(line string) string {
		if !strings.Contains(line, "://") {
			return "http://" + line
		}
		return line
	})
}

func readListFile(path, kind string, normalize func(string) string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", kind, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, normalize(line))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s file: %w", kind, err)
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%s file is empty: %s", kind, path)
	}

	return lines, nil
}
