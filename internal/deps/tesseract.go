package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const listLangsTimeout = 10 * time.Second

// CheckTesseractLanguages reports whether every requested language has
// trained data installed for the tesseract binary.
func CheckTesseractLanguages(ctx context.Context, binary string, languages []string) Status {
	result := Status{
		Name:        "Tesseract languages",
		Command:     strings.TrimSpace(binary),
		Description: "Trained data for " + strings.Join(languages, "+"),
	}
	if result.Command == "" {
		result.Detail = "command not configured"
		return result
	}

	installed, err := ListTesseractLanguages(ctx, result.Command)
	if err != nil {
		result.Detail = err.Error()
		return result
	}

	var missing []string
	for _, lang := range languages {
		if _, ok := installed[lang]; !ok {
			missing = append(missing, lang)
		}
	}
	if len(missing) > 0 {
		result.Detail = fmt.Sprintf("missing trained data: %s", strings.Join(missing, ", "))
		return result
	}
	result.Available = true
	return result
}

// ListTesseractLanguages runs `tesseract --list-langs` and returns the
// installed language codes.
func ListTesseractLanguages(ctx context.Context, binary string) (map[string]struct{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, listLangsTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "--list-langs")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return nil, fmt.Errorf("list tesseract languages: %w: %s", err, detail)
		}
		return nil, fmt.Errorf("list tesseract languages: %w", err)
	}

	// Older releases print the listing on stderr.
	output := stdout.String()
	if strings.TrimSpace(output) == "" {
		output = stderr.String()
	}

	langs := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(strings.ToLower(line), "list of available languages") {
			continue
		}
		langs[line] = struct{}{}
	}
	return langs, nil
}
