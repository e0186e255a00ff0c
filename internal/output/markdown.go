package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeContextName(name string) string {
	if name == "" {
		return "default"
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

// markdownPath returns <root>/<context>/<name>_<timestamp>.md.
func markdownPath(root, name, contextName string, ts time.Time) string {
	filename := fmt.Sprintf("%s_%s.md", name, ts.Format("20060102_150405"))
	return filepath.Join(root, sanitizeContextName(contextName), filename)
}

// saveMarkdownFile writes a table to a markdown file. Failures are logged, the report still prints.
func saveMarkdownFile(root, name, contextName string, ts time.Time, tableMarkdown string) {
	path := markdownPath(root, name, contextName, ts)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("failed to create markdown directory")
		return
	}

	header := fmt.Sprintf("# cbplace %s (%s)\n\n_Generated at %s_\n\n",
		name, contextName, ts.UTC().Format("2006-01-02 15:04:05 UTC"))
	content := header + tableMarkdown + "\n"

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to write markdown file")
		return
	}

	log.Info().Str("path", path).Msg("saved markdown")
}
