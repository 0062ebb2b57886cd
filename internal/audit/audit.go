package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jwaldner/optionroi/internal/logger"
)

// Auditor records one finished request under its request ID
type Auditor interface {
	Record(requestID string, sections map[string]interface{}) error
}

// FileAuditor writes each request to <dir>/optimize_<id>.json together with a
// markdown summary next to it
type FileAuditor struct {
	dir   string
	mutex sync.Mutex
}

// NewFileAuditor creates the audit directory if needed
func NewFileAuditor(dir string) (*FileAuditor, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("audit: create %s: %w", dir, err)
	}
	return &FileAuditor{dir: dir}, nil
}

// Record writes the sections, each stamped with the time it was recorded
func (a *FileAuditor) Record(requestID string, sections map[string]interface{}) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	now := time.Now().Format(time.RFC3339)
	auditData := map[string]interface{}{
		"request_id":  requestID,
		"recorded_at": now,
	}
	for name, data := range sections {
		auditData[name] = map[string]interface{}{
			"timestamp": now,
			"data":      data,
		}
	}

	jsonDest := a.Path(requestID)
	if err := writeJSON(jsonDest, auditData); err != nil {
		logger.Error.Printf("❌ AUDIT: Failed to write %s: %v", jsonDest, err)
		return err
	}
	logger.Verbose.Printf("🔍 AUDIT: Wrote %s", jsonDest)

	markdownDest := filepath.Join(a.dir, fmt.Sprintf("optimize_%s.md", requestID))
	if err := createMarkdownSummary(markdownDest, requestID, sections); err != nil {
		logger.Error.Printf("❌ AUDIT: Failed to create markdown: %v", err)
		return err
	}
	return nil
}

// Path returns the JSON file a request is recorded to
func (a *FileAuditor) Path(requestID string) string {
	return filepath.Join(a.dir, fmt.Sprintf("optimize_%s.json", requestID))
}

// Nop discards every record; used when auditing is disabled
type Nop struct{}

func (Nop) Record(string, map[string]interface{}) error { return nil }

func writeJSON(path string, data interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audit: create %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("audit: encode %s: %w", path, err)
	}
	return nil
}

func createMarkdownSummary(filename, requestID string, sections map[string]interface{}) error {
	content := fmt.Sprintf("# Optimize Audit - %s\n\n", requestID)
	content += fmt.Sprintf("**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		content += fmt.Sprintf("## %s\n\n", name)
		content += "```json\n"
		if data, err := json.MarshalIndent(sections[name], "", "  "); err == nil {
			content += string(data)
		}
		content += "\n```\n\n"
	}

	return os.WriteFile(filename, []byte(content), 0644)
}
