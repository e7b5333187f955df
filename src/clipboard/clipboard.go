package clipboard

import (
	"strings"
	"sync"

	"golang.design/x/clipboard"

	"screen-translate-overlay/src/sentence"
)

var (
	writeMu sync.Mutex
	initErr error
	once    sync.Once
)

// Init prepares the system clipboard. Later calls return the first result.
func Init() error {
	once.Do(func() { initErr = clipboard.Init() })
	return initErr
}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func Write(text string) error {
	if err := Init(); err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// Format joins the non-empty translations of set, one per line, in reading order.
func Format(set sentence.Set) string {
	var lines []string
	for _, s := range set {
		if t := strings.TrimSpace(s.Text); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// WriteSentences copies the current translations and returns the text written.
func WriteSentences(set sentence.Set) (string, error) {
	text := Format(set)
	if text == "" {
		return "", nil
	}
	return text, Write(text)
}
