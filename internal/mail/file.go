package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileMailer stores every message as its own .log file in a directory.
type FileMailer struct {
	dir string
	now func() time.Time
}

// NewFileMailer creates dir if needed.
func NewFileMailer(dir string) (*FileMailer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create mail dir: %w", err)
	}
	return &FileMailer{dir: dir, now: time.Now}, nil
}

func (m *FileMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := m.now().UTC()
	name := fmt.Sprintf("%s-%s.log", now.Format("20060102-150405"), uuid.NewString()[:8])

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", msg.From)
	fmt.Fprintf(&b, "To: %s\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format(time.RFC1123Z))
	b.WriteString(msg.Body)
	b.WriteString("\n")

	if err := os.WriteFile(filepath.Join(m.dir, name), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write mail file: %w", err)
	}
	return nil
}
