package packet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// JSONLAudit appends packets as JSON lines to an append-only file. Open it
// once at startup and Close on shutdown; Record is safe for concurrent use.
type JSONLAudit struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLAudit creates/opens the target file in append mode.
func NewJSONLAudit(path string) (*JSONLAudit, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLAudit{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Record writes a single packet as one line.
func (a *JSONLAudit) Record(pkt TradePacket) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enc.Encode(pkt)
}

// Close flushes and closes the file handle.
func (a *JSONLAudit) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}
