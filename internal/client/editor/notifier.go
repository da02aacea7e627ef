package editor

import (
	"fmt"
	"io"
	"sync"
)

// WriterNotifier prints notifications, one per line.
type WriterNotifier struct {
	mu  sync.Mutex
	Out io.Writer
	Err io.Writer
}

func (n *WriterNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.Out, "✓ %s\n", msg)
}

func (n *WriterNotifier) Error(msg string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err != nil {
		fmt.Fprintf(n.Err, "✗ %s: %v\n", msg, err)
		return
	}
	fmt.Fprintf(n.Err, "✗ %s\n", msg)
}
