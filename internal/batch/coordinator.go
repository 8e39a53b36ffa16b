// Package batch drives an ordered queue of files through decode and
// analysis, one at a time, isolating each file's failure from the rest of
// the queue.
package batch

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/analysis"
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/audio"
)

// MaxItems caps the queue. Additions beyond the cap are silently dropped.
const MaxItems = 20

// Status is the per-item state machine. Items only move forward, except to
// StatusError which is terminal from any non-terminal state.
type Status int

const (
	StatusPending Status = iota
	StatusDecoding
	StatusAnalyzing
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDecoding:
		return "decoding"
	case StatusAnalyzing:
		return "analyzing"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Item is one queued file and its progress through the state machine.
type Item struct {
	ID     string
	Path   string
	Info   *audio.FileInfo
	Result *analysis.AnalysisResult
	Status Status
	Err    string
}

// Decoder turns raw file bytes into a buffer plus file metadata.
type Decoder interface {
	Decode(name string, data []byte) (*audio.Buffer, *audio.FileInfo, error)
}

// Analyzer runs one measurement pass over a decoded buffer. The buffer is
// handed over; the coordinator does not touch it afterwards.
type Analyzer interface {
	Analyze(buf *audio.Buffer, onProgress func(analysis.Progress), onPartial func(analysis.Fragment)) (analysis.AnalysisResult, error)
}

// Events receives per-item notifications while the queue runs. Any field
// may be nil.
type Events struct {
	ItemStarted  func(item *Item)
	ItemProgress func(item *Item, p analysis.Progress)
	ItemPartial  func(item *Item, f analysis.Fragment)
	ItemFinished func(item *Item)
}

// Coordinator owns the queue. All exported methods are safe for concurrent
// use; Start itself runs the queue on the calling goroutine.
type Coordinator struct {
	decoder  Decoder
	analyzer Analyzer

	mu       sync.Mutex
	items    []*Item
	running  bool
	canceled bool

	// readFile is swappable for tests.
	readFile func(path string) ([]byte, error)
}

// NewCoordinator wires a coordinator to a decoder and an analyzer.
func NewCoordinator(decoder Decoder, analyzer Analyzer) *Coordinator {
	return &Coordinator{
		decoder:  decoder,
		analyzer: analyzer,
		readFile: os.ReadFile,
	}
}

// Add appends a file to the queue. Returns the new item, or nil when the
// queue is full (the addition is dropped without error).
func (c *Coordinator) Add(path string) *Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) >= MaxItems {
		return nil
	}
	item := &Item{
		ID:     fmt.Sprintf("%s-%d", path, time.Now().UnixNano()),
		Path:   path,
		Status: StatusPending,
	}
	c.items = append(c.items, item)
	return item
}

// Items returns a snapshot of the queue in order.
func (c *Coordinator) Items() []*Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Item, len(c.items))
	copy(out, c.items)
	return out
}

// RemoveItem removes a queued item by ID. Refused while the batch runs.
func (c *Coordinator) RemoveItem(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("cannot remove items while the batch is running")
	}
	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no item with ID %q", id)
}

// Clear requests cancellation and empties the queue once the current item
// finishes. Cancellation is cooperative: it is checked at item boundaries
// only and never interrupts an item in flight.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.canceled = true
		return
	}
	c.items = nil
}

// Start processes the queue in order. A per-item failure at any stage is
// recorded on that item and processing continues with the next one; the
// batch never aborts because a single file failed.
func (c *Coordinator) Start(events Events) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("batch already running")
	}
	c.running = true
	c.canceled = false
	items := make([]*Item, len(c.items))
	copy(items, c.items)
	c.mu.Unlock()

	for _, item := range items {
		if c.isCanceled() {
			break
		}
		c.processItem(item, events)
	}

	c.mu.Lock()
	c.running = false
	if c.canceled {
		c.items = nil
		c.canceled = false
	}
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) isCanceled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canceled
}

func (c *Coordinator) setStatus(item *Item, s Status) {
	c.mu.Lock()
	item.Status = s
	c.mu.Unlock()
}

// processItem drives one item through decode and analyze. Failures land on
// the item, never on the caller.
func (c *Coordinator) processItem(item *Item, events Events) {
	c.setStatus(item, StatusDecoding)
	if events.ItemStarted != nil {
		events.ItemStarted(item)
	}

	fail := func(err error) {
		c.mu.Lock()
		item.Status = StatusError
		item.Err = err.Error()
		c.mu.Unlock()
		if events.ItemFinished != nil {
			events.ItemFinished(item)
		}
	}

	data, err := c.readFile(item.Path)
	if err != nil {
		fail(fmt.Errorf("reading file: %w", err))
		return
	}

	buf, info, err := c.decoder.Decode(item.Path, data)
	if err != nil {
		fail(err)
		return
	}
	c.mu.Lock()
	item.Info = info
	c.mu.Unlock()

	c.setStatus(item, StatusAnalyzing)
	result, err := c.analyzer.Analyze(buf,
		func(p analysis.Progress) {
			if events.ItemProgress != nil {
				events.ItemProgress(item, p)
			}
		},
		func(f analysis.Fragment) {
			if events.ItemPartial != nil {
				events.ItemPartial(item, f)
			}
		},
	)
	if err != nil {
		fail(err)
		return
	}

	result.File = *info
	c.mu.Lock()
	item.Result = &result
	item.Status = StatusDone
	c.mu.Unlock()
	if events.ItemFinished != nil {
		events.ItemFinished(item)
	}
}
