// Package scanner implements the scan-to-stock workflow: a throttled
// capture loop that samples frames from a capture device, attempts a
// barcode decode on each, and hands the first decoded SKU to the stock
// increment boundary exactly once.
package scanner

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// State of a scan workflow. Transitions:
//
//	Idle -> Capturing -> Decoded -> Submitting -> Closed
//	            |            ^          |
//	            v            +----------+  (submit failed, retry allowed)
//	          Error -> Capturing          (retry)
//
// Close is reachable from every state and is terminal.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateDecoded
	StateError
	StateSubmitting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateDecoded:
		return "decoded"
	case StateError:
		return "error"
	case StateSubmitting:
		return "submitting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// FrameSource is the capture device: a webcam, a frame directory, a fake.
type FrameSource interface {
	NextFrame(ctx context.Context) (image.Image, error)
	Close() error
}

// Decoder turns a frame into a decoded payload, or reports a miss.
type Decoder interface {
	Decode(img image.Image) (string, bool)
}

// Submitter is the stock-increment boundary a confirmed scan is handed to.
type Submitter interface {
	SubmitScan(ctx context.Context, sku string) (newStock int, err error)
}

// DefaultSampleInterval throttles decode attempts to 5 per second. This
// bounds decode work; it is not a correctness requirement.
const DefaultSampleInterval = 200 * time.Millisecond

// Workflow is a single scan session. One instance per open scanner.
type Workflow struct {
	source    FrameSource
	decoder   Decoder
	submitter Submitter
	limiter   *rate.Limiter

	mu        sync.Mutex
	state     State
	decoded   string
	errMsg    string
	newStock  int
	cancel    context.CancelFunc
	loopDone  chan struct{}
	closeOnce sync.Once
}

func New(source FrameSource, decoder Decoder, submitter Submitter, sampleInterval time.Duration) *Workflow {
	if sampleInterval <= 0 {
		sampleInterval = DefaultSampleInterval
	}
	done := make(chan struct{})
	close(done)
	return &Workflow{
		source:    source,
		decoder:   decoder,
		submitter: submitter,
		limiter:   rate.NewLimiter(rate.Every(sampleInterval), 1),
		state:     StateIdle,
		loopDone:  done,
	}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// DecodedSKU returns the captured payload once a decode has succeeded.
func (w *Workflow) DecodedSKU() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.decoded, w.decoded != ""
}

// ErrMessage returns the user-facing message of the last failure.
func (w *Workflow) ErrMessage() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// NewStock reports the stock level after a successful submit.
func (w *Workflow) NewStock() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.newStock
}

// Done unblocks when the current capture loop has stopped.
func (w *Workflow) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loopDone
}

// Start moves Idle -> Capturing and launches the capture loop.
func (w *Workflow) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateIdle {
		return fmt.Errorf("cannot start scan from state %q", w.state)
	}
	w.beginCaptureLocked(ctx)
	return nil
}

func (w *Workflow) beginCaptureLocked(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.state = StateCapturing
	done := make(chan struct{})
	w.loopDone = done
	go w.captureLoop(runCtx, done)
}

// captureLoop samples frames until the first successful decode, a device
// failure, or cancellation. Exiting on the first decode is what makes
// the single-decode guarantee structural: no later frame is ever examined.
func (w *Workflow) captureLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		if err := w.limiter.Wait(ctx); err != nil {
			return // cancelled
		}

		frame, err := w.source.NextFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.mu.Lock()
			if w.state == StateCapturing {
				w.state = StateError
				w.errMsg = DeviceErrorMessage(err)
			}
			w.mu.Unlock()
			return
		}

		sku, ok := w.decoder.Decode(frame)
		if !ok {
			continue
		}

		w.mu.Lock()
		if w.state == StateCapturing {
			w.state = StateDecoded
			w.decoded = sku
		}
		w.mu.Unlock()
		return
	}
}

// Retry resets all transient state and restarts the capture loop.
// Allowed from Decoded (scan again) and Error (device retry).
func (w *Workflow) Retry(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateDecoded, StateError:
	default:
		return fmt.Errorf("cannot retry scan from state %q", w.state)
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.decoded = ""
	w.errMsg = ""
	w.newStock = 0
	w.beginCaptureLocked(ctx)
	return nil
}

// Submit hands the decoded SKU to the stock-increment boundary. On
// success the workflow completes and the device is released; on failure
// (unknown SKU) it returns to Decoded so the user may retry or cancel.
func (w *Workflow) Submit(ctx context.Context) (int, error) {
	w.mu.Lock()
	if w.state != StateDecoded {
		w.mu.Unlock()
		return 0, fmt.Errorf("cannot submit scan from state %q", w.state)
	}
	sku := w.decoded
	w.state = StateSubmitting
	w.mu.Unlock()

	newStock, err := w.submitter.SubmitScan(ctx, sku)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = StateDecoded
		w.errMsg = err.Error()
		return 0, err
	}
	w.newStock = newStock
	w.errMsg = ""
	w.closeLocked()
	return newStock, nil
}

// Close stops the capture loop and releases the capture device. Terminal;
// safe to call from any state and more than once.
func (w *Workflow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Workflow) closeLocked() error {
	w.state = StateClosed
	if w.cancel != nil {
		w.cancel()
	}
	var err error
	w.closeOnce.Do(func() {
		err = w.source.Close()
	})
	return err
}

// DeviceErrorMessage maps a capture device failure to the message shown
// in the scanner dialog.
func DeviceErrorMessage(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "not allowed"):
		return "Camera access denied. Please allow camera access and try again."
	case strings.Contains(msg, "no such device"), strings.Contains(msg, "not found"):
		return "No camera found. Please ensure your device has a camera."
	case strings.Contains(msg, "busy"), strings.Contains(msg, "in use"):
		return "Camera is in use by another application."
	default:
		return "Scanner error: " + err.Error()
	}
}
