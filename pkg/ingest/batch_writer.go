package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/japaniel/bananadict/pkg/db"
)

// InsertFunc stores one row inside the batch transaction.
type InsertFunc func(exec db.DBExecutor, row db.WordRow) error

// BatchWriter buffers word rows and flushes them in batches. Each batch is
// its own transaction, or, when the writer is bound to a caller's
// transaction, a run of inserts inside it. After the first failed batch the
// remaining batches are discarded.
type BatchWriter struct {
	mu          sync.Mutex
	buf         []db.WordRow
	cap         int
	flushTicker *time.Ticker
	closed      bool
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	commitCh chan []db.WordRow
	db       *sql.DB
	tx       *sql.Tx
	insert   InsertFunc
	written  atomic.Int64
	OnError  func(error)

	// lastErr stores the first asynchronous error seen by the writer. Protected by errMu.
	errMu   sync.Mutex
	lastErr error
}

// NewBatchWriter creates a new BatchWriter.
// conn: the database connection to use for transactions.
// bufferSize: flush when buffer reaches this size.
// flushInterval: flush after this duration (0 to disable).
func NewBatchWriter(conn *sql.DB, bufferSize int, flushInterval time.Duration) *BatchWriter {
	return newBatchWriter(conn, nil, bufferSize, flushInterval, db.InsertWord)
}

// NewTxBatchWriter creates a BatchWriter whose batches all run inside tx.
// Committing or rolling back tx after Close is up to the caller.
func NewTxBatchWriter(tx *sql.Tx, bufferSize int) *BatchWriter {
	return newBatchWriter(nil, tx, bufferSize, 0, db.InsertWord)
}

func newBatchWriter(conn *sql.DB, tx *sql.Tx, bufferSize int, flushInterval time.Duration, insert InsertFunc) *BatchWriter {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	bw := &BatchWriter{
		buf:      make([]db.WordRow, 0, bufferSize),
		cap:      bufferSize,
		ctx:      ctx,
		cancel:   cancel,
		commitCh: make(chan []db.WordRow, 2), // Buffer a couple of batches
		db:       conn,
		tx:       tx,
		insert:   insert,
	}

	bw.wg.Add(1)
	go bw.committer()

	if flushInterval > 0 {
		bw.flushTicker = time.NewTicker(flushInterval)
		bw.wg.Add(1)
		go bw.loop()
	}
	return bw
}

// Add enqueues a row.
func (bw *BatchWriter) Add(row db.WordRow) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, row)
	if len(bw.buf) >= bw.cap {
		bw.flushLocked()
	}
	return nil
}

// Written returns the number of rows committed so far. For a writer bound to
// a transaction it counts rows inserted into that transaction.
func (bw *BatchWriter) Written() int {
	return int(bw.written.Load())
}

// flushLocked assumes bw.mu is held. A full commitCh blocks the caller,
// which propagates backpressure to Add.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]db.WordRow, 0, bw.cap)

	select {
	case bw.commitCh <- batch:
	case <-bw.ctx.Done():
		bw.fail(fmt.Errorf("batch writer: dropping batch of %d rows due to context cancellation", len(batch)))
	}
}

func (bw *BatchWriter) fail(err error) {
	bw.errMu.Lock()
	if bw.lastErr == nil {
		bw.lastErr = err
	}
	bw.errMu.Unlock()
	if bw.OnError != nil {
		bw.OnError(err)
	}
}

func (bw *BatchWriter) committer() {
	defer bw.wg.Done()
	failed := false
	for batch := range bw.commitCh {
		// Keep draining so flushLocked never blocks on a dead committer.
		if failed {
			continue
		}
		if err := bw.executeBatch(batch); err != nil {
			bw.fail(err)
			failed = true
		}
	}
}

func (bw *BatchWriter) executeBatch(batch []db.WordRow) error {
	if bw.tx != nil {
		for _, row := range batch {
			if err := bw.insert(bw.tx, row); err != nil {
				return err
			}
		}
		bw.written.Add(int64(len(batch)))
		return nil
	}

	// Use background context for flushing to avoid "context canceled" if bw is closing.
	tx, err := bw.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, row := range batch {
		if err := bw.insert(tx, row); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch (%d rows): %w", len(batch), err)
	}
	bw.written.Add(int64(len(batch)))
	return nil
}

func (bw *BatchWriter) loop() {
	defer bw.wg.Done()
	for {
		select {
		case <-bw.ctx.Done():
			return
		case <-bw.flushTicker.C:
			bw.mu.Lock()
			if !bw.closed {
				bw.flushLocked()
			}
			bw.mu.Unlock()
		}
	}
}

// Close stops accepting rows, flushes what is buffered and waits for pending
// batches to commit. It returns the first asynchronous error.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	if bw.flushTicker != nil {
		bw.flushTicker.Stop()
	}
	bw.flushLocked()
	bw.mu.Unlock()

	bw.cancel()        // Stop ticker loop
	close(bw.commitCh) // Stop committer loop
	bw.wg.Wait()

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.lastErr
}

// ErrBatchWriterClosed is returned by Add and Close once the writer is closed.
var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

// BatchWriterError is a typed error for batch writer lifecycle failures.
type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
