package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestAsyncWorker_ProcessesSubmittedItems(t *testing.T) {
	var mu sync.Mutex
	var got []int

	w := NewAsyncWorker(context.Background(), 8, func(n int) error {
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
		return nil
	}, Hooks[int]{})
	defer w.Close()

	for i := 0; i < 5; i++ {
		if err := w.Submit(i); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 5 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 5 {
		t.Fatalf("got %d processed items, want 5", len(got))
	}
}

func TestAsyncWorker_SubmitAfterCloseFails(t *testing.T) {
	w := NewAsyncWorker(context.Background(), 1, func(int) error { return nil }, Hooks[int]{})
	w.Close()
	if err := w.Submit(1); !errors.Is(err, ErrAsyncWorkerClosed) {
		t.Fatalf("got %v, want ErrAsyncWorkerClosed", err)
	}
}

func TestAsyncWorker_DropInvokesOnDropWhenBufferFull(t *testing.T) {
	block := make(chan struct{})
	var dropped []int
	var mu sync.Mutex

	w := NewAsyncWorker(context.Background(), 1, func(n int) error {
		<-block
		return nil
	}, Hooks[int]{
		OnDrop: func(n int) error {
			mu.Lock()
			dropped = append(dropped, n)
			mu.Unlock()
			return errOverflow
		},
	})
	defer func() {
		close(block)
		w.Close()
	}()

	// First item occupies the worker goroutine (blocked on <-block);
	// second fills the one-slot buffer; third must overflow.
	if err := w.Submit(1); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	time.Sleep(20 * time.Millisecond) // let the worker pick up item 1
	if err := w.Submit(2); err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	if err := w.Submit(3); !errors.Is(err, errOverflow) {
		t.Fatalf("submit 3: got %v, want errOverflow", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(dropped) != 1 || dropped[0] != 3 {
		t.Fatalf("dropped = %v, want [3]", dropped)
	}
}

var errOverflow = errors.New("overflow")

func TestAsyncWorker_CloseDrainsBufferedItemsBeforeReturning(t *testing.T) {
	var mu sync.Mutex
	var got []int

	w := NewAsyncWorker(context.Background(), 16, func(n int) error {
		time.Sleep(time.Millisecond)
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
		return nil
	}, Hooks[int]{})

	for i := 0; i < 10; i++ {
		if err := w.Submit(i); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	w.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 10 {
		t.Fatalf("got %d items drained, want 10 (Close must drain the buffer)", len(got))
	}
}

func TestAsyncWorker_OnErrorInvokedOnProcessFailure(t *testing.T) {
	var mu sync.Mutex
	var errs []int
	sentinel := errors.New("boom")

	w := NewAsyncWorker(context.Background(), 4, func(n int) error {
		return sentinel
	}, Hooks[int]{
		OnError: func(n int, err error) {
			mu.Lock()
			errs = append(errs, n)
			mu.Unlock()
		},
	})
	defer w.Close()

	if err := w.Submit(42); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(errs)
		mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(errs) != 1 || errs[0] != 42 {
		t.Fatalf("errs = %v, want [42]", errs)
	}
}
