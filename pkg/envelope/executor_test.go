package envelope

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutor_RunServial(t *testing.T) {
	exec := NewExecutor()
	defer exec.Close()

	order := make([]int, 0, 3)
	ch := make(chan struct{})
	for i := 0; i < 3; i++ {
		i := i
		go func() {
			_ = exec.Run(context.Background(), func() error {
				order = append(order, i)
				return nil
			})
			ch <- struct{}{}
		}()
	}
	for i := 0; i < 3; i++ {
		<-ch
	}
	if len(order) != 3 {
		t.Fatalf("got %d completions, want 3", len(order))
	}
}

func TestExecutor_RunPropagatesError(t *testing.T) {
	exec := NewExecutor()
	defer exec.Close()

	wantErr := errors.New("boom")
	err := exec.Run(context.Background(), func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
}

func TestSubmit_TrampolinesResult(t *testing.T) {
	exec := NewExecutor()
	defer exec.Close()

	done := make(chan int, 1)
	Submit(context.Background(), exec, func(ctx context.Context) (int, error) {
		return 42, nil
	}, func(v int, err error) {
		done <- v
	})

	select {
	case v := <-done:
		if v != 42 {
			t.Errorf("got %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Submit() continuation never ran")
	}
}

func TestExecutor_RunAfterClose(t *testing.T) {
	exec := NewExecutor()
	exec.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := exec.Run(ctx, func() error { return nil })
	if err == nil {
		t.Error("Run() after Close(): want error, got nil")
	}
}
