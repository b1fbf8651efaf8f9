package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCompletion(t *testing.T) {
	t.Run("first write wins", func(t *testing.T) {
		c := NewCompletion[int]()
		if !c.Complete(1) {
			t.Fatal("first completion lost")
		}
		if c.Complete(2) {
			t.Error("second completion won")
		}
		if c.Fail(errors.New("too late")) {
			t.Error("late failure won")
		}

		v, err := c.Get(context.Background())
		if err != nil || v != 1 {
			t.Errorf("got (%d, %v), wants (1, nil)", v, err)
		}
	})

	t.Run("failure", func(t *testing.T) {
		boom := errors.New("boom")
		c := NewCompletion[int]()
		c.Fail(boom)

		if _, err := c.Get(context.Background()); !errors.Is(err, boom) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("resolved", func(t *testing.T) {
		c := NewCompletion[struct{}]()
		if c.Resolved() {
			t.Error("fresh future is resolved")
		}
		c.Complete(struct{}{})
		if !c.Resolved() {
			t.Error("completed future is not resolved")
		}
	})

	t.Run("get honors context", func(t *testing.T) {
		c := NewCompletion[int]()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()

		if _, err := c.Get(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("concurrent completion is safe", func(t *testing.T) {
		c := NewCompletion[int]()

		var wg sync.WaitGroup
		wins := make(chan int, 16)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if c.Complete(i) {
					wins <- i
				}
			}(i)
		}
		wg.Wait()
		close(wins)

		var winners []int
		for w := range wins {
			winners = append(winners, w)
		}
		if len(winners) != 1 {
			t.Fatalf("expected one winner, got %d", len(winners))
		}
		v, _ := c.Get(context.Background())
		if v != winners[0] {
			t.Errorf("value %d does not match winner %d", v, winners[0])
		}
	})
}
