package gateway

import (
	"testing"
	"time"

	"github.com/gatewaykit/gateway/command"
)

func TestMergeCommands(t *testing.T) {
	t.Run("per producer order", func(t *testing.T) {
		control := make(chan *Command, 4)
		submissions := make(chan *Command, 4)

		a1 := &Command{Op: command.Identify}
		a2 := &Command{Op: command.Heartbeat}
		control <- a1
		control <- a2
		close(control)

		merged := MergeCommands(control, submissions)
		var got []*Command
		for cmd := range merged {
			got = append(got, cmd)
		}

		if len(got) != 2 || got[0] != a1 || got[1] != a2 {
			t.Errorf("control order lost: %+v", got)
		}
	})

	t.Run("closes when control closes", func(t *testing.T) {
		control := make(chan *Command)
		submissions := make(chan *Command, 1)
		submissions <- &Command{Op: command.UpdatePresence}

		close(control)
		merged := MergeCommands(control, submissions)

		deadline := time.After(time.Second)
		for {
			select {
			case _, ok := <-merged:
				if !ok {
					return
				}
				// a buffered submission may still slip through
			case <-deadline:
				t.Fatal("merged channel never closed")
			}
		}
	})

	t.Run("closes when submissions close", func(t *testing.T) {
		control := make(chan *Command)
		submissions := make(chan *Command)
		close(submissions)

		merged := MergeCommands(control, submissions)
		select {
		case _, ok := <-merged:
			if ok {
				t.Fatal("unexpected command")
			}
		case <-time.After(time.Second):
			t.Fatal("merged channel never closed")
		}
	})
}
