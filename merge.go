package gateway

// MergeCommands fans the session's control messages and externally
// submitted commands into the single outbound pipe. Order is preserved per
// producer; no ordering holds between the two. The merged channel closes as
// soon as either input closes, so a finished session tears the write side
// down even while the application side is still open.
func MergeCommands(control, submissions <-chan *Command) <-chan *Command {
	out := make(chan *Command)
	go func() {
		defer close(out)
		for {
			select {
			case cmd, ok := <-control:
				if !ok {
					return
				}
				out <- cmd
			case cmd, ok := <-submissions:
				if !ok {
					return
				}
				out <- cmd
			}
		}
	}()
	return out
}
