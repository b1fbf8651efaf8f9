package opcode

func CanReconnectAfter(op Op) bool {
	_, reconnectOpCode := map[Op]bool{
		Reconnect: true,
		Resume:    true,
	}[op]

	return reconnectOpCode
}
