package hub

import "github.com/gofiber/websocket/v2"

// Message is one payload queued for delivery to viewers.
type Message struct {
	wsType int
	data   []byte
}

// NewJSONMessage wraps already-encoded JSON as a text message.
func NewJSONMessage(data []byte) Message {
	return Message{wsType: websocket.TextMessage, data: data}
}

// NewBinaryMessage wraps binary data such as a JPEG frame.
func NewBinaryMessage(data []byte) Message {
	return Message{wsType: websocket.BinaryMessage, data: data}
}
