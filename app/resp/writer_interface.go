package resp

// Writer is what a session needs to answer a client.
type Writer interface {
	WriteValue(v RespValue) error
	Flush() error
}

var _ Writer = (*ResponseWriter)(nil)
