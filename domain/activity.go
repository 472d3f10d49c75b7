package domain

// Direction of a frame crossing the transport, used by transfer indicators.
type Direction string

const (
	Upload   Direction = "up"
	Download Direction = "down"
)
