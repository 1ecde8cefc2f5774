package eyes

import "time"

const (
	CommandPrefix    = 'A'
	CommEndCharacter = '\n'
	ReadySignal      = "READY"

	DefaultBaudRate    = 115200
	DefaultReadTimeout = 10 * time.Second // The display may need a while to boot after the port is opened
	CommRxBufferLen    = 128

	maxPending = 4 * CommRxBufferLen // Longest line kept while waiting for CommEndCharacter
)

const (
	Wakeup Animation = iota // 0
	Reset
	MoveRightBig
	MoveLeftBig
	BlinkLong
	BlinkShort
	Happy
	Sleep
	SaccadeRandom
)

var names = map[Animation]string{
	Wakeup:        "wakeup",
	Reset:         "reset",
	MoveRightBig:  "move_right_big",
	MoveLeftBig:   "move_left_big",
	BlinkLong:     "blink_long",
	BlinkShort:    "blink_short",
	Happy:         "happy",
	Sleep:         "sleep",
	SaccadeRandom: "saccade_random",
}
