package actuation

import "fmt"

// Command sets one output channel to a level. Values are immutable once built.
type Command struct {
	Channel int  `json:"channel"`
	Level   bool `json:"level"`
}

func (c Command) String() string {
	return fmt.Sprintf("channel %d -> %s", c.Channel, LevelString(c.Level))
}

// Kind tags a Message.
type Kind uint8

const (
	// KindInput is reserved: it opens a channel for reading but reads nothing.
	KindInput Kind = iota + 1
	// KindOutput carries a Command.
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "INPUT"
	case KindOutput:
		return "OUTPUT"
	default:
		return "UNKNOWN"
	}
}

// Message is the unit exchanged between producers and the Actor.
type Message struct {
	Kind    Kind
	Channel int
	Command Command
}

// Input builds a reserved input message for channel.
func Input(channel int) Message {
	return Message{Kind: KindInput, Channel: channel}
}

// Output builds an output message.
func Output(cmd Command) Message {
	return Message{Kind: KindOutput, Channel: cmd.Channel, Command: cmd}
}

// On and Off are shorthands for Output messages.
func On(channel int) Message  { return Output(Command{Channel: channel, Level: true}) }
func Off(channel int) Message { return Output(Command{Channel: channel, Level: false}) }

// LevelString renders a level as ON/OFF.
func LevelString(level bool) string {
	if level {
		return "ON"
	}
	return "OFF"
}
