package bot

import (
	"errors"
	"strings"
)

const customIDPrefix = "luna"

// submitScope takes the place of the lobby id in /submit modal ids.
const submitScope = "submit"

type action string

const (
	actionJoin     action = "join"
	actionLeave    action = "leave"
	actionStart    action = "start"
	actionCategory action = "category"
	actionRespond  action = "respond"  // button, opens the response modal
	actionResponse action = "response" // modal submit
	actionPass     action = "pass"
	actionConfirm  action = "confirm"
	actionCancel   action = "cancel"
	actionNext     action = "next"
	actionPrompt   action = "prompt" // /submit modal
)

var errBadCustomID = errors.New("malformed component id")

// customID is what we pack into a component's custom id:
// luna:<lobby>:<action>[:arg]
type customID struct {
	Lobby  string
	Action action
	Arg    string
}

func (c customID) String() string {
	parts := []string{customIDPrefix, c.Lobby, string(c.Action)}
	if c.Arg != "" {
		parts = append(parts, c.Arg)
	}
	return strings.Join(parts, ":")
}

func parseCustomID(s string) (customID, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 || parts[0] != customIDPrefix || parts[1] == "" || parts[2] == "" {
		return customID{}, errBadCustomID
	}
	id := customID{Lobby: parts[1], Action: action(parts[2])}
	if len(parts) == 4 {
		id.Arg = parts[3]
	}
	return id, nil
}
