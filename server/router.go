package server

import (
	"errors"
	"strings"
)

// Action is one of the operations the server dispatches to.
type Action string

const (
	ActionCreateQueue    Action = "CreateQueue"
	ActionListQueues     Action = "ListQueues"
	ActionSendMessage    Action = "SendMessage"
	ActionReceiveMessage Action = "ReceiveMessage"
)

// ErrUnknownAction is returned for a missing or unsupported action name.
var ErrUnknownAction = errors.New("unknown action")

var knownActions = []Action{ActionCreateQueue, ActionListQueues, ActionSendMessage, ActionReceiveMessage}

// ResolveAction picks the action from the X-Amz-Target header when it is set,
// otherwise from the form's Action field. Matching ignores case, and a
// single leading service prefix such as "AmazonSQS." is dropped.
func ResolveAction(target string, form map[string]string) (Action, error) {
	name := strings.TrimSpace(target)
	if name == "" {
		name = strings.TrimSpace(form["Action"])
	}
	if _, op, ok := strings.Cut(name, "."); ok {
		name = op
	}
	if name == "" {
		return "", ErrUnknownAction
	}
	for _, a := range knownActions {
		if strings.EqualFold(name, string(a)) {
			return a, nil
		}
	}
	return "", ErrUnknownAction
}
