package core

import "errors"

// Error taxonomy. ErrToolNotFound and ErrInvalidArgument are recovered at the
// registry boundary and fed back to the model as error tool-results; the rest
// abort the current turn and surface to the HTTP layer.
var (
	// ErrAgentNotFound means the requested agent does not exist in the
	// calling organization.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrAgentDisabled means the agent exists but is switched off.
	ErrAgentDisabled = errors.New("agent disabled")
	// ErrConversationNotFound means the conversation id does not resolve
	// within the calling organization.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrToolNotFound means the model requested a tool name that is not
	// registered (or not enabled).
	ErrToolNotFound = errors.New("tool not found")
	// ErrInvalidArgument means a tool handler was called without a required
	// argument or with one of the wrong shape.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEmptyResponse means the model returned neither content nor tool calls.
	ErrEmptyResponse = errors.New("empty model response")
)
