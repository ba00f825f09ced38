package realtime

import (
	"github.com/google/uuid"
)

type SSEEvent string

const (
	SSEEventProgressUpdated   SSEEvent = "ProgressUpdated"
	SSEEventScenarioCompleted SSEEvent = "ScenarioCompleted"
	SSEEventInsightsGenerated SSEEvent = "InsightsGenerated"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the channel every stream of userID subscribes to.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// UserMessage addresses an event to one learner.
func UserMessage(userID uuid.UUID, event SSEEvent, data any) SSEMessage {
	return SSEMessage{Channel: UserChannel(userID), Event: event, Data: data}
}
