package chatstream

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/ema-chat/core/llms"
)

type requestBody struct {
	Messages []message `json:"messages"`
}

// message is the wire form of a turn. Only role and content are sent.
type message struct {
	Role    messageRole `json:"role"`
	Content string      `json:"content"`
}

type messageRole string

const (
	messageRoleUser      messageRole = "user"
	messageRoleAssistant messageRole = "assistant"
)

type streamingResponseBody struct {
	Choices []streamingChoice `json:"choices"`
	Usage   *usage            `json:"usage,omitempty"`
}

type streamingChoice struct {
	Index        int            `json:"index"`
	Delta        streamingDelta `json:"delta"`
	FinishReason *string        `json:"finish_reason"`
}

type streamingDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func toMessages(turns []llms.Turn) ([]message, error) {
	messages := []message{}
	if err := copier.Copy(&messages, &turns); err != nil {
		return nil, fmt.Errorf("error converting turns to messages: %w", err)
	}
	return messages, nil
}
