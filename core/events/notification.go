package events

import "github.com/koscakluka/ema-chat/core/llms"

// KindNotification identifies a user-facing failure notification.
const KindNotification Kind = "notification"

// Notification is the user-facing side of a failed request.
type Notification struct {
	Base
	ErrorKind llms.ErrorKind
	Title     string
	Message   string
}

// NewNotification creates the notification for a classified failure.
func NewNotification(err *llms.Error) Notification {
	return Notification{
		Base:      NewBase(KindNotification),
		ErrorKind: err.Kind,
		Title:     err.Kind.Title(),
		Message:   err.UserMessage(),
	}
}
