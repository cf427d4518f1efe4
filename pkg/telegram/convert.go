package telegram

import (
	"strconv"
	"strings"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/sells-group/leadscout/internal/messenger"
	"github.com/sells-group/leadscout/internal/model"
)

// NormalizeSource turns "@name", "t.me/name" and "https://t.me/name" into
// the bare username. Anything else is returned trimmed.
func NormalizeSource(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	for _, prefix := range []string{"t.me/", "telegram.me/", "@"} {
		s = strings.TrimPrefix(s, prefix)
	}
	return strings.TrimSuffix(s, "/")
}

// channelSourceID returns the bot-API style id of a channel.
func channelSourceID(id int64) string {
	return "-100" + strconv.FormatInt(id, 10)
}

func chatSourceID(id int64) string {
	return "-" + strconv.FormatInt(id, 10)
}

// sourceOf describes the chat a message was posted in, using whatever the
// update entities know about it.
func sourceOf(peer tg.PeerClass, e tg.Entities) model.Source {
	switch p := peer.(type) {
	case *tg.PeerChannel:
		src := model.Source{ID: channelSourceID(p.ChannelID)}
		if ch, ok := e.Channels[p.ChannelID]; ok {
			src.DisplayName = ch.Title
			src.Username = ch.Username
		}
		return src
	case *tg.PeerChat:
		src := model.Source{ID: chatSourceID(p.ChatID)}
		if chat, ok := e.Chats[p.ChatID]; ok {
			src.DisplayName = chat.Title
		}
		return src
	case *tg.PeerUser:
		src := model.Source{ID: strconv.FormatInt(p.UserID, 10)}
		if u, ok := e.Users[p.UserID]; ok {
			src.DisplayName = strings.TrimSpace(u.FirstName + " " + u.LastName)
			src.Username = u.Username
		}
		return src
	default:
		return model.Source{}
	}
}

// convertMessage keeps regular messages only. A media message's caption is
// its text.
func convertMessage(m tg.MessageClass, src model.Source) (model.RawMessage, bool) {
	msg, ok := m.(*tg.Message)
	if !ok {
		return model.RawMessage{}, false
	}
	return model.RawMessage{
		ID:       int64(msg.ID),
		Text:     msg.Message,
		Source:   src,
		HasMedia: msg.Media != nil,
	}, true
}

// messagesOf unwraps a history response.
func messagesOf(res tg.MessagesMessagesClass) []tg.MessageClass {
	switch r := res.(type) {
	case *tg.MessagesMessages:
		return r.Messages
	case *tg.MessagesMessagesSlice:
		return r.Messages
	case *tg.MessagesChannelMessages:
		return r.Messages
	default:
		return nil
	}
}

// mapError translates platform errors into the messenger contract.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if d, ok := tgerr.AsFloodWait(err); ok {
		return &messenger.ThrottledError{RetryAfter: d}
	}
	if tgerr.Is(err, "USER_ALREADY_PARTICIPANT") {
		return messenger.ErrAlreadyMember
	}
	return err
}
