package telegram

import (
	"context"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// shortUpdates expands the compact update forms Telegram uses for private
// chats and basic groups into regular new-message updates, which the
// dispatcher ignores otherwise.
type shortUpdates struct {
	next telegram.UpdateHandler
	log  *zap.Logger
}

func (h shortUpdates) Handle(ctx context.Context, u tg.UpdatesClass) error {
	switch v := u.(type) {
	case *tg.UpdateShortChatMessage:
		return h.next.Handle(ctx, newMessageUpdates(shortChatMessage(v), v.Pts, v.PtsCount, v.Date))
	case *tg.UpdateShortMessage:
		return h.next.Handle(ctx, newMessageUpdates(shortMessage(v), v.Pts, v.PtsCount, v.Date))
	case *tg.UpdatesTooLong:
		h.log.Warn("update gap reported by server, messages in the gap are recovered only while update recovery runs")
		return nil
	default:
		return h.next.Handle(ctx, u)
	}
}

func newMessageUpdates(msg *tg.Message, pts, ptsCount, date int) *tg.Updates {
	return &tg.Updates{
		Updates: []tg.UpdateClass{&tg.UpdateNewMessage{Message: msg, Pts: pts, PtsCount: ptsCount}},
		Date:    date,
	}
}

func shortChatMessage(u *tg.UpdateShortChatMessage) *tg.Message {
	return &tg.Message{
		ID:        u.ID,
		Out:       u.Out,
		Mentioned: u.Mentioned,
		Silent:    u.Silent,
		Message:   u.Message,
		Date:      u.Date,
		PeerID:    &tg.PeerChat{ChatID: u.ChatID},
		FromID:    &tg.PeerUser{UserID: u.FromID},
		Entities:  u.Entities,
	}
}

func shortMessage(u *tg.UpdateShortMessage) *tg.Message {
	msg := &tg.Message{
		ID:        u.ID,
		Out:       u.Out,
		Mentioned: u.Mentioned,
		Silent:    u.Silent,
		Message:   u.Message,
		Date:      u.Date,
		PeerID:    &tg.PeerUser{UserID: u.UserID},
		Entities:  u.Entities,
	}
	if !u.Out {
		msg.FromID = &tg.PeerUser{UserID: u.UserID}
	}
	return msg
}
