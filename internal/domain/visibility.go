package domain

import "github.com/samber/lo"

// IsVisibleTo reports whether requester may read m. Anything addressed to
// the room or sent as a broadcast is public; otherwise the requester must be
// the sender or the addressee.
func IsVisibleTo(m *Message, requester, broadcastTarget string) bool {
	return m.To == broadcastTarget ||
		m.Kind == KindBroadcast ||
		m.From == requester ||
		m.To == requester
}

// VisibleTo keeps log order.
func VisibleTo(messages []*Message, requester, broadcastTarget string) []*Message {
	return lo.Filter(messages, func(m *Message, _ int) bool {
		return IsVisibleTo(m, requester, broadcastTarget)
	})
}

// MostRecent returns at most limit messages, newest first. A limit <= 0
// returns every message, still newest first.
func MostRecent(messages []*Message, limit int) []*Message {
	reversed := lo.Reverse(append([]*Message(nil), messages...))
	if limit > 0 && len(reversed) > limit {
		reversed = reversed[:limit]
	}
	return reversed
}
