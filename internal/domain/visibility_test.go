package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleLog() []*Message {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []*Message{
		{ID: 1, From: "Ana", To: "Todos", Text: StatusJoinedText, Kind: KindStatus, SentAt: at},
		{ID: 2, From: "Ana", To: "Todos", Text: "oi", Kind: KindBroadcast, SentAt: at.Add(time.Second)},
		{ID: 3, From: "Ana", To: "Bia", Text: "segredo", Kind: KindPrivate, SentAt: at.Add(2 * time.Second)},
		{ID: 4, From: "Bia", To: "Ana", Text: "resposta", Kind: KindPrivate, SentAt: at.Add(3 * time.Second)},
		{ID: 5, From: "Bia", To: "Caio", Text: "só pro Caio", Kind: KindPrivate, SentAt: at.Add(4 * time.Second)},
		{ID: 6, From: "Caio", To: "Bia", Text: "aberto", Kind: KindBroadcast, SentAt: at.Add(5 * time.Second)},
	}
}

func ids(messages []*Message) []int64 {
	out := make([]int64, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.ID)
	}
	return out
}

func TestVisibleTo(t *testing.T) {
	for _, tc := range []struct {
		requester string
		want      []int64
	}{
		{"Ana", []int64{1, 2, 3, 4, 6}},
		{"Bia", []int64{1, 2, 3, 4, 5, 6}},
		{"Caio", []int64{1, 2, 5, 6}},
		{"Davi", []int64{1, 2, 6}},
	} {
		t.Run(tc.requester, func(t *testing.T) {
			require.Equal(t, tc.want, ids(VisibleTo(sampleLog(), tc.requester, DefaultBroadcastTarget)))
		})
	}
}

func TestIsVisibleTo_MatchesPredicateForEveryPair(t *testing.T) {
	req := require.New(t)
	viewers := []string{"Ana", "Bia", "Caio", "Davi", "Todos"}

	for _, m := range sampleLog() {
		for _, v := range viewers {
			want := m.To == DefaultBroadcastTarget || m.Kind == KindBroadcast || m.From == v || m.To == v
			req.Equal(want, IsVisibleTo(m, v, DefaultBroadcastTarget), "message %d viewer %s", m.ID, v)
		}
	}
}

func TestIsVisibleTo_CustomBroadcastTarget(t *testing.T) {
	req := require.New(t)
	m := &Message{From: "Ana", To: "all", Kind: KindStatus}

	req.True(IsVisibleTo(m, "Bia", "all"))
	req.False(IsVisibleTo(m, "Bia", DefaultBroadcastTarget))
}

func TestMostRecent(t *testing.T) {
	req := require.New(t)
	log := sampleLog()

	// Given a limit smaller than the log
	got := MostRecent(log, 3)

	// Then the newest three come first
	req.Equal([]int64{6, 5, 4}, ids(got))
	// And the input is left untouched
	req.Equal([]int64{1, 2, 3, 4, 5, 6}, ids(log))

	req.Equal([]int64{6, 5, 4, 3, 2, 1}, ids(MostRecent(log, 0)))
	req.Equal([]int64{6, 5, 4, 3, 2, 1}, ids(MostRecent(log, 100)))
	req.Empty(MostRecent(nil, 3))
}

func TestParseMessageKind(t *testing.T) {
	req := require.New(t)

	k, err := ParseMessageKind("message")
	req.NoError(err)
	req.Equal(KindBroadcast, k)

	k, err = ParseMessageKind("private_message")
	req.NoError(err)
	req.Equal(KindPrivate, k)

	_, err = ParseMessageKind("status")
	req.Error(err)
	_, err = ParseMessageKind("")
	req.Error(err)
}

func TestValidateName(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateName("Ana"))
	req.Error(ValidateName(""))
	req.Error(ValidateName("   \t"))
}

func TestParticipant_IsExpired(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 5, 1, 0, 0, 5, 0, time.UTC)
	p := Participant{Name: "Ana", LastStatus: now.Add(-10 * time.Second)}

	req.True(p.IsExpired(now, 10*time.Second))
	req.False(p.IsExpired(now, 11*time.Second))
}
