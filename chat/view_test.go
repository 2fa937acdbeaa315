package chat

import (
	"testing"

	"genchat/model"

	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	msgs := []model.Message{
		{ID: "sys", Role: model.RoleSystem, Content: "hidden"},
		{ID: "u1", Role: model.RoleUser, Content: "hi"},
		{ID: "a1", Role: model.RoleAssistant, Content: "hello"},
	}

	tests := []struct {
		name string
		in   View
		ev   Event
		want View
	}{
		{
			name: "messages drop system turns",
			in:   View{SessionID: "s1"},
			ev:   MessagesLoaded{SessionID: "s1", Messages: msgs},
			want: View{SessionID: "s1", Messages: msgs[1:]},
		},
		{
			name: "messages of another session ignored",
			in:   View{SessionID: "s1"},
			ev:   MessagesLoaded{SessionID: "s2", Messages: msgs},
			want: View{SessionID: "s1"},
		},
		{
			name: "draft",
			in:   View{SessionID: "s1"},
			ev:   DraftChanged{Text: "typing"},
			want: View{SessionID: "s1", DraftText: "typing"},
		},
		{
			name: "busy",
			in:   View{SessionID: "s1"},
			ev:   BusyChanged{SessionID: "s1", InFlight: 2},
			want: View{SessionID: "s1", IsBusy: true},
		},
		{
			name: "idle",
			in:   View{SessionID: "s1", IsBusy: true},
			ev:   BusyChanged{SessionID: "s1"},
			want: View{SessionID: "s1"},
		},
		{
			name: "busy elsewhere ignored",
			in:   View{SessionID: "s1"},
			ev:   BusyChanged{SessionID: "s2", InFlight: 1},
			want: View{SessionID: "s1"},
		},
		{
			name: "error raised",
			in:   View{SessionID: "s1"},
			ev:   ErrorRaised{SessionID: "s1", Message: "boom"},
			want: View{SessionID: "s1", LastError: "boom"},
		},
		{
			name: "error dismissed",
			in:   View{SessionID: "s1", LastError: "boom"},
			ev:   ErrorDismissed{},
			want: View{SessionID: "s1"},
		},
		{
			name: "session switch resets",
			in:   View{SessionID: "s1", DraftText: "x", LastError: "boom", Messages: msgs},
			ev:   SessionChanged{SessionID: "s2", InFlight: 1},
			want: View{SessionID: "s2", IsBusy: true},
		},
		{
			name: "reopen keeps draft",
			in:   View{SessionID: "s1", DraftText: "x"},
			ev:   SessionChanged{SessionID: "s1"},
			want: View{SessionID: "s1", DraftText: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.in, tt.ev))
		})
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	in := View{SessionID: "s1", DraftText: "a"}
	_ = Reduce(in, DraftChanged{Text: "b"})
	assert.Equal(t, "a", in.DraftText)
}
