package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestReaction_Toggle(t *testing.T) {
	tests := []struct {
		name    string
		current Reaction
		next    Reaction
		want    Reaction
	}{
		{"like from none", ReactionNone, ReactionLike, ReactionLike},
		{"like twice clears", ReactionLike, ReactionLike, ReactionNone},
		{"dislike replaces like", ReactionLike, ReactionDislike, ReactionDislike},
		{"like replaces dislike", ReactionDislike, ReactionLike, ReactionLike},
		{"dislike twice clears", ReactionDislike, ReactionDislike, ReactionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.current.Toggle(tt.next); got != tt.want {
				t.Errorf("Toggle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVideo_SetReactionKeepsSetsDisjoint(t *testing.T) {
	v := &Video{}
	a, b := uuid.New(), uuid.New()

	v.SetReaction(a, ReactionLike)
	v.SetReaction(b, ReactionLike)
	v.SetReaction(a, ReactionDislike)

	if v.ReactionOf(a) != ReactionDislike {
		t.Fatalf("expected a to dislike, got %v", v.ReactionOf(a))
	}
	if len(v.Likes) != 1 || v.Likes[0] != b {
		t.Fatalf("unexpected likes: %v", v.Likes)
	}
	for _, l := range v.Likes {
		for _, d := range v.Dislikes {
			if l == d {
				t.Fatalf("user %s in both likes and dislikes", l)
			}
		}
	}

	v.SetReaction(a, ReactionNone)
	if len(v.Dislikes) != 0 {
		t.Fatalf("expected no dislikes, got %v", v.Dislikes)
	}
}

func TestChannel_SetSubscribers(t *testing.T) {
	ch := &Channel{}
	u := uuid.New()
	ch.SetSubscribers([]uuid.UUID{u, uuid.New()})

	if ch.Subscribes != len(ch.SubscriberList) {
		t.Fatalf("subscribes %d != len(subscriberList) %d", ch.Subscribes, len(ch.SubscriberList))
	}
	if !ch.HasSubscriber(u) {
		t.Fatal("expected subscriber to be present")
	}
}
