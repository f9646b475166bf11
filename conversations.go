package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/autolot/autolot-client/internal/types"
)

const entityConversations = "conversations"

func conversationsKey(userID string) string { return "conversations/" + userID }

// conversationSet is the per-user persisted bundle. Storing all threads under
// one logical key lets concurrent reads coalesce onto a single fetch.
type conversationSet struct {
	UserID        string         `json:"userId"`
	Conversations []Conversation `json:"conversations,omitempty"`
}

func defaultConversations(userID string) func() conversationSet {
	return func() conversationSet {
		return conversationSet{UserID: userID}
	}
}

// Conversations returns all of the user's threads, reconciled with the remote
// store when it is reachable.
func (c *Client) Conversations(ctx context.Context, userID string) ([]Conversation, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	set, err := reconciledRead(ctx, c, conversationsKey(userID), entityConversations, userID,
		jsonDecode[conversationSet], defaultConversations(userID))
	if err != nil {
		return nil, err
	}
	return set.Conversations, nil
}

// SendMessage appends a message to the conversation with the given listing,
// creating the thread on first contact. The write lands in the cache
// immediately and syncs to the remote store in the background.
func (c *Client) SendMessage(ctx context.Context, userID, listingID, sender, body string) (*Message, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(listingID, "listingId"); err != nil {
		return nil, err
	}

	set, err := reconciledRead(ctx, c, conversationsKey(userID), entityConversations, userID,
		jsonDecode[conversationSet], defaultConversations(userID))
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	msg := types.Message{
		ID:     uuid.NewString(),
		Sender: sender,
		Body:   body,
		SentAt: now,
	}

	idx := -1
	for i := range set.Conversations {
		if set.Conversations[i].ListingID == listingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		set.Conversations = append(set.Conversations, types.Conversation{
			ID:        uuid.NewString(),
			UserID:    userID,
			ListingID: listingID,
		})
		idx = len(set.Conversations) - 1
	}
	conv := &set.Conversations[idx]
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = now

	if err := c.writeThrough(ctx, conversationsKey(userID), entityConversations, userID, set); err != nil {
		return nil, err
	}
	return &msg, nil
}
