package state

import (
	"strconv"
	"sync"
	"time"

	"github.com/futig/saarthi/internal/usecase/conversation"
	"github.com/patrickmn/go-cache"
)

// Registry keeps one Conversation per chat. A conversation nobody touched
// for the idle TTL is dropped, which is the bot's equivalent of closing
// the chat view.
type Registry struct {
	mu              sync.Mutex
	conversations   *cache.Cache
	ttl             time.Duration
	newConversation func() *conversation.Conversation
}

func NewRegistry(ttl time.Duration, newConversation func() *conversation.Conversation) *Registry {
	return &Registry{
		conversations:   cache.New(ttl, ttl/2+time.Minute),
		ttl:             ttl,
		newConversation: newConversation,
	}
}

// Get returns the chat's conversation, creating it on first use, and
// restarts its idle timer.
func (r *Registry) Get(chatID int64) *conversation.Conversation {
	key := strconv.FormatInt(chatID, 10)

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.conversations.Get(key); ok {
		conv := cached.(*conversation.Conversation)
		r.conversations.Set(key, conv, r.ttl)
		return conv
	}

	conv := r.newConversation()
	r.conversations.Set(key, conv, r.ttl)
	return conv
}

// Reset discards the chat's conversation. A request still in flight for
// it resolves into the discarded conversation.
func (r *Registry) Reset(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations.Delete(strconv.FormatInt(chatID, 10))
}

func (r *Registry) Len() int {
	return r.conversations.ItemCount()
}
