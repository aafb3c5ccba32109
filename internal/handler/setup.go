package handler

import (
	"context"
	"sync"
	"time"

	"exile-bot/internal/crash"
	"exile-bot/internal/platform"

	"github.com/bwmarrin/discordgo"
)

var handlerWG sync.WaitGroup

// Register attaches the event handlers to a discordgo session.
func (h *Handler) Register(s *discordgo.Session) {
	s.AddHandler(h.onMessageCreate)
	s.AddHandler(h.onMemberAdd)
	s.AddHandler(h.onMemberUpdate)
}

func (h *Handler) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// direct messages and our own posts
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	eventsReceived.WithLabelValues("message_create").Inc()
	incrementCounter(&totalMessagesProcessed)

	dispatch("message-"+m.ID, func(ctx context.Context) {
		msg := platform.FromDiscordMessage(ctx, h.session, m.Message)
		if !h.HandleCommand(ctx, msg) {
			h.MonitorMarket(ctx, msg)
		}
	})
}

func (h *Handler) onMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil {
		return
	}
	eventsReceived.WithLabelValues("member_add").Inc()
	incrementCounter(&totalMemberEvents)

	member := platform.FromDiscordMember(m.GuildID, m.Member)
	dispatch("member-add-"+member.ID, func(ctx context.Context) {
		h.HandleMemberJoin(ctx, member)
	})
}

func (h *Handler) onMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.Member == nil || m.User == nil {
		return
	}
	eventsReceived.WithLabelValues("member_update").Inc()
	incrementCounter(&totalMemberEvents)

	member := platform.FromDiscordMember(m.GuildID, m.Member)
	dispatch("member-update-"+member.ID, func(ctx context.Context) {
		h.HandleMemberUpdate(ctx, member)
	})
}

// dispatch runs fn on its own goroutine and tracks it for WaitForHandlers.
// Handlers are never cancelled once started.
func dispatch(name string, fn func(ctx context.Context)) {
	handlerWG.Add(1)
	activeHandlers.Add(1)
	handlersInFlight.Inc()
	crash.SafeGoroutine(name, func() {
		defer handlerWG.Done()
		defer activeHandlers.Add(-1)
		defer handlersInFlight.Dec()
		fn(context.Background())
	})
}

// WaitForHandlers blocks until every dispatched handler has returned or
// timeout elapses, and reports whether they all finished.
func WaitForHandlers(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		handlerWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
