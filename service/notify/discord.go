package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/goroutine"
)

const DefaultDedupeWindow = 10 * time.Minute

type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
}

type DiscordNotifierCfg struct {
	Sender    EmbedSender
	ChannelId string
	// DedupeWindow silences an identical error reported again within the window
	DedupeWindow time.Duration
}

// DiscordNotifier posts failures as embeds. Sends are asynchronous, Close flushes them.
type DiscordNotifier struct {
	sender    EmbedSender
	channelId string
	window    time.Duration
	now       func() time.Time

	mu     sync.Mutex
	sent   map[string]time.Time
	closed bool
	wg     sync.WaitGroup
}

// NewDiscordSession opens a bot session, it does not connect the gateway since only REST calls are used
func NewDiscordSession(botKey string) (*discordgo.Session, error) {
	return discordgo.New(fmt.Sprintf("Bot %s", botKey))
}

func NewDiscordNotifier(cfg *DiscordNotifierCfg) *DiscordNotifier {
	window := cfg.DedupeWindow
	if window <= 0 {
		window = DefaultDedupeWindow
	}
	return &DiscordNotifier{
		sender:    cfg.Sender,
		channelId: cfg.ChannelId,
		window:    window,
		now:       time.Now,
		sent:      map[string]time.Time{},
	}
}

func (n *DiscordNotifier) Notify(c bCtx.Ctx, err error) {
	title := Title(err)
	key := title + "|" + err.Error()
	admitted, closed := n.admit(key)
	if closed {
		met.BumpSum("discord.closed", 1)
		c.WithField("err", err).Warn("discord notifier closed, dropping notification")
		return
	}
	if !admitted {
		met.BumpSum("discord.deduped", 1)
		return
	}
	msg := &discordgo.MessageEmbed{
		Title:       title,
		Description: err.Error(),
		Timestamp:   n.now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Stream", Value: orDash(string(streamOf(err)))},
		},
	}
	goroutine.RecoverableGo(func() {
		if _, err := n.sender.ChannelMessageSendEmbed(n.channelId, msg); err != nil {
			met.BumpSum("discord.err", 1)
			c.WithField("err", err).Error("discord.ChannelMessageSendEmbed failed")
		}
	}, goroutine.WithAfterEnded(n.wg.Done))
}

// admit reserves an in-flight send for key unless it was sent within the window or the notifier is closed
func (n *DiscordNotifier) admit(key string) (admitted, closed bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return false, true
	}
	now := n.now()
	if last, ok := n.sent[key]; ok && now.Sub(last) < n.window {
		return false, false
	}
	for k, t := range n.sent {
		if now.Sub(t) >= n.window {
			delete(n.sent, k)
		}
	}
	n.sent[key] = now
	n.wg.Add(1)
	return true, false
}

// Close stops accepting notifications and waits for in-flight sends until c is done
func (n *DiscordNotifier) Close(c bCtx.Ctx) error {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-c.Done():
		c.WithField("err", c.Err()).Warn("discord sends still in flight at close")
		return c.Err()
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
