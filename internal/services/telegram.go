package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"raffledash/internal/raffle"
	"raffledash/internal/store"
)

// summaryListLimit caps how many raffles /summary lists by name
const summaryListLimit = 10

const (
	replyRafflesUnavailable = "Failed to load raffles. Please try again later."
	replyBuyersUnavailable  = "Failed to load buyers. Please try again later."
	replyUsage              = "Commands:\n/summary [creator] - raffle count and total floor price\n/buyers <raffleId> - purchasers and tickets of a raffle"
)

// API is the part of *tgbotapi.BotAPI the bot uses
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Connect authorizes the token against Telegram
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}
	slog.Info("telegram bot authorized", "username", api.Self.UserName)
	return api, nil
}

// Bot answers dashboard queries in Telegram chats. Chats that sent /start
// receive Notify broadcasts.
type Bot struct {
	api          API
	store        store.Store
	fetchTimeout time.Duration

	mu    sync.Mutex
	chats map[int64]struct{}
}

func NewBot(api API, st store.Store, fetchTimeout time.Duration) *Bot {
	return &Bot{
		api:          api,
		store:        st,
		fetchTimeout: fetchTimeout,
		chats:        make(map[int64]struct{}),
	}
}

// Run long-polls for updates until ctx is done
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate answers one command message. Anything else is ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}

	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	var text string
	switch msg.Command() {
	case "start":
		b.register(chatID)
		text = fmt.Sprintf("Chat %d registered for dashboard notifications.\n\n%s", chatID, replyUsage)
	case "summary":
		text = b.summary(ctx, args)
	case "buyers":
		text = b.buyers(ctx, args)
	default:
		text = "Unknown command.\n\n" + replyUsage
	}

	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Error("telegram send", "chat_id", chatID, "error", err)
	}
}

// Notify sends text to every registered chat
func (b *Bot) Notify(text string) {
	for _, chatID := range b.Chats() {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			slog.Error("telegram notify", "chat_id", chatID, "error", err)
		}
	}
}

// Chats returns the registered chat IDs in ascending order
func (b *Bot) Chats() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]int64, 0, len(b.chats))
	for id := range b.chats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (b *Bot) register(chatID int64) {
	b.mu.Lock()
	b.chats[chatID] = struct{}{}
	b.mu.Unlock()
	slog.Info("telegram chat registered", "chat_id", chatID)
}

func (b *Bot) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.fetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.fetchTimeout)
}

func (b *Bot) summary(ctx context.Context, creator string) string {
	ctx, cancel := b.fetchContext(ctx)
	defer cancel()

	raffles, err := b.store.ListRaffles(ctx)
	if err != nil {
		slog.Error("telegram summary", "error", err)
		return replyRafflesUnavailable
	}

	res := raffle.NewSnapshot(raffles, time.Now()).Derive(raffle.Criteria{Creator: creator})

	var sb strings.Builder
	if creator != "" {
		fmt.Fprintf(&sb, "Creator: %s\n", creator)
	}
	fmt.Fprintf(&sb, "Raffles: %d\nTotal floor price: %s", res.Summary.Count, res.Summary.FloorPriceDisplay())
	for i, r := range res.Raffles {
		if i == summaryListLimit {
			fmt.Fprintf(&sb, "\n... and %d more", len(res.Raffles)-summaryListLimit)
			break
		}
		fmt.Fprintf(&sb, "\n- %s (%s) %s", r.Name, r.StartTime.UTC().Format(time.DateOnly), r.FloorPrice)
	}
	return sb.String()
}

func (b *Bot) buyers(ctx context.Context, raffleID string) string {
	if raffleID == "" {
		return "Usage: /buyers <raffleId>"
	}

	ctx, cancel := b.fetchContext(ctx)
	defer cancel()

	buyers, err := b.store.ListBuyers(ctx, raffleID)
	if err != nil {
		slog.Error("telegram buyers", "raffle_id", raffleID, "error", err)
		return replyBuyersUnavailable
	}

	s := raffle.SummarizeBuyers(raffle.ScopeBuyers(buyers, raffleID))
	return fmt.Sprintf("Raffle %s\nPurchasers: %d\nTickets: %d", raffleID, s.Purchasers, s.Tickets)
}
