package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/filmoteka/filmoteka/internal/catalog"
	"github.com/filmoteka/filmoteka/internal/recommend"
	apperrors "github.com/filmoteka/filmoteka/pkg/errors"
	"github.com/filmoteka/filmoteka/pkg/logger"
)

const genericErrorMessage = "Something went wrong, please try again later."

// Bot is the Telegram front-end. It holds no business logic beyond
// presentation: commands map to catalog reads, the watch button maps to
// RecordWatch.
type Bot struct {
	api       *tgbotapi.BotAPI
	store     *catalog.Store
	recommend *recommend.Service
	log       logger.Logger
}

// New connects to the Telegram API with the given token.
func New(token string, store *catalog.Store, rec *recommend.Service, log logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:       api,
		store:     store,
		recommend: rec,
		log:       log.With(logger.String("bot", api.Self.UserName)),
	}, nil
}

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.log.Info("bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("bot stopped")
			return ctx.Err()
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID, "Hi! I recommend movies.\n"+
			"/random - get a random movie\n"+
			"/genres - pick a movie by genre\n"+
			"/watched - list movies you marked as watched")
	case "random":
		b.sendRandomMovie(ctx, msg.Chat.ID)
	case "genres":
		b.sendGenreMenu(ctx, msg.Chat.ID)
	case "watched":
		b.sendWatchedList(ctx, msg.Chat.ID, msg.From.ID)
	}
}

func (b *Bot) sendRandomMovie(ctx context.Context, chatID int64) {
	movie, err := b.recommend.PickRandom(ctx)
	if apperrors.IsNotFound(err) {
		b.reply(chatID, "There are no movies in the catalog yet.")
		return
	}
	if err != nil {
		b.log.Error("pick random movie", logger.Error(err))
		b.reply(chatID, genericErrorMessage)
		return
	}
	b.sendMovieCard(chatID, movie)
}

func (b *Bot) sendGenreMenu(ctx context.Context, chatID int64) {
	genres, err := b.store.ListGenres(ctx)
	if err != nil {
		b.log.Error("list genres", logger.Error(err))
		b.reply(chatID, genericErrorMessage)
		return
	}
	if len(genres) == 0 {
		b.reply(chatID, "There are no genres in the catalog yet.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Pick a genre:")
	msg.ReplyMarkup = genreKeyboard(genres)
	b.send(msg)
}

func (b *Bot) sendWatchedList(ctx context.Context, chatID, userID int64) {
	watched, err := b.store.ListWatchedByUser(ctx, userID)
	if err != nil {
		b.log.Error("list watched movies", logger.Error(err), logger.Int64("user_id", userID))
		b.reply(chatID, genericErrorMessage)
		return
	}
	if len(watched) == 0 {
		b.reply(chatID, "You have not marked any movies as watched yet.")
		return
	}
	b.reply(chatID, watchedList(watched))
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	switch {
	case strings.HasPrefix(query.Data, callbackGenrePrefix):
		b.answer(query.ID, "")
		b.handleGenrePick(ctx, query)
	case strings.HasPrefix(query.Data, callbackWatchPrefix):
		b.handleMarkWatched(ctx, query)
	default:
		b.answer(query.ID, "")
	}
}

func (b *Bot) handleGenrePick(ctx context.Context, query *tgbotapi.CallbackQuery) {
	genreID, err := parseCallbackID(query.Data, callbackGenrePrefix)
	if err != nil || query.Message == nil {
		b.log.Warn("malformed genre callback", logger.String("data", query.Data))
		return
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	movie, err := b.recommend.PickRandomByGenre(ctx, genreID)
	if apperrors.IsNotFound(err) {
		b.send(tgbotapi.NewEditMessageText(chatID, messageID, "No movies found for this genre."))
		return
	}
	if err != nil {
		b.log.Error("pick movie by genre", logger.Error(err), logger.Uint("genre_id", genreID))
		b.send(tgbotapi.NewEditMessageText(chatID, messageID, genericErrorMessage))
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, movieCard(movie), watchKeyboard(movie.ID))
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
}

func (b *Bot) handleMarkWatched(ctx context.Context, query *tgbotapi.CallbackQuery) {
	movieID, err := parseCallbackID(query.Data, callbackWatchPrefix)
	if err != nil {
		b.log.Warn("malformed watch callback", logger.String("data", query.Data))
		b.answer(query.ID, genericErrorMessage)
		return
	}

	_, err = b.store.RecordWatch(ctx, query.From.ID, movieID, time.Now().UTC())
	if err != nil {
		b.log.Error("record watch",
			logger.Error(err),
			logger.Int64("user_id", query.From.ID),
			logger.Uint("movie_id", movieID))
		b.answer(query.ID, genericErrorMessage)
		return
	}
	b.answer(query.ID, "Marked as watched!")
}

func (b *Bot) sendMovieCard(chatID int64, movie *catalog.Movie) {
	msg := tgbotapi.NewMessage(chatID, movieCard(movie))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = watchKeyboard(movie.ID)
	b.send(msg)
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Error("send message", logger.Error(err))
	}
}

func (b *Bot) answer(queryID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		b.log.Error("answer callback", logger.Error(err))
	}
}

func parseCallbackID(data, prefix string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(data, prefix), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
