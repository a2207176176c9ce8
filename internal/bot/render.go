package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/filmoteka/filmoteka/internal/catalog"
)

const (
	callbackGenrePrefix = "genre_"
	callbackWatchPrefix = "watch_"
)

// movieCard renders a movie as a Markdown message.
func movieCard(m *catalog.Movie) string {
	names := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		names[i] = g.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎬 *%s*\n\n", m.Title)
	fmt.Fprintf(&b, "📝 %s\n\n", m.Description)
	fmt.Fprintf(&b, "📅 Year: %d\n", m.Year)
	fmt.Fprintf(&b, "⭐️ Rating: %.1f\n", m.Rating)
	fmt.Fprintf(&b, "🎭 Genres: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "🎦 [Trailer](%s)", m.TrailerURL)
	return b.String()
}

// watchKeyboard is the "mark watched" button attached to every movie card.
func watchKeyboard(movieID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"Mark as watched",
				fmt.Sprintf("%s%d", callbackWatchPrefix, movieID),
			),
		),
	)
}

// genreKeyboard lists every genre as its own button row.
func genreKeyboard(genres []catalog.Genre) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(genres))
	for _, g := range genres {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				g.Name,
				fmt.Sprintf("%s%d", callbackGenrePrefix, g.ID),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// watchedList renders a user's watch history.
func watchedList(watched []catalog.WatchedMovie) string {
	var b strings.Builder
	b.WriteString("Watched movies:\n\n")
	for _, w := range watched {
		fmt.Fprintf(&b, "🎬 %s (%d)\n", w.Movie.Title, w.Movie.Year)
	}
	return b.String()
}
