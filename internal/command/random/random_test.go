package random

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/nvbot/internal/nvapi"
	"github.com/keshon/nvbot/pkg/cmd"
	"github.com/keshon/nvbot/pkg/cmd/cmdtest"
)

type fakeAPI struct {
	quotes []nvapi.AnimeQuote
	image  *nvapi.Image
	err    error
}

func (f *fakeAPI) RandomQuotes(context.Context) ([]nvapi.AnimeQuote, error) { return f.quotes, f.err }
func (f *fakeAPI) BlueArchive(context.Context) (*nvapi.Image, error)        { return f.image, f.err }

func invoke(t *testing.T, def cmd.Definition, params cmd.Params) *cmdtest.Recorder {
	t.Helper()
	rec := cmdtest.New()
	require.NoError(t, def.Handler(context.Background(), &cmd.Invocation{
		Command:    def.Name,
		Principal:  cmd.Principal{ID: "1", Username: "ann"},
		Params:     params,
		Reply:      rec,
		ReceivedAt: time.UnixMilli(42),
	}))
	return rec
}

func sequential() func(int) int {
	i := 0
	return func(n int) int {
		v := i % n
		i++
		return v
	}
}

func TestAnimeQuotes(t *testing.T) {
	api := &fakeAPI{quotes: []nvapi.AnimeQuote{
		{Character: "Lelouch", Anime: "Code Geass", Quote: "I am Zero.", Episode: "1"},
		{Character: "Spike", Anime: "Cowboy Bebop", Quote: "Whatever happens, happens."},
	}}
	def, err := NewAnimeQuote(api, sequential(), zerolog.Nop())
	require.NoError(t, err)

	em := invoke(t, def, cmd.Params{"count": int64(3)}).Last().Response.Embeds[0]

	assert.Equal(t, "🌸 3 Random Anime Quotes", em.Title)
	require.Len(t, em.Fields, 3)
	assert.Equal(t, "#1 - Lelouch (Code Geass)", em.Fields[0].Name)
	assert.Equal(t, "\"I am Zero.\"\n📺 Episode: 1", em.Fields[0].Value)
	assert.Equal(t, "\"Whatever happens, happens.\"", em.Fields[1].Value)
	assert.Equal(t, "#3 - Lelouch (Code Geass)", em.Fields[2].Name)
}

func TestAnimeQuoteCountClamped(t *testing.T) {
	api := &fakeAPI{quotes: []nvapi.AnimeQuote{{Character: "a", Anime: "b", Quote: "c"}}}
	def, err := NewAnimeQuote(api, nil, zerolog.Nop())
	require.NoError(t, err)

	assert.Len(t, invoke(t, def, cmd.Params{"count": int64(50)}).Last().Response.Embeds[0].Fields, maxQuotes)
	assert.Len(t, invoke(t, def, cmd.Params{}).Last().Response.Embeds[0].Fields, 1)
}

func TestAnimeQuoteEmpty(t *testing.T) {
	def, err := NewAnimeQuote(&fakeAPI{err: nvapi.ErrNoResult}, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "❌ No quotes available.", invoke(t, def, nil).Last().Response.Content)
}

func TestRBA(t *testing.T) {
	def, err := NewRBA(&fakeAPI{image: &nvapi.Image{Data: []byte{1}, ContentType: "image/gif"}}, zerolog.Nop())
	require.NoError(t, err)

	files := invoke(t, def, nil).Last().Response.Files
	require.Len(t, files, 1)
	assert.Equal(t, "bluearchive_42.gif", files[0].Name)
}

func TestRBAFailure(t *testing.T) {
	def, err := NewRBA(&fakeAPI{err: &nvapi.UpstreamUnavailableError{Endpoint: "blue-archive"}}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "❌ Failed to fetch the image.", invoke(t, def, nil).Last().Response.Content)
}
