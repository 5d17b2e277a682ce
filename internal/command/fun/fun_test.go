package fun

import (
	"context"
	"errors"
	"fmt"
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
	meme      *nvapi.Meme
	ustadz    *nvapi.UstadzMeme
	image     *nvapi.Image
	err       error
	subreddit string
}

func (f *fakeAPI) RedditMeme(_ context.Context, sub string) (*nvapi.Meme, error) {
	f.subreddit = sub
	return f.meme, f.err
}

func (f *fakeAPI) Ustadz(_ context.Context, _ string) (*nvapi.UstadzMeme, error) {
	return f.ustadz, f.err
}

func (f *fakeAPI) Download(_ context.Context, _, _ string) (*nvapi.Image, error) {
	return f.image, nil
}

func invoke(t *testing.T, def cmd.Definition, params cmd.Params) *cmdtest.Recorder {
	t.Helper()
	rec := cmdtest.New()
	require.NoError(t, def.Handler(context.Background(), &cmd.Invocation{
		Command:   def.Name,
		Principal: cmd.Principal{ID: "1", Username: "ann"},
		Params:    params,
		Reply:     rec,
	}))
	return rec
}

func TestMemeDefaultsSubreddit(t *testing.T) {
	api := &fakeAPI{meme: &nvapi.Meme{
		Title: "funny", Permalink: "https://reddit.com/r/memes/1", ImageURL: "https://i.redd.it/1.png",
		Ups: 10, Comments: 2, Subreddit: "memes",
	}}
	def, err := NewMeme(api, zerolog.Nop())
	require.NoError(t, err)

	rec := invoke(t, def, cmd.Params{})

	assert.Equal(t, "memes", api.subreddit)
	em := rec.Last().Response.Embeds[0]
	assert.Equal(t, "funny", em.Title)
	assert.Equal(t, "👍 10 | 💬 2 | r/memes", em.Footer)
	assert.Equal(t, memeColor, em.Color)
}

func TestMemeChoice(t *testing.T) {
	api := &fakeAPI{meme: &nvapi.Meme{Title: "x"}}
	def, err := NewMeme(api, zerolog.Nop())
	require.NoError(t, err)

	invoke(t, def, cmd.Params{"subreddit": "ProgrammerHumor"})
	assert.Equal(t, "ProgrammerHumor", api.subreddit)
}

func TestMemeFailure(t *testing.T) {
	def, err := NewMeme(&fakeAPI{err: errors.New("429")}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "❌ Failed to fetch meme. Please try again later.", invoke(t, def, cmd.Params{}).Last().Response.Content)
}

func TestUstadzQuote(t *testing.T) {
	api := &fakeAPI{
		ustadz: &nvapi.UstadzMeme{URL: "https://cdn/x.jpg", Filename: "ustadz_meme.jpg", ExpiresAt: time.Unix(1700000000, 0)},
		image:  &nvapi.Image{Data: []byte{9}, ContentType: "image/jpeg"},
	}
	def, err := NewUstadzQuote(api, zerolog.Nop())
	require.NoError(t, err)

	rec := invoke(t, def, cmd.Params{"text": "be patient", "hidden": true})

	assert.True(t, rec.Sent()[0].Ephemeral)
	resp := rec.Last().Response
	assert.Contains(t, resp.Content, "💬 **Text:** be patient")
	assert.Contains(t, resp.Content, "<t:1700000000:R>")
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "ustadz_meme.jpg", resp.Files[0].Name)
}

func TestUstadzErrors(t *testing.T) {
	assert.Contains(t, ustadzError(fmt.Errorf("wrap: %w", context.DeadlineExceeded)), "Timeout")
	assert.Equal(t, "❌ API Error: 503", ustadzError(&nvapi.UpstreamUnavailableError{Status: 503}))
	assert.Contains(t, ustadzError(nvapi.ErrNoResult), "Failed to create")
}
