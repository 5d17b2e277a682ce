package nvapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

type ClaudeReply struct {
	Response        string
	EstimatedTokens int
	ResponseLength  int
}

// Claude sends a single chat message.
func (c *Client) Claude(ctx context.Context, msg string) (*ClaudeReply, error) {
	res, err := c.getJSON(ctx, "claude", c.endpointURL(c.base, "/nv/ai/claude", url.Values{"msg": {msg}}))
	if err != nil {
		return nil, err
	}
	data := res.Get("data")
	if !res.Get("success").Bool() || !data.Exists() || data.Get("response").String() == "" {
		return nil, ErrNoResult
	}
	reply := &ClaudeReply{
		Response:        data.Get("response").String(),
		EstimatedTokens: int(data.Get("estimated_tokens").Int()),
		ResponseLength:  int(data.Get("response_length").Int()),
	}
	if reply.ResponseLength == 0 {
		reply.ResponseLength = len([]rune(reply.Response))
	}
	return reply, nil
}

type Image struct {
	Data        []byte
	ContentType string
}

// Extension guesses a file extension from the content type, jpg by default.
func (i *Image) Extension() string {
	ct := strings.ToLower(i.ContentType)
	switch {
	case strings.Contains(ct, "png"):
		return "png"
	case strings.Contains(ct, "gif"):
		return "gif"
	case strings.Contains(ct, "webp"):
		return "webp"
	}
	return "jpg"
}

// Imagine renders a prompt into an image.
func (c *Client) Imagine(ctx context.Context, prompt string) (*Image, error) {
	resp, err := c.get(ctx, "imagine", c.endpointURL(c.base, "/nv/images/magicstudio", url.Values{"prompt": {prompt}}), "image/*")
	if err != nil {
		return nil, err
	}
	if len(resp.body) == 0 {
		return nil, ErrNoResult
	}
	ct := resp.contentType
	if ct == "" {
		ct = "image/png"
	}
	return &Image{Data: resp.body, ContentType: ct}, nil
}

type AnimeQuote struct {
	Character string
	Anime     string
	Quote     string
	Episode   string
}

// RandomQuotes returns the upstream's current batch of anime quotes.
func (c *Client) RandomQuotes(ctx context.Context) ([]AnimeQuote, error) {
	res, err := c.getJSON(ctx, "anime-quotes", c.base+"/nv/anime/randomquotes2")
	if err != nil {
		return nil, err
	}
	var quotes []AnimeQuote
	res.Get("data.quotes").ForEach(func(_, q gjson.Result) bool {
		quotes = append(quotes, AnimeQuote{
			Character: q.Get("character").String(),
			Anime:     q.Get("anime").String(),
			Quote:     q.Get("quote").String(),
			Episode:   q.Get("episode").String(),
		})
		return true
	})
	if len(quotes) == 0 {
		return nil, ErrNoResult
	}
	return quotes, nil
}

// BlueArchive fetches a random character image. Non-image answers are errors.
func (c *Client) BlueArchive(ctx context.Context) (*Image, error) {
	q := url.Values{"t": {strconv.FormatInt(c.now().UnixMilli(), 10)}}
	return c.Download(ctx, "blue-archive", c.endpointURL(c.base, "/nv/random/ba", q))
}

// Download fetches an image from an arbitrary URL.
func (c *Client) Download(ctx context.Context, endpoint, rawURL string) (*Image, error) {
	resp, err := c.get(ctx, endpoint, rawURL, "image/*")
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(resp.contentType, "image/") {
		return nil, &UpstreamUnavailableError{
			Endpoint: endpoint,
			Status:   resp.status,
			Err:      fmt.Errorf("unexpected content type %q", resp.contentType),
		}
	}
	return &Image{Data: resp.body, ContentType: resp.contentType}, nil
}

type UstadzMeme struct {
	URL       string
	Filename  string
	ExpiresAt time.Time
}

// Ustadz renders text onto the meme template and returns where to fetch it.
func (c *Client) Ustadz(ctx context.Context, text string) (*UstadzMeme, error) {
	res, err := c.getJSON(ctx, "ustadz", c.endpointURL(c.base, "/nv/canvas/ustadz", url.Values{"text": {text}}))
	if err != nil {
		return nil, err
	}
	if !res.Get("success").Bool() || res.Get("results.url").String() == "" {
		return nil, ErrNoResult
	}
	m := &UstadzMeme{
		URL:      res.Get("results.url").String(),
		Filename: res.Get("results.filename").String(),
	}
	if m.Filename == "" {
		m.Filename = "ustadz_meme.jpg"
	}
	if t, err := time.Parse(time.RFC3339, res.Get("results.expiresAt").String()); err == nil {
		m.ExpiresAt = t
	}
	return m, nil
}

type Video struct {
	Title       string
	Channel     string
	Duration    string
	Views       string // number or formatted string, as sent
	Uploaded    string
	ImageURL    string
	URL         string
	VideoID     string
	Description string
}

// SearchYouTube returns at most limit results.
func (c *Client) SearchYouTube(ctx context.Context, query string, limit int) ([]Video, error) {
	res, err := c.getJSON(ctx, "youtube-search", c.endpointURL(c.base, "/nv/search/yt", url.Values{"q": {query}}))
	if err != nil {
		return nil, err
	}
	if !res.Get("success").Bool() {
		return nil, ErrNoResult
	}
	var videos []Video
	res.Get("results").ForEach(func(_, v gjson.Result) bool {
		videos = append(videos, Video{
			Title:       v.Get("title").String(),
			Channel:     v.Get("channel").String(),
			Duration:    v.Get("duration").String(),
			Views:       v.Get("views").String(),
			Uploaded:    v.Get("uploaded").String(),
			ImageURL:    v.Get("imageUrl").String(),
			URL:         v.Get("url").String(),
			VideoID:     v.Get("videoId").String(),
			Description: v.Get("description").String(),
		})
		return limit <= 0 || len(videos) < limit
	})
	return videos, nil
}

type Health struct {
	Latency string
	Uptime  string
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	res, err := c.getJSON(ctx, "health", c.base+"/health")
	if err != nil {
		return nil, err
	}
	return &Health{
		Latency: res.Get("latency").String(),
		Uptime:  res.Get("uptime").String(),
	}, nil
}

type ShortenRequest struct {
	URL         string
	Slug        string
	Title       string
	Description string
}

type ShortLink struct {
	OriginalURL  string
	ShortURL     string
	Slug         string
	Title        string
	Description  string
	Visits       int
	Active       bool
	CreatedAt    time.Time
	LastAccessed time.Time
}

// ShortenURL creates a short link. A taken slug or a rejected URL comes back
// as *UpstreamUnavailableError with Status 400 and the upstream Message.
func (c *Client) ShortenURL(ctx context.Context, r ShortenRequest) (*ShortLink, error) {
	q := url.Values{"url": {r.URL}}
	if r.Slug != "" {
		q.Set("slug", r.Slug)
	}
	if r.Title != "" {
		q.Set("title", r.Title)
	}
	if r.Description != "" {
		q.Set("desc", r.Description)
	}
	res, err := c.getJSON(ctx, "short-url", c.endpointURL(c.short, "/new", q))
	if err != nil {
		return nil, err
	}
	if !res.Get("success").Bool() || !res.Get("data").Exists() {
		return nil, ErrNoResult
	}
	return parseShortLink(res.Get("data")), nil
}

// ShortURLStats fetches visit counters for a slug.
func (c *Client) ShortURLStats(ctx context.Context, slug string) (*ShortLink, error) {
	res, err := c.getJSON(ctx, "short-url-stats", c.short+"/stats/"+url.PathEscape(slug))
	if err != nil {
		return nil, err
	}
	if !res.Get("success").Bool() {
		return nil, ErrNoResult
	}
	return parseShortLink(res.Get("data")), nil
}

// DeleteShortURL removes a short link permanently.
func (c *Client) DeleteShortURL(ctx context.Context, slug string) error {
	res, err := c.getJSON(ctx, "short-url-delete", c.endpointURL(c.short, "/delete.py", url.Values{"slug": {slug}}))
	if err != nil {
		return err
	}
	if !res.Get("success").Bool() {
		return ErrNoResult
	}
	return nil
}

func parseShortLink(d gjson.Result) *ShortLink {
	l := &ShortLink{
		OriginalURL: d.Get("originalUrl").String(),
		ShortURL:    d.Get("shortUrl").String(),
		Slug:        d.Get("shortSlug").String(),
		Title:       d.Get("title").String(),
		Description: d.Get("description").String(),
		Visits:      int(d.Get("visits").Int()),
		Active:      d.Get("isActive").Bool(),
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339, d.Get("createdAt").String())
	l.LastAccessed, _ = time.Parse(time.RFC3339, d.Get("lastAccessed").String())
	return l
}

type Meme struct {
	Title     string
	Permalink string
	ImageURL  string
	Ups       int
	Comments  int
	Subreddit string
}

// RedditMeme picks a random post from a subreddit.
func (c *Client) RedditMeme(ctx context.Context, subreddit string) (*Meme, error) {
	res, err := c.getJSON(ctx, "reddit", c.reddit+"/r/"+url.PathEscape(subreddit)+"/random/.json")
	if err != nil {
		return nil, err
	}
	// /random answers with [post, comments]; some subreddits redirect to a
	// plain listing instead.
	post := res.Get("0.data.children.0.data")
	if !res.IsArray() {
		post = res.Get("data.children.0.data")
	}
	if !post.Exists() {
		return nil, ErrNoResult
	}
	return &Meme{
		Title:     post.Get("title").String(),
		Permalink: "https://reddit.com" + post.Get("permalink").String(),
		ImageURL:  post.Get("url").String(),
		Ups:       int(post.Get("ups").Int()),
		Comments:  int(post.Get("num_comments").Int()),
		Subreddit: post.Get("subreddit").String(),
	}, nil
}
