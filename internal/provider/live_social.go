package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/supascan/internal/contracts"
)

// streamResponse mirrors the StockTwits symbol stream payload.
type streamResponse struct {
	Messages []struct {
		Body      string `json:"body"`
		CreatedAt string `json:"created_at"`
		Likes     struct {
			Total int `json:"total"`
		} `json:"likes"`
		ConversationCount int `json:"conversation_count"`
	} `json:"messages"`
}

// SocialMentions counts stream messages created within the window.
func (p *LiveProvider) SocialMentions(ctx context.Context, ticker string, window time.Duration) (int, error) {
	posts, err := p.SocialPosts(ctx, ticker, window)
	if err != nil {
		return 0, err
	}
	return len(posts), nil
}

// SocialPosts fetches the symbol stream and keeps posts inside the window.
func (p *LiveProvider) SocialPosts(ctx context.Context, ticker string, window time.Duration) ([]contracts.Mention, error) {
	fullURL := fmt.Sprintf("%s/streams/symbol/%s.json", p.socialBaseURL, url.PathEscape(ticker))

	var sr streamResponse
	if err := p.fetchJSON(ctx, fullURL, &sr); err != nil {
		return nil, fmt.Errorf("social stream fetch failed for %s: %w", ticker, err)
	}

	cutoff := time.Now().Add(-window)
	mentions := make([]contracts.Mention, 0, len(sr.Messages))
	for _, msg := range sr.Messages {
		createdAt, err := time.Parse("2006-01-02T15:04:05Z", msg.CreatedAt)
		if err != nil || createdAt.Before(cutoff) {
			continue
		}
		mentions = append(mentions, contracts.Mention{
			Source:     "stocktwits",
			Text:       msg.Body,
			Engagement: msg.Likes.Total + msg.ConversationCount,
		})
	}
	return mentions, nil
}
