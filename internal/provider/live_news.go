package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/supascan/internal/contracts"
)

// Headline keywords that signal a tradeable catalyst vs generic noise.
var catalystKeywords = []string{
	"fda approval", "acquisition", "merger", "buyout", "partnership",
	"contract", "beats estimates", "raises guidance", "upgrade",
	"breakthrough", "patent", "launch", "expansion", "buyback",
}

// searchResponse mirrors the v1 search endpoint payload.
type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// News fetches recent headlines and scores them for catalysts.
// Catalyst score is the fraction of recent headlines matching a
// catalyst keyword, capped at 1.0.
func (p *LiveProvider) News(ctx context.Context, ticker string) (*contracts.NewsBundle, error) {
	fullURL := fmt.Sprintf("%s/v1/finance/search?q=%s&newsCount=10", p.quoteBaseURL, url.QueryEscape(ticker))

	var sr searchResponse
	if err := p.fetchJSON(ctx, fullURL, &sr); err != nil {
		return nil, fmt.Errorf("news fetch failed for %s: %w", ticker, err)
	}

	bundle := &contracts.NewsBundle{Ticker: ticker, DaysToEarnings: -1}

	catalysts := 0
	for _, item := range sr.News {
		bundle.Headlines = append(bundle.Headlines, contracts.Headline{
			Title:       item.Title,
			Source:      item.Publisher,
			PublishedAt: time.Unix(item.ProviderPublishTime, 0).UTC(),
		})
		if matchesCatalyst(item.Title) {
			catalysts++
		}
	}

	if len(bundle.Headlines) > 0 {
		bundle.CatalystScore = float64(catalysts) / float64(len(bundle.Headlines))
		if bundle.CatalystScore > 1.0 {
			bundle.CatalystScore = 1.0
		}
	}

	if days, err := p.EarningsCalendar(ctx, ticker); err == nil {
		bundle.DaysToEarnings = days
	}
	return bundle, nil
}

func matchesCatalyst(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range catalystKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
