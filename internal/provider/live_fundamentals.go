package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/redis"
)

// summaryResponse mirrors the v10 quoteSummary endpoint payload for the
// modules this provider requests.
type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData struct {
				GrossMargins     rawValue `json:"grossMargins"`
				OperatingMargins rawValue `json:"operatingMargins"`
				FreeCashflow     rawValue `json:"freeCashflow"`
				DebtToEquity     rawValue `json:"debtToEquity"`
				RevenueGrowth    rawValue `json:"revenueGrowth"`
			} `json:"financialData"`
			DefaultKeyStatistics struct {
				EnterpriseToEbitda rawValue `json:"enterpriseToEbitda"`
			} `json:"defaultKeyStatistics"`
			InsiderTransactions struct {
				Transactions []struct {
					Shares   rawValue `json:"shares"`
					OwnTypes string   `json:"filerRelation"`
					Text     string   `json:"transactionText"`
				} `json:"transactions"`
			} `json:"insiderTransactions"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// rawValue is the endpoint's {raw: x, fmt: "x"} number wrapper.
type rawValue struct {
	Raw float64 `json:"raw"`
}

func (p *LiveProvider) fetchSummary(ctx context.Context, ticker string, modules string) (*summaryResponse, error) {
	fullURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		p.quoteBaseURL, url.PathEscape(ticker), modules)

	var sr summaryResponse
	if err := p.fetchJSON(ctx, fullURL, &sr); err != nil {
		return nil, fmt.Errorf("summary fetch failed for %s: %w", ticker, err)
	}
	return &sr, nil
}

// Financials fetches margins, cash flow and leverage, and derives the
// [0,1] quality score used by the composite scorer.
func (p *LiveProvider) Financials(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	fund := &contracts.Fundamentals{Ticker: ticker}

	if p.cache != nil {
		found, err := p.cache.Get(ctx, redis.FundamentalsKey(ticker), fund)
		if err == nil && found {
			return fund, nil
		}
	}

	sr, err := p.fetchSummary(ctx, ticker, "financialData,defaultKeyStatistics")
	if err != nil {
		return nil, err
	}
	if len(sr.QuoteSummary.Result) == 0 {
		return fund, nil
	}

	fd := sr.QuoteSummary.Result[0].FinancialData
	fund.GrossMargin = fd.GrossMargins.Raw * 100
	fund.OperatingMargin = fd.OperatingMargins.Raw * 100
	fund.FreeCashFlow = fd.FreeCashflow.Raw
	fund.DebtToEquity = fd.DebtToEquity.Raw
	fund.RevenueGrowth = fd.RevenueGrowth.Raw * 100
	fund.EVToEBITDA = sr.QuoteSummary.Result[0].DefaultKeyStatistics.EnterpriseToEbitda.Raw
	fund.QualityScore = QualityScore(fund)

	if p.cache != nil {
		_ = p.cache.Set(ctx, redis.FundamentalsKey(ticker), fund, redis.TTLLong)
	}
	return fund, nil
}

// QualityScore grades fundamentals into [0, 1]. Each component earns a
// fixed slice: gross margin 0.25, operating margin 0.25, positive free
// cash flow 0.25, manageable leverage 0.25.
func QualityScore(f *contracts.Fundamentals) float64 {
	score := 0.0
	if f.GrossMargin > 40 {
		score += 0.25
	} else if f.GrossMargin > 25 {
		score += 0.125
	}
	if f.OperatingMargin > 15 {
		score += 0.25
	} else if f.OperatingMargin > 5 {
		score += 0.125
	}
	if f.FreeCashFlow > 0 {
		score += 0.25
	}
	if f.DebtToEquity > 0 && f.DebtToEquity < 100 {
		score += 0.25
	} else if f.DebtToEquity >= 100 && f.DebtToEquity < 200 {
		score += 0.125
	}
	return score
}

// InsiderTrades summarizes recent insider transactions. Three or more
// distinct buys mark cluster buying.
func (p *LiveProvider) InsiderTrades(ctx context.Context, ticker string) (*contracts.InsiderActivity, error) {
	activity := &contracts.InsiderActivity{Ticker: ticker}

	sr, err := p.fetchSummary(ctx, ticker, "insiderTransactions")
	if err != nil {
		return nil, err
	}
	if len(sr.QuoteSummary.Result) == 0 {
		return activity, nil
	}

	for _, txn := range sr.QuoteSummary.Result[0].InsiderTransactions.Transactions {
		switch classifyInsiderText(txn.Text) {
		case "buy":
			activity.Buys++
		case "sell":
			activity.Sells++
		}
	}

	activity.Score = InsiderScore(activity.Buys, activity.Sells)
	activity.ClusterBuying = activity.Buys >= 3 && activity.Buys > activity.Sells
	return activity, nil
}

// InsiderScore grades buy/sell balance into [0, 1]. 0.5 is neutral.
func InsiderScore(buys, sells int) float64 {
	total := buys + sells
	if total == 0 {
		return 0.5
	}
	return float64(buys) / float64(total)
}

func classifyInsiderText(text string) string {
	switch {
	case containsFold(text, "purchase") || containsFold(text, "buy"):
		return "buy"
	case containsFold(text, "sale") || containsFold(text, "sell"):
		return "sell"
	default:
		return ""
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
