package ai

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/wonny/supascan/internal/contracts"
)

// Dimension names, used as keys into the raw LLM results.
const (
	DimScanner      = "scanner"
	DimRisk         = "risk"
	DimTechnical    = "technical"
	DimValue        = "value"
	DimSentiment    = "sentiment"
	DimGeopolitical = "geopolitical"
)

// promptContext is the data every dimension prompt can reference.
type promptContext struct {
	Ticker        string
	Company       string
	Sector        string
	Price         float64
	MarketCapB    float64
	Change1D      float64
	Change7D      float64
	ShortPercent  float64
	FloatMillions float64

	SocialSignal     string
	RSI              float64
	VolumeRatio      float64
	SMA20            float64
	SMA50            float64
	TechnicalOutlook string
	RecentHeadlines  string
}

// buildContext flattens a candidate into the prompt context.
func buildContext(c *contracts.Candidate) promptContext {
	ctx := promptContext{
		Ticker:        c.Snapshot.Ticker,
		Company:       c.Snapshot.Company,
		Sector:        c.Snapshot.Sector,
		Price:         c.Snapshot.Price,
		MarketCapB:    c.Snapshot.MarketCap / 1e9,
		Change1D:      c.Snapshot.Change1D,
		Change7D:      c.Snapshot.Change7D,
		ShortPercent:  c.Snapshot.ShortPercent,
		FloatMillions: c.Snapshot.FloatShares / 1e6,

		SocialSignal:     "WEAK",
		TechnicalOutlook: contracts.OutlookNeutral,
	}

	if c.Social != nil {
		ctx.SocialSignal = c.Social.Strength
	}
	if c.Technical != nil {
		ctx.RSI = c.Technical.RSI
		ctx.VolumeRatio = c.Technical.VolumeRatio
		ctx.SMA20 = c.Technical.SMA20
		ctx.SMA50 = c.Technical.SMA50
		ctx.TechnicalOutlook = c.Technical.Outlook
	}
	if c.News != nil {
		for i, h := range c.News.Headlines {
			if i >= 5 {
				break
			}
			ctx.RecentHeadlines += "- " + h.Title + "\n"
		}
	}

	return ctx
}

var promptTemplates = map[string]*template.Template{
	DimScanner: mustPrompt(DimScanner, `Act as a senior market analyst for a hedge fund. Analyze {{.Ticker}} ({{.Company}}) in the context of its sector: {{.Sector}}.

CONTEXT:
- Current price: ${{printf "%.2f" .Price}}
- Market cap: ${{printf "%.2f" .MarketCapB}}B
- 7-day change: {{printf "%+.1f" .Change7D}}%
- 1-day change: {{printf "%+.1f" .Change1D}}%
- Social buzz: {{.SocialSignal}}

If this stock is up more than 20% in 7 days or 12% in 1 day you are analyzing late-stage momentum; be conservative and flag the entry risk.

Cover: top 3 growth drivers, top 3 headwinds, competitive moat, recent catalysts, a 3-sentence bull case and bear case, and the sector outlook.

OUTPUT FORMAT (JSON ONLY):
{"growth_drivers": ["..."], "major_headwinds": ["..."], "competitive_position": "...", "recent_catalysts": "...", "bull_case": "...", "bear_case": "...", "sector_outlook": "bullish|bearish|neutral"}`),

	DimRisk: mustPrompt(DimRisk, `Act as a risk management expert. I am considering trading {{.Ticker}} at ${{printf "%.2f" .Price}}.

CONTEXT:
- 7-day momentum: {{printf "%+.1f" .Change7D}}%
- Float: {{printf "%.1f" .FloatMillions}}M shares
- Short interest: {{printf "%.1f" .ShortPercent}}%
- Social buzz: {{.SocialSignal}}
- Technical setup: {{.TechnicalOutlook}}

Run a pre-mortem: assume this trade lost 20%+ within 3 months. Describe the three most likely failure scenarios (technical, fundamental, external shock) with a mitigation and a probability each. Then give an overall risk score (0.0 low to 1.0 extreme), a position size recommendation, and a stop-loss level in dollars.

OUTPUT FORMAT (JSON ONLY):
{"failure_scenarios": [{"scenario": "...", "mitigation": "...", "probability": "low|medium|high"}], "risk_score": 0.0, "position_size_recommendation": "full|half|quarter|avoid", "stop_loss_level": 0.0}`),

	DimTechnical: mustPrompt(DimTechnical, `Act as a Chartered Market Technician. Provide technical analysis for {{.Ticker}}.

DATA:
- Price: ${{printf "%.2f" .Price}}
- 7-day change: {{printf "%+.1f" .Change7D}}%
- RSI: {{printf "%.1f" .RSI}}
- Volume ratio: {{printf "%.2f" .VolumeRatio}}x average
- SMA20=${{printf "%.2f" .SMA20}}, SMA50=${{printf "%.2f" .SMA50}}

Identify three support and three resistance levels, the moving average posture (golden cross, death cross, or neutral), the RSI reading, any recognizable chart pattern, and the overall technical outlook.

OUTPUT FORMAT (JSON ONLY):
{"support_levels": [0.0], "resistance_levels": [0.0], "ma_status": "golden_cross|death_cross|neutral", "rsi_interpretation": "overbought|oversold|neutral", "chart_pattern": "...", "technical_outlook": "bullish|bearish|neutral", "key_observation": "..."}`),

	DimValue: mustPrompt(DimValue, `Act as a value investor in the Graham/Buffett tradition. Evaluate {{.Ticker}} ({{.Company}}) for long-term investment at ${{printf "%.2f" .Price}} with a market cap of ${{printf "%.2f" .MarketCapB}}B.

Assess: the durability of the moat, financial health, valuation versus intrinsic value, and the margin of safety.

OUTPUT FORMAT (JSON ONLY):
{"has_moat": true, "moat_strength": "strong|moderate|weak", "financial_health_score": 0.0, "valuation_vs_intrinsic": "undervalued|fairly_valued|overvalued", "margin_of_safety": 0.0, "value_investor_rating": "strong_buy|buy|hold|avoid"}`),

	DimSentiment: mustPrompt(DimSentiment, `Act as a behavioral finance expert. Analyze market sentiment for {{.Ticker}}.

CONTEXT:
- Social buzz: {{.SocialSignal}}
- 7-day change: {{printf "%+.1f" .Change7D}}%
{{if .RecentHeadlines}}- Recent headlines:
{{.RecentHeadlines}}{{end}}
Gauge crowd psychology on the fear/greed spectrum and decide whether extreme positioning creates a contrarian opportunity.

OUTPUT FORMAT (JSON ONLY):
{"news_sentiment": "positive|negative|neutral", "social_sentiment": "bullish|bearish|neutral", "sentiment_score": "extreme_fear|fear|neutral|greed|extreme_greed", "contrarian_opportunity": false, "sentiment_summary": "..."}`),

	DimGeopolitical: mustPrompt(DimGeopolitical, `Act as a geopolitical strategist. Assess {{.Ticker}} ({{.Sector}}) for exposure to current global risks: trade policy, regulation, supply chains, and regional conflict.

OUTPUT FORMAT (JSON ONLY):
{"exposed_risks": ["..."], "risk_level": "low|medium|high", "risk_explanation": "...", "hedging_recommendations": ["..."]}`),
}

func mustPrompt(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}

// renderPrompt fills the named dimension template with the context.
func renderPrompt(dimension string, ctx promptContext) (string, error) {
	tmpl, ok := promptTemplates[dimension]
	if !ok {
		return "", fmt.Errorf("unknown analysis dimension: %s", dimension)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", dimension, err)
	}
	return buf.String(), nil
}
