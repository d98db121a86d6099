package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/httputil"
	"github.com/wonny/supascan/pkg/logger"
)

// Embed colors.
const (
	colorGreen  = 0x2ecc71
	colorYellow = 0xf1c40f
	colorRed    = 0xe74c3c
)

// DiscordSink posts the run summary to a Discord webhook as an embed.
type DiscordSink struct {
	webhookURL string
	httpClient *httputil.Client
	logger     *logger.Logger
}

// NewDiscordSink creates a Discord webhook sink.
func NewDiscordSink(webhookURL string, httpClient *httputil.Client, log *logger.Logger) *DiscordSink {
	return &DiscordSink{webhookURL: webhookURL, httpClient: httpClient, logger: log}
}

func (d *DiscordSink) Name() string { return "discord" }

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Send delivers the run embed to the webhook.
func (d *DiscordSink) Send(ctx context.Context, result *contracts.RunResult) error {
	resp, err := d.httpClient.PostJSON(ctx, d.webhookURL, buildDiscordPayload(result))
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("discord webhook status %d", resp.StatusCode)
	}
	return nil
}

func buildDiscordPayload(result *contracts.RunResult) discordPayload {
	embed := discordEmbed{
		Title: summaryTitle(result),
		Color: colorFor(result),
	}

	if result.Regime != nil && !result.Regime.Tradeable() {
		for _, reason := range result.Regime.Reasons {
			embed.Description += "• " + reason + "\n"
		}
	}

	for _, f := range result.Finalists {
		embed.Fields = append(embed.Fields, discordField{
			Name: fmt.Sprintf("#%d %s — %.2f/5.0 %s", f.Rank, f.Ticker, f.CompositeScore, f.Rating),
			Value: fmt.Sprintf("$%.2f · stop $%.2f · size %.1f%% · %s conviction\n%s",
				f.Price, f.StopLoss, f.PositionPct*100, f.Conviction, f.HoldPeriod),
		})
	}

	embed.Fields = append(embed.Fields, discordField{
		Name: "Funnel",
		Value: fmt.Sprintf("%d universe → %d quality → %d price action → %d analyzed → %d ranked",
			result.Stages.Universe, result.Stages.QualityPassed, result.Stages.PriceActionPassed,
			result.Stages.Analyzed, result.Stages.Ranked),
	})

	return discordPayload{Embeds: []discordEmbed{embed}}
}

func colorFor(result *contracts.RunResult) int {
	switch result.Status {
	case contracts.RunPaused:
		return colorRed
	case contracts.RunNoCandidates:
		return colorYellow
	default:
		return colorGreen
	}
}
