// lensewatch polls a survey's analytics endpoint and reports new responses
// as they arrive. It is the terminal rendition of the dashboard's live-update
// loop: detect changes via the updates endpoint, then re-fetch.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/movinigamage/FeedBack-Lense-sub000/internal/poll"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL    string
	surveyIDFlag string
	baseInterval time.Duration
	maxInterval  time.Duration
	immediate    bool
)

var rootCmd = &cobra.Command{
	Use:   "lensewatch",
	Short: "Watch a survey for new responses",
	Long:  "lensewatch polls the FeedBack Lense analytics API and prints a line whenever new responses arrive.",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&serverURL, "server", "http://localhost:5050", "analytics server base URL")
	rootCmd.Flags().StringVar(&surveyIDFlag, "survey", "", "survey id to watch (required)")
	rootCmd.Flags().DurationVar(&baseInterval, "interval", poll.DefaultBaseInterval, "base poll interval")
	rootCmd.Flags().DurationVar(&maxInterval, "max-interval", poll.DefaultMaxInterval, "backoff cap")
	rootCmd.Flags().BoolVar(&immediate, "immediate", true, "poll once immediately on start")
	cobra.CheckErr(rootCmd.MarkFlagRequired("survey"))
}

func run(cmd *cobra.Command, args []string) error {
	surveyID, err := uuid.Parse(surveyIDFlag)
	if err != nil {
		return fmt.Errorf("invalid survey id %q: %w", surveyIDFlag, err)
	}

	poller := &httpPoller{
		base:   serverURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	controller := poll.NewController(
		zap.NewNop(),
		poller,
		surveyID,
		poll.Config{BaseInterval: baseInterval, MaxInterval: maxInterval, ImmediateFirst: immediate},
		poll.AlwaysVisible(),
		clockwork.NewRealClock(),
	)
	controller.SetListener(printEvent)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	controller.Start(ctx)
	color.Cyan("Watching survey %s every %s (Ctrl+C to stop)", surveyID, baseInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	controller.Stop()
	color.Cyan("Stopped.")
	return nil
}

func printEvent(ev poll.Event) {
	switch e := ev.(type) {
	case poll.UpdateEvent:
		color.Green("[%s] %d new response(s), latest at %s",
			time.Now().Format("15:04:05"), e.NewCount, e.LastResponseAt.Format(time.RFC3339))
	case poll.StatusEvent:
		if e.Status == poll.StatusError {
			color.Red("[%s] poll failed: %v (retrying in %s)",
				time.Now().Format("15:04:05"), e.Err, e.NextInterval)
		}
	}
}

// httpPoller implements poll.Poller against the analytics API.
type httpPoller struct {
	base   string
	client *http.Client
}

type updatesPayload struct {
	Updated        bool       `json:"updated"`
	LastResponseAt *time.Time `json:"lastResponseAt"`
	NewCount       *int       `json:"newCount"`
}

func (p *httpPoller) PollUpdates(ctx context.Context, surveyID uuid.UUID, since *time.Time) (poll.Result, error) {
	endpoint := fmt.Sprintf("%s/api/surveys/%s/updates", p.base, surveyID)
	if since != nil {
		// The store keeps sub-second submission timestamps and the server
		// compares strictly-after, so the baseline must round-trip at full
		// precision or an already-seen response counts as new on every poll.
		endpoint += "?since=" + url.QueryEscape(since.Format(time.RFC3339Nano))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return poll.Result{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return poll.Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return poll.Result{}, fmt.Errorf("updates endpoint returned %s", resp.Status)
	}

	var payload updatesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return poll.Result{}, fmt.Errorf("failed to decode updates payload: %w", err)
	}

	result := poll.Result{Updated: payload.Updated, LastResponseAt: payload.LastResponseAt}
	if payload.NewCount != nil {
		result.NewCount = *payload.NewCount
	}
	return result, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
