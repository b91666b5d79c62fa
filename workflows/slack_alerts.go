// workflows/slack_alerts.go
package workflows

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

type SlackPayload struct {
	Text string `json:"text"`
}

// ReportCheckFailureToSlack posts a detection failure to the alerts channel.
// Best effort: callers log the returned error and move on.
func ReportCheckFailureToSlack(checkID, projectID, reason string) error {
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")
	if webhookURL == "" {
		return errors.New("SLACK_WEBHOOK_URL environment variable is not set")
	}

	if reason == "" {
		reason = "unknown"
	}

	message := fmt.Sprintf(
		":rotating_light: *Mention Check Failed*\n"+
			"*Time:* %s\n"+
			"*Check:* %s\n"+
			"*Project:* %s\n"+
			"*Reason:* ```%s```",
		time.Now().UTC().Format(time.RFC3339),
		checkID,
		projectID,
		reason,
	)

	body, err := json.Marshal(SlackPayload{Text: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}
