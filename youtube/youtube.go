package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/embed/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/shorts/)([A-Za-z0-9_-]{11})`),
}

// ExtractVideoID pulls the 11-character video id out of any of the common
// YouTube URL forms. It returns an empty string when the URL is not a
// recognizable video link.
func ExtractVideoID(rawURL string) string {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// EmbedLink builds the embeddable player URL for a video link. Returns an
// empty string for unrecognized URLs.
func EmbedLink(rawURL string) string {
	id := ExtractVideoID(rawURL)
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id
}

// Client queries the YouTube Data API for video metadata.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client. baseURL defaults to the public Data API.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Duration fetches the length of a video in seconds.
func (c *Client) Duration(ctx context.Context, videoID string) (int, error) {
	q := url.Values{}
	q.Set("id", videoID)
	q.Set("part", "contentDetails")
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("youtube duration: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("youtube duration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("youtube duration: status %d: %s", resp.StatusCode, string(respBody))
	}

	var payload struct {
		Items []struct {
			ContentDetails struct {
				Duration string `json:"duration"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("youtube duration: decode response: %w", err)
	}
	if len(payload.Items) == 0 {
		return 0, fmt.Errorf("youtube duration: video %q not found", videoID)
	}

	seconds, err := ParseISODuration(payload.Items[0].ContentDetails.Duration)
	if err != nil {
		return 0, fmt.Errorf("youtube duration: %w", err)
	}
	return seconds, nil
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts the Data API's ISO-8601 duration (PT#H#M#S) to
// seconds.
func ParseISODuration(d string) (int, error) {
	m := isoDurationRe.FindStringSubmatch(d)
	if m == nil {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", d)
	}
	total := 0
	for i, mult := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q", d)
		}
		total += n * mult
	}
	return total, nil
}
