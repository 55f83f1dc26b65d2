package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"

	"movie-trivia-service/internal/domain"
)

const (
	defaultBaseURL = "https://opentdb.com/api.php"
	// CategoryMovies is the Open Trivia DB category id for film questions.
	CategoryMovies = 11
)

// Config tunes the client; zero values select the public API and the movies
// category.
type Config struct {
	BaseURL  string
	Category int
}

// Client fetches multiple-choice questions from the Open Trivia DB API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	category   int
}

func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Category == 0 {
		cfg.Category = CategoryMovies
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		category:   cfg.Category,
	}
}

// rawQuestion mirrors the provider payload.
type rawQuestion struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []rawQuestion `json:"results"`
}

// FetchBatch requests amount multiple-choice questions. Any transport error,
// non-200 status, or non-zero provider response code is a fetch error. Text
// fields arrive HTML-entity-encoded and are unescaped here.
func (c *Client) FetchBatch(ctx context.Context, amount int) ([]domain.Question, error) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	params.Set("category", strconv.Itoa(c.category))
	params.Set("type", "multiple")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opentdb returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode opentdb payload: %w", err)
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("opentdb response_code=%d", payload.ResponseCode)
	}

	questions := make([]domain.Question, 0, len(payload.Results))
	for _, raw := range payload.Results {
		incorrect := make([]string, len(raw.IncorrectAnswers))
		for i, a := range raw.IncorrectAnswers {
			incorrect[i] = html.UnescapeString(a)
		}
		questions = append(questions, domain.Question{
			Prompt:           html.UnescapeString(raw.Question),
			CorrectAnswer:    html.UnescapeString(raw.CorrectAnswer),
			IncorrectAnswers: incorrect,
		})
	}
	return questions, nil
}
