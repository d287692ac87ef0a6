package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"todoList/internal/logger"
	"todoList/internal/metrics"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

var (
	ErrMissingAPIKey = errors.New("не задан ключ API погоды")
	ErrNetwork       = errors.New("сетевая ошибка запроса погоды")
	ErrBadStatus     = errors.New("провайдер погоды вернул ошибку")
)

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type response struct {
	Weather []condition `json:"weather"`
}

type Client struct {
	baseURL    string
	apiKey     string
	units      string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithUnits(units string) ClientOption {
	return func(cl *Client) {
		cl.units = units
	}
}

func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		units:   "metric",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveIcon запрашивает текущую погоду по координатам
func (c *Client) ResolveIcon(ctx context.Context, lat, lon float64) (Icon, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return c.resolve(ctx, q)
}

// ResolveIconByCity - вариант запроса по названию города
func (c *Client) ResolveIconByCity(ctx context.Context, city string) (Icon, error) {
	q := url.Values{}
	q.Set("q", city)
	return c.resolve(ctx, q)
}

func (c *Client) resolve(ctx context.Context, q url.Values) (Icon, error) {
	if c.apiKey == "" {
		metrics.RecordWeatherLookup("failed")
		return IconUnknown, ErrMissingAPIKey
	}
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		metrics.RecordWeatherLookup("failed")
		return IconUnknown, fmt.Errorf("создание запроса погоды: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordWeatherLookup("failed")
		return IconUnknown, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordWeatherLookup("failed")
		return IconUnknown, fmt.Errorf("%w: статус %d", ErrBadStatus, resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.RecordWeatherLookup("failed")
		return IconUnknown, fmt.Errorf("%w: разбор ответа: %v", ErrBadStatus, err)
	}

	if len(body.Weather) == 0 {
		metrics.RecordWeatherLookup("unknown")
		return IconUnknown, nil
	}

	description := body.Weather[0].Description
	icon, known := IconFor(description)
	if !known {
		metrics.RecordWeatherLookup("unknown")
		logger.Debug("Weather: Незнакомое описание погоды", zap.String("description", description))
		return IconUnknown, nil
	}

	metrics.RecordWeatherLookup("ok")
	return icon, nil
}
