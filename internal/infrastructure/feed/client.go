package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/parking-aggregator/internal/config"
	"go.uber.org/zap"
)

// maxErrorBody - сколько байт тела ответа попадает в ошибку
const maxErrorBody = 512

// Client открывает данные источника: HTTP(S) URL или локальный файл
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// NewClient создает клиент для загрузки фидов источников
func NewClient(cfg *config.ConverterConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Open возвращает поток данных по location. Вызывающий закрывает поток.
func (c *Client) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if location == "" {
		return nil, fmt.Errorf("empty feed location")
	}

	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("failed to open feed file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("Fetching feed", zap.String("url", location))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.String("url", location), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("Feed returned error",
			zap.String("url", location),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("feed error: status %d, body: %s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}
