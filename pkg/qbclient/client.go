package qbclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client — клиент QuickBase REST API v1.
//
// Один метод — одна операция API. Все вызовы синхронные и блокирующие,
// принимают context.Context. Клиент владеет schema-кешем (имена → id),
// кешем GET-ответов, rate limiter-ом и политикой повторов; слой трансляции
// SQL ничего из этого не дублирует.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rateLimiter
	cache      *responseCache
	schema     *SchemaCache
}

// New создает клиент по конфигурации. Token и Realm обязательны.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		schema: NewSchemaCache(),
	}

	if cfg.RateLimit.Enabled {
		c.limiter = newRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.Cache.Enabled {
		cache, err := newResponseCache(cfg.Cache)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}

	return c, nil
}

// AppID возвращает ID приложения по умолчанию.
func (c *Client) AppID() string { return c.cfg.AppID }

// Schema возвращает кеш метаданных клиента.
func (c *Client) Schema() *SchemaCache { return c.schema }

// ClearCache сбрасывает все локальные кеши: ответы и метаданные.
func (c *Client) ClearCache(ctx context.Context) {
	if c.cache != nil {
		c.cache.clear(ctx)
	}
	c.schema.Clear()
}

// invalidateResponses сбрасывает кеш GET-ответов после schema-мутации:
// перечитывание метаданных не должно попасть в устаревший TTL-кеш.
func (c *Client) invalidateResponses(ctx context.Context) {
	if c.cache != nil {
		c.cache.clear(ctx)
	}
}

// Close освобождает ресурсы кеша.
func (c *Client) Close() error {
	if c.cache != nil {
		return c.cache.close()
	}
	return nil
}

// reqOpts — параметры одного запроса к API.
type reqOpts struct {
	useCache    bool              // кешировать GET-ответ
	headers     map[string]string // дополнительные заголовки
	contentType string            // переопределение Content-Type (например, application/x-yaml)
}

// doRequest выполняет запрос с rate limiting, кешированием и повторами.
//
// Классификация отказов: 401 → ErrAuth, 404 → ErrNotFound, 429 → ErrRateLimit
// (повторяется с учётом Retry-After), остальные статусы → ErrAPI без повтора.
// Сетевые ошибки повторяются с экспоненциальным backoff.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, body any, opts reqOpts) ([]byte, error) {
	fullURL := c.cfg.BaseURL + "/" + strings.TrimPrefix(endpoint, "/")
	encodedParams := ""
	if len(params) > 0 {
		encodedParams = params.Encode()
		fullURL += "?" + encodedParams
	}

	key := cacheKey(method, fullURL, encodedParams)
	if opts.useCache && c.cache != nil && method == http.MethodGet {
		if data, ok := c.cache.get(ctx, key); ok {
			return data, nil
		}
	}

	bodyBytes, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retry.MaxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "QB-USER-TOKEN "+c.cfg.Token)
		req.Header.Set("QB-Realm-Hostname", c.cfg.Realm)
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		if opts.contentType != "" {
			req.Header.Set("Content-Type", opts.contentType)
		} else {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range opts.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrAPI, err)
			if attempt < c.cfg.Retry.MaxAttempts {
				if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read response: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if opts.useCache && c.cache != nil && method == http.MethodGet {
				c.cache.set(ctx, key, respBody)
			}
			return respBody, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"), c.backoff(attempt))
			lastErr = newAPIError(resp.StatusCode, string(respBody), retryAfter)
			if attempt < c.cfg.Retry.MaxAttempts {
				if err := c.sleep(ctx, retryAfter); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}

		// 401/404/прочие — повтор не поможет
		return nil, newAPIError(resp.StatusCode, string(respBody), 0)
	}
	return nil, lastErr
}

// do выполняет запрос и декодирует JSON-ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body any, out any, opts reqOpts) error {
	data, err := c.doRequest(ctx, method, endpoint, params, body, opts)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

// backoff вычисляет задержку перед повтором: initial * 2^(attempt-1).
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.cfg.Retry.InitialDelay * math.Pow(2, float64(attempt-1))
	return time.Duration(delay * float64(time.Second))
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// encodeBody сериализует тело запроса: nil, сырые байты/строка или JSON.
func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		return data, nil
	}
}

// parseRetryAfter читает заголовок Retry-After (в секундах).
func parseRetryAfter(header string, fallback time.Duration) time.Duration {
	if header == "" {
		return fallback
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
