// Package entropy provides injectable random sources and the per-battle
// terrain and spawn perturbations drawn from them.
//
// Every random draw in a battle goes through one Source, so a battle is
// reproducible from its initial roster and the sequence of values drawn.
package entropy

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	mrand "math/rand"
	"net/http"
	"sync"
	"time"
)

// Source yields uniformly distributed values in [0, 1).
type Source interface {
	Float() float64
}

// Func adapts a plain function to a Source.
type Func func() float64

// Float calls f.
func (f Func) Float() float64 { return f() }

// Seeded is a deterministic source backed by math/rand.
type Seeded struct {
	rng *mrand.Rand
}

// NewSeeded creates a deterministic source. Seed 0 is treated as 1.
func NewSeeded(seed int64) *Seeded {
	if seed == 0 {
		seed = 1
	}
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

// Float returns the next value of the stream.
func (s *Seeded) Float() float64 { return s.rng.Float64() }

// Int draws an integer uniformly from [lo, hi] inclusive.
func Int(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	n := int(src.Float() * float64(hi-lo+1))
	if n > hi-lo {
		n = hi - lo
	}
	return lo + n
}

// Tape wraps a source and records every value it hands out.
type Tape struct {
	src    Source
	values []float64
}

// NewTape records draws from src.
func NewTape(src Source) *Tape {
	return &Tape{src: src}
}

// Float draws from the wrapped source and records the value.
func (t *Tape) Float() float64 {
	v := t.src.Float()
	t.values = append(t.values, v)
	return v
}

// Values returns a copy of the recorded draws.
func (t *Tape) Values() []float64 {
	return append([]float64(nil), t.values...)
}

// Replay plays back recorded values, then continues with a seeded stream
// once they run out.
type Replay struct {
	values   []float64
	pos      int
	fallback Source
}

// NewReplay creates a replaying source.
func NewReplay(values []float64, fallbackSeed int64) *Replay {
	return &Replay{values: values, fallback: NewSeeded(fallbackSeed)}
}

// Float returns the next recorded value.
func (r *Replay) Float() float64 {
	if r.pos < len(r.values) {
		v := r.values[r.pos]
		r.pos++
		return v
	}
	return r.fallback.Float()
}

// Exhausted reports whether every recorded value has been consumed.
func (r *Replay) Exhausted() bool {
	return r.pos >= len(r.values)
}

// Client provides true random numbers from random.org with a local pool.
// Battles driven by it are reproducible only when wrapped in a Tape.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client

	mu   sync.Mutex
	pool []float64
}

const randomOrgEndpoint = "https://api.random.org/json-rpc/4/invoke"

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: randomOrgEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Float returns a random float64 in [0, 1). Uses the pool, refilling from
// random.org when low. Falls back to crypto/rand on API failure.
func (c *Client) Float() float64 {
	if c == nil {
		return CryptoFloat()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pool) < 10 {
		if err := c.refill(context.Background()); err != nil {
			slog.Debug("random.org refill failed", "error", err)
		}
	}

	if len(c.pool) == 0 {
		return CryptoFloat()
	}

	val := c.pool[0]
	c.pool = c.pool[1:]
	return val
}

func (c *Client) refill(ctx context.Context) error {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateDecimalFractions",
		"params": map[string]any{
			"apiKey":        c.apiKey,
			"n":             100,
			"decimalPlaces": 6,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	var result struct {
		Result struct {
			Random struct {
				Data []float64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if result.Error != nil {
		return fmt.Errorf("api error: %s", result.Error.Message)
	}

	for _, v := range result.Result.Random.Data {
		if v >= 0 && v < 1 {
			c.pool = append(c.pool, v)
		}
	}
	slog.Debug("random.org pool refilled", "count", len(result.Result.Random.Data))
	return nil
}

// CryptoFloat returns a random float using crypto/rand (no API needed).
func CryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	// 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
