// Package client implements the authenticated session against the chat
// backend: the signed-request executor, the push-channel lifecycle, and the
// per-conversation reconstruction of streamed replies.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	perrors "github.com/mzyui/poe-go/internal/errors"
	"github.com/mzyui/poe-go/internal/files"
	"github.com/mzyui/poe-go/internal/formkey"
	"github.com/mzyui/poe-go/internal/metrics"
	"github.com/mzyui/poe-go/internal/push"
	"github.com/mzyui/poe-go/internal/queries"
	"github.com/mzyui/poe-go/internal/retry"
	"github.com/mzyui/poe-go/internal/signer"
	"github.com/mzyui/poe-go/lru"
)

// Auth carries the two session cookies and, optionally, a pre-known signing
// secret. Without the secret the client bootstraps one from the served
// script bundles on first use.
type Auth struct {
	PB      string
	PLat    string
	FormKey string
}

// wsConn is the subset of the websocket connection the client uses. Tests
// substitute a fake; production code uses *websocket.Conn.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one authenticated session. It owns the transport configuration,
// the push connection, and the per-conversation event queues. It is not safe
// for unsynchronized concurrent use; callers sharing a session must
// serialize access.
type Client struct {
	http    *http.Client
	baseURL string
	headers http.Header
	formkey string
	sdid    string

	keys formkey.Source
	bots *lru.Cache[string, *BotInfo]

	dispatcher *push.Dispatcher
	conn       wsConn
	queues     map[int64][]push.Event

	logger   zerolog.Logger
	rec      *metrics.Recorder
	retryCfg retry.Config
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithBaseURL overrides the backend base URL (tests).
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(base, "/") }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *Client) { c.rec = rec }
}

// WithFormKeySource overrides the signing-secret bootstrap collaborator.
func WithFormKeySource(src formkey.Source) Option {
	return func(c *Client) { c.keys = src }
}

// WithRetry retries operation calls that fail with the backend's generic
// server error. Off by default; explicit application errors are never
// retried.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

// New creates an authenticated session.
func New(auth Auth, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	c := &Client{
		baseURL: "https://poe.com",
		headers: defaultHeaders(),
		formkey: auth.FormKey,
		sdid:    uuid.NewString(),
		bots:    lru.New[string, *BotInfo](64),
		queues:  make(map[int64][]push.Event),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "client").Logger()
	c.dispatcher = push.NewDispatcher(c.logger)

	c.http = &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	jar.SetCookies(base, []*http.Cookie{
		{Name: "p-b", Value: auth.PB},
		{Name: "p-lat", Value: auth.PLat},
	})

	if c.formkey != "" {
		c.headers.Set("Poe-Formkey", c.formkey)
	}
	if c.keys == nil {
		c.keys = formkey.New(c.http, c.baseURL, c.logger)
	}
	return c, nil
}

func defaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36 Edg/115.0.1901.203")
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", "en-US,en,q=0.5")
	h.Set("Sec-Ch-Ua", `"Microsoft Edge";v="123", "Not:A-Brand";v="8", "Chromium";v="123"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Origin", "https://poe.com")
	h.Set("Referer", "https://poe.com/")
	return h
}

// request is one logical operation call.
type request struct {
	op        queries.Operation
	path      string
	vars      map[string]any
	files     []files.File
	knowledge bool
	rateHint  int
}

type gqlPayload struct {
	QueryName  queries.Operation `json:"queryName"`
	Variables  map[string]any    `json:"variables"`
	Extensions struct {
		Hash string `json:"hash"`
	} `json:"extensions"`
}

// execute sends one signed operation call, retrying transient server
// failures when the session opted in.
func (c *Client) execute(ctx context.Context, r request) ([]byte, error) {
	if c.retryCfg.MaxAttempts <= 1 {
		return c.executeOnce(ctx, r)
	}
	var raw []byte
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		var err error
		raw, err = c.executeOnce(ctx, r)
		return err
	})
	return raw, err
}

// executeOnce sends one signed operation call and classifies the response.
// Success requires the body's success flag plus a data field; otherwise the
// first reported error message decides between the generic transient server
// failure and a verbatim application error. A body with neither is returned
// as-is for the caller to inspect.
func (c *Client) executeOnce(ctx context.Context, r request) ([]byte, error) {
	key := c.formkey
	if key == "" {
		var err error
		key, err = c.keys.FormKey(ctx)
		if err != nil {
			c.rec.Request(string(r.op), "error")
			return nil, fmt.Errorf("resolving form key: %w", err)
		}
		c.formkey = key
		c.headers.Set("Poe-Formkey", key)
	}

	if r.rateHint > 0 {
		c.logger.Warn().Int("queue", r.rateHint).Msg("waiting before send to avoid rate limit")
		delay := time.Duration(2000+rand.Intn(1001)) * time.Millisecond
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	payload := gqlPayload{QueryName: r.op, Variables: r.vars}
	if payload.Variables == nil {
		payload.Variables = map[string]any{}
	}
	payload.Extensions.Hash = r.op.Hash()
	serialized, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializing payload: %w", err)
	}
	tag := signer.Tag(string(serialized), key)

	path := r.path
	if path == "" {
		path = queries.PathGql
	}

	var (
		body        io.Reader
		contentType string
	)
	if len(r.files) > 0 {
		body, contentType, err = multipartBody(serialized, r.files, r.knowledge)
		if err != nil {
			return nil, err
		}
	} else {
		body = bytes.NewReader(serialized)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.applyHeaders(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("poe-tag-id", tag)

	resp, err := c.http.Do(req)
	if err != nil {
		c.rec.Request(string(r.op), "error")
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.rec.Request(string(r.op), "error")
		return nil, fmt.Errorf("reading response: %w", err)
	}

	data := gjson.ParseBytes(raw)
	if !data.Get("success").Bool() || !data.Get("data").Exists() {
		if msg := data.Get("errors.0.message"); msg.Exists() {
			c.rec.Request(string(r.op), "error")
			if msg.String() == "Server Error" {
				return nil, &perrors.ServerError{Raw: raw}
			}
			return nil, &perrors.APIError{Message: msg.String()}
		}
	}

	c.rec.Request(string(r.op), "ok")
	return raw, nil
}

// multipartBody builds the upload form: the serialized payload under
// queryInfo, then either one fixed "file" part (knowledge mode) or parts
// named file1..fileN.
func multipartBody(payload []byte, fs []files.File, knowledge bool) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("queryInfo", string(payload)); err != nil {
		return nil, "", fmt.Errorf("writing queryInfo field: %w", err)
	}

	writePart := func(name string, f files.File) error {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, f.Name))
		h.Set("Content-Type", f.MIME)
		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("creating part %s: %w", name, err)
		}
		_, err = part.Write(f.Data)
		return err
	}

	if knowledge {
		if err := writePart("file", fs[0]); err != nil {
			return nil, "", err
		}
	} else {
		for i, f := range fs {
			if err := writePart(fmt.Sprintf("file%d", i+1), f); err != nil {
				return nil, "", err
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) applyHeaders(req *http.Request) {
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
}

// enqueue appends an event to its conversation's queue, preserving arrival
// order.
func (c *Client) enqueue(ev push.Event) {
	c.queues[ev.ChatID] = append(c.queues[ev.ChatID], ev)
}

// dequeue pops the oldest pending event for a conversation.
func (c *Client) dequeue(chatID int64) (push.Event, bool) {
	q := c.queues[chatID]
	if len(q) == 0 {
		return push.Event{}, false
	}
	ev := q[0]
	c.queues[chatID] = q[1:]
	return ev, true
}

const nonceCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// nonce returns a random alphanumeric client nonce.
func nonce(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = nonceCharset[rand.Intn(len(nonceCharset))]
	}
	return string(b)
}
