package httputil

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

const defaultTimeout = 60 * time.Second

// StatusError occurs if an HTTP response has an unexpected status code.
type StatusError struct {
	Method       string
	URL          string
	Status       int
	Header       http.Header
	ResponseDump string
}

// NewStatusError returns a new StatusError.
func NewStatusError(resp *http.Response) StatusError {
	defer resp.Body.Close()
	respBytes, err := ioutil.ReadAll(resp.Body)
	respDump := string(respBytes)
	if err != nil {
		respDump = fmt.Sprintf("failed to dump response: %s", err)
	}
	return StatusError{
		Method:       resp.Request.Method,
		URL:          resp.Request.URL.String(),
		Status:       resp.StatusCode,
		Header:       resp.Header,
		ResponseDump: respDump,
	}
}

func (e StatusError) Error() string {
	if e.ResponseDump == "" {
		return fmt.Sprintf("%s %s %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s %d: %s", e.Method, e.URL, e.Status, e.ResponseDump)
}

// IsStatus returns true if err is a StatusError of the given status.
func IsStatus(err error, status int) bool {
	statusErr, ok := err.(StatusError)
	return ok && statusErr.Status == status
}

// IsNotFound returns true if err is a 404 StatusError.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// NetworkError occurs on any Send error which occurred while attempting to
// send the HTTP request, e.g. the given host is unresponsive.
type NetworkError struct {
	err error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network error: %s", e.err)
}

// IsNetworkError returns true if err is a NetworkError.
func IsNetworkError(err error) bool {
	_, ok := err.(NetworkError)
	return ok
}

type sendOptions struct {
	body          io.Reader
	timeout       time.Duration
	acceptedCodes map[int]bool
	headers       map[string]string
	retry         retryOptions
	transport     http.RoundTripper
	ctx           context.Context
}

// SendOption allows overriding defaults for the Send function.
type SendOption struct {
	f func(*sendOptions)
}

func defaultSendOptions() sendOptions {
	return sendOptions{
		body:          nil,
		timeout:       defaultTimeout,
		acceptedCodes: map[int]bool{http.StatusOK: true},
		headers:       map[string]string{},
		retry:         retryOptions{max: 1},
		transport:     nil, // Use HTTP default.
		ctx:           context.Background(),
	}
}

// SendNoop returns a no-op option.
func SendNoop() SendOption {
	return SendOption{func(opts *sendOptions) {}}
}

// SendBody specifies a body for http request.
func SendBody(body io.Reader) SendOption {
	return SendOption{func(opts *sendOptions) { opts.body = body }}
}

// SendTimeout specifies timeout for http request.
func SendTimeout(timeout time.Duration) SendOption {
	return SendOption{func(opts *sendOptions) { opts.timeout = timeout }}
}

// SendHeaders specifies headers for http request.
func SendHeaders(headers map[string]string) SendOption {
	return SendOption{func(opts *sendOptions) { opts.headers = headers }}
}

// SendAcceptedCodes specifies accepted codes for http request.
func SendAcceptedCodes(codes ...int) SendOption {
	m := make(map[int]bool)
	for _, c := range codes {
		m[c] = true
	}
	return SendOption{func(opts *sendOptions) { opts.acceptedCodes = m }}
}

// SendContext specifies a context for http request.
func SendContext(ctx context.Context) SendOption {
	return SendOption{func(opts *sendOptions) { opts.ctx = ctx }}
}

// SendTransport specifies a transport for http request.
func SendTransport(transport http.RoundTripper) SendOption {
	return SendOption{func(opts *sendOptions) { opts.transport = transport }}
}

// SendTLSTransport returns an option which uses a transport that skips server
// certificate verification. Storage nodes serve self-signed certificates, so
// clients cannot verify them against a CA.
func SendTLSTransport() SendOption {
	return SendTransport(&http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	})
}

type retryOptions struct {
	backoff backoff.BackOff
	max     int
	codes   map[int]bool
}

// RetryOption allows overriding defaults for the SendRetry option.
type RetryOption struct {
	f func(*retryOptions)
}

// RetryBackoff specifies a backoff policy to use between retries.
func RetryBackoff(b backoff.BackOff) RetryOption {
	return RetryOption{func(opts *retryOptions) { opts.backoff = b }}
}

// RetryMax sets the max number of retries.
func RetryMax(max int) RetryOption {
	return RetryOption{func(opts *retryOptions) { opts.max = max }}
}

// RetryCodes adds status codes which should be retried.
func RetryCodes(codes ...int) RetryOption {
	return RetryOption{func(opts *retryOptions) {
		for _, c := range codes {
			opts.codes[c] = true
		}
	}}
}

// SendRetry will we retry the request on network / 5XX errors.
func SendRetry(options ...RetryOption) SendOption {
	retry := retryOptions{
		backoff: backoff.WithMaxRetries(
			backoff.NewConstantBackOff(250*time.Millisecond), 2),
		max: 3,
		codes: map[int]bool{
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
	}
	for _, o := range options {
		o.f(&retry)
	}
	return SendOption{func(opts *sendOptions) { opts.retry = retry }}
}

// Send sends an HTTP request. May return NetworkError or StatusError (see above).
func Send(method, url string, options ...SendOption) (*http.Response, error) {
	opts := defaultSendOptions()
	for _, o := range options {
		o.f(&opts)
	}

	req, err := newRequest(method, url, opts)
	if err != nil {
		return nil, err
	}

	client := http.Client{
		Timeout:   opts.timeout,
		Transport: opts.transport,
	}

	var resp *http.Response
	for attempt := 0; attempt < opts.retry.max; attempt++ {
		resp, err = client.Do(req)
		// Retry without tls. During migration there would be a time when the
		// tls is enabled on client but not on server.
		if err != nil && strings.Contains(err.Error(), "remote error: tls: unknown certificate authority") {
			resp, err = fallbackToHTTP(client, method, url, opts)
		}
		if err != nil || shouldRetry(resp, opts) {
			if attempt+1 < opts.retry.max {
				if err == nil {
					resp.Body.Close()
				}
				d := opts.retry.backoff.NextBackOff()
				if d == backoff.Stop {
					break
				}
				time.Sleep(d)
				req, err = newRequest(method, url, opts)
				if err != nil {
					return nil, err
				}
				continue
			}
		}
		break
	}
	if err != nil {
		return nil, NetworkError{err}
	}
	if !opts.acceptedCodes[resp.StatusCode] {
		return nil, NewStatusError(resp)
	}
	return resp, nil
}

// Get sends a GET http request.
func Get(url string, options ...SendOption) (*http.Response, error) {
	return Send("GET", url, options...)
}

// Post sends a POST http request.
func Post(url string, options ...SendOption) (*http.Response, error) {
	return Send("POST", url, options...)
}

// PostJSON sends a POST http request with a JSON body.
func PostJSON(url string, body []byte, options ...SendOption) (*http.Response, error) {
	options = append(options,
		SendBody(bytes.NewReader(body)),
		SendHeaders(map[string]string{"Content-Type": "application/json"}))
	return Post(url, options...)
}

func newRequest(method, url string, opts sendOptions) (*http.Request, error) {
	body := opts.body
	if body == nil {
		body = bytes.NewReader(nil)
	}
	// Rewind the body so retried requests resend it from the start.
	if s, ok := body.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek body: %s", err)
		}
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %s", err)
	}
	req = req.WithContext(opts.ctx)
	for key, val := range opts.headers {
		req.Header.Set(key, val)
	}
	return req, nil
}

func fallbackToHTTP(
	client http.Client, method, url string, opts sendOptions) (*http.Response, error) {

	req, err := newRequest(method, strings.Replace(url, "https://", "http://", 1), opts)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

func shouldRetry(resp *http.Response, opts sendOptions) bool {
	return opts.retry.codes[resp.StatusCode]
}
