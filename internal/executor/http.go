package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/sirupsen/logrus"
)

// ErrUnexpectedStatus is returned when the response status is not 2xx
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Http is an implementation of Executor that makes HTTP Requests.
// When no Body is configured the element is sent as JSON.
type Http struct {
	logger logrus.FieldLogger
	client nethttp.Client

	LogResponse bool `yaml:"log"`

	Body    string            `yaml:"body"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
	URL     string            `yaml:"url"`
	Timeout int               `yaml:"timeout"`
}

// NewHttp creates an Http executor that POSTs with a 30s timeout
func NewHttp(logger logrus.FieldLogger) *Http {
	return &Http{
		logger:  logger,
		Method:  nethttp.MethodPost,
		Timeout: 30,
	}
}

func (http *Http) body(el bridge.Element) (io.Reader, error) {
	if http.Body != "" {
		return bytes.NewBufferString(http.Body), nil
	}

	payload, err := json.Marshal(el)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(payload), nil
}

func (http *Http) Execute(ctx context.Context, el bridge.Element) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(http.Timeout)*time.Second)
	defer cancel()

	body, err := http.body(el)
	if err != nil {
		return err
	}

	request, err := nethttp.NewRequestWithContext(ctx, http.Method, http.URL, body)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	for k, v := range http.Headers {
		request.Header.Set(k, v)
	}

	response, err := http.client.Do(request)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeoutExceeded
		}
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, response.StatusCode)
	}

	if http.LogResponse {
		var body any
		if err := json.NewDecoder(response.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		http.logger.
			WithField("status_code", response.StatusCode).
			WithField("body", body).
			Info("HTTP Response")
	}

	return nil
}
