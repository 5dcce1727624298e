package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/campusdesk/campusdesk/pkg/serrors"
)

// Client is the JSON transport behind every roster source. One attempt per
// call; failures come back as serrors.APIError carrying the server's
// message and optional field errors.
type Client struct {
	http *resty.Client
	log  *logrus.Entry
}

// errorBody is the API's failure envelope.
type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func New(baseURL, token string, timeout time.Duration, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if token != "" {
		r.SetAuthToken(token)
	}
	return &Client{
		http: r,
		log:  log.WithField("component", "apiclient"),
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	var failure errorBody
	req.SetError(&failure)

	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Warn("api request failed")
		return &serrors.APIError{Message: "the server could not be reached"}
	}
	if resp.IsError() {
		msg := failure.Message
		if msg == "" {
			msg = "the server rejected the request (" + resp.Status() + ")"
		}
		c.log.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode(),
		}).Warn("api request rejected")
		return &serrors.APIError{
			Status:  resp.StatusCode(),
			Message: msg,
			Fields:  failure.Errors,
		}
	}
	return nil
}
