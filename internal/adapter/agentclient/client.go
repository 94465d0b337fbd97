// Package agentclient provides the HTTP client for invoking remote workflow agents.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
)

// Client is an HTTP client for invoking agent webhooks.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a new agent client. baseURL is the workflow gateway the
// agent endpoint paths are joined to; timeout bounds each invocation.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Invoke posts the uploaded file to the agent's endpoint and classifies the
// result. Failures are returned as data, never as an error: the outcome is
// either a raw JSON body or a typed failure. The client performs no retries
// and never mutates its inputs; the context deadline is the only cancellation
// mechanism once a call is issued.
func (c *Client) Invoke(ctx context.Context, agent domain.AgentDefinition, file domain.UploadedFile) domain.InvocationOutcome {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// The gateway expects a single multipart part named "file" with a
	// text/csv content type, whatever the actual file type is.
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Filename)))
	header.Set("Content-Type", "text/csv")
	part, err := writer.CreatePart(header)
	if err != nil {
		return failure(domain.FailureConnectionRefused, 0, fmt.Sprintf("failed to build request: %v", err))
	}
	if _, err := part.Write(file.Content); err != nil {
		return failure(domain.FailureConnectionRefused, 0, fmt.Sprintf("failed to build request: %v", err))
	}
	if err := writer.Close(); err != nil {
		return failure(domain.FailureConnectionRefused, 0, fmt.Sprintf("failed to build request: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + agent.Endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return failure(domain.FailureConnectionRefused, 0, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(domain.FailureHTTPError, resp.StatusCode,
			fmt.Sprintf("agent returned status %d: %s", resp.StatusCode, snippet(respBody)))
	}

	// The envelope shape is the normalizer's concern; the client only
	// guarantees the body is valid JSON.
	if !json.Valid(respBody) {
		return failure(domain.FailureMalformedBody, 0, "response body is not valid JSON")
	}

	return domain.InvocationOutcome{RawBody: json.RawMessage(respBody)}
}

// classifyTransportError maps a transport-level error onto the failure
// taxonomy: deadline and net timeouts become timeout, everything else
// (refused, reset, DNS) becomes connection_refused.
func classifyTransportError(err error) domain.InvocationOutcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return failure(domain.FailureTimeout, 0, "invocation timed out")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return failure(domain.FailureTimeout, 0, "invocation timed out")
	}
	return failure(domain.FailureConnectionRefused, 0, err.Error())
}

func failure(kind domain.FailureKind, statusCode int, detail string) domain.InvocationOutcome {
	return domain.InvocationOutcome{
		Failure: &domain.InvocationFailure{
			Kind:       kind,
			StatusCode: statusCode,
			Detail:     detail,
		},
	}
}

// snippet trims a response body down to a short single-line detail string.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
