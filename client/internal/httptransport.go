package internal

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"

	"golang.org/x/net/http2"

	"github.com/observiq/opamp-client-go/client/types"
	sharedinternal "github.com/observiq/opamp-client-go/internal"
)

const (
	headerContentType     = "Content-Type"
	headerContentEncoding = "Content-Encoding"
	headerAcceptEncoding  = "Accept-Encoding"
	encodingGzip          = "gzip"

	// Upper bound of a reply body.
	maxReplySize = 64 << 20
)

// HTTPTransportSettings configures an HTTPTransport.
type HTTPTransportSettings struct {
	URL               string
	Client            types.HTTPClient
	ContentType       string
	Header            http.Header
	HeaderFunc        func(http.Header) http.Header
	EnableCompression bool
}

// HTTPTransport sends each message as the body of a POST request and returns the
// response body as the reply.
type HTTPTransport struct {
	url               string
	client            types.HTTPClient
	contentType       string
	header            http.Header
	headerFunc        func(http.Header) http.Header
	enableCompression bool
}

var _ types.Transport = (*HTTPTransport)(nil)

func NewHTTPTransport(settings HTTPTransportSettings) *HTTPTransport {
	return &HTTPTransport{
		url:               settings.URL,
		client:            settings.Client,
		contentType:       settings.ContentType,
		header:            settings.Header,
		headerFunc:        settings.HeaderFunc,
		enableCompression: settings.EnableCompression,
	}
}

// NewHTTPClient returns the default HTTP executor. With enableHTTP2 the client speaks
// HTTP/2 only, in cleartext (h2c) when cleartext is set.
func NewHTTPClient(tlsConfig *tls.Config, enableHTTP2, cleartext bool) *http.Client {
	if enableHTTP2 {
		transport := &http2.Transport{TLSClientConfig: tlsConfig}
		if cleartext {
			transport.AllowHTTP = true
			transport.DialTLSContext = func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			}
		}
		return &http.Client{Transport: transport}
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return &http.Client{Transport: transport}
}

func (t *HTTPTransport) Send(ctx context.Context, payload []byte) ([]byte, error) {
	body := payload
	if t.enableCompression {
		var err error
		if body, err = compress(payload); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}
	header := t.header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(headerContentType, t.contentType)
	if t.enableCompression {
		header.Set(headerContentEncoding, encodingGzip)
		header.Set(headerAcceptEncoding, encodingGzip)
	}
	if t.headerFunc != nil {
		header = t.headerFunc(header)
	}
	req.Header = header

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReplySize))
		return nil, &types.TransportError{
			StatusCode: resp.StatusCode,
			RetryAfter: sharedinternal.ExtractRetryAfterHeader(resp).Duration,
		}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get(headerContentEncoding) == encodingGzip {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("cannot decompress reply: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	reply, err := io.ReadAll(io.LimitReader(reader, maxReplySize))
	if err != nil {
		return nil, fmt.Errorf("cannot read reply: %w", err)
	}
	return reply, nil
}

func compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return nil, fmt.Errorf("cannot compress request: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("cannot compress request: %w", err)
	}
	return buf.Bytes(), nil
}
