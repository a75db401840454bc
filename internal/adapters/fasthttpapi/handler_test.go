package fasthttpapi_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"httpblock/internal/adapters/fasthttpapi"
	"httpblock/internal/config"
	"httpblock/internal/core/application"
	"httpblock/internal/core/domain"
	"httpblock/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectedBody(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.Repeat(domain.Block+"\n", count)
}

func TestHandleBlocks_GET(t *testing.T) {
	client := startServer(t, config.Default())

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantBody string
	}{
		{name: "Explicit count", query: "?blocks=3", wantCode: fasthttp.StatusOK, wantBody: expectedBody(3)},
		{name: "Omitted uses default", query: "", wantCode: fasthttp.StatusOK, wantBody: expectedBody(1000)},
		{name: "Blank uses default", query: "?blocks=", wantCode: fasthttp.StatusOK, wantBody: expectedBody(1000)},
		{name: "Zero", query: "?blocks=0", wantCode: fasthttp.StatusOK, wantBody: ""},
		{name: "Negative", query: "?blocks=-5", wantCode: fasthttp.StatusOK, wantBody: ""},
		{name: "First non-blank wins", query: "?blocks=&blocks=2&blocks=9", wantCode: fasthttp.StatusOK, wantBody: expectedBody(2)},
		{name: "Negative beyond int64", query: "?blocks=-99999999999999999999", wantCode: fasthttp.StatusOK, wantBody: ""},
		{name: "Invalid", query: "?blocks=abc", wantCode: fasthttp.StatusBadRequest, wantBody: "Invalid block value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := fasthttp.AcquireRequest()
			defer fasthttp.ReleaseRequest(req)
			resp := fasthttp.AcquireResponse()
			defer fasthttp.ReleaseResponse(resp)

			req.SetRequestURI("http://blocks.test/" + tt.query)
			require.NoError(t, client.Do(req, resp))

			assert.Equal(t, tt.wantCode, resp.StatusCode())
			assert.Equal(t, "text/plain", string(resp.Header.ContentType()))
			assert.Equal(t, tt.wantBody, string(resp.Body()))
		})
	}
}

func TestHandleBlocks_POSTForm(t *testing.T) {
	client := startServer(t, config.Default())

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI("http://blocks.test/?blocks=7")
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString("blocks=2")
	require.NoError(t, client.Do(req, resp))

	assert.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.Equal(t, expectedBody(2), string(resp.Body()), "body value takes precedence over query")
}

func TestHandleBlocks_HEAD(t *testing.T) {
	client := startServer(t, config.Default())

	for count, want := range map[string]int{"5": 5 * 1025, "0": 0, "-5": 0} {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()

		req.Header.SetMethod(fasthttp.MethodHead)
		req.SetRequestURI("http://blocks.test/?blocks=" + count)
		require.NoError(t, client.Do(req, resp))

		assert.Equal(t, fasthttp.StatusOK, resp.StatusCode(), "blocks=%s", count)
		assert.Equal(t, want, resp.Header.ContentLength(), "blocks=%s", count)
		assert.Empty(t, resp.Body(), "blocks=%s", count)

		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}
}

func TestHandleBlocks_MethodNotAllowed(t *testing.T) {
	client := startServer(t, config.Default())

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodPut)
	req.SetRequestURI("http://blocks.test/?blocks=1")
	require.NoError(t, client.Do(req, resp))

	assert.Equal(t, fasthttp.StatusMethodNotAllowed, resp.StatusCode())
	assert.Equal(t, "GET, POST", string(resp.Header.Peek(fasthttp.HeaderAllow)))
}

func TestHandleBlocks_CustomPath(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Path = "/blocks"
	client := startServer(t, cfg)

	code, body, err := client.Get(nil, "http://blocks.test/blocks?blocks=1")
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.Equal(t, expectedBody(1), string(body))

	code, _, err = client.Get(nil, "http://blocks.test/other")
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusNotFound, code)
}

func TestServer_Compress(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Compress = true
	client := startServer(t, cfg)

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://blocks.test/?blocks=8")
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")
	require.NoError(t, client.Do(req, resp))

	require.Equal(t, "gzip", string(resp.Header.ContentEncoding()))
	body, err := resp.BodyGunzip()
	require.NoError(t, err)
	assert.Equal(t, expectedBody(8), string(body))
}

// startServer serves cfg over an in-memory listener and returns a client dialing it.
func startServer(t *testing.T, cfg *config.Config) *fasthttp.Client {
	t.Helper()

	appLogger := logger.NewDiscardLogger()
	generator, err := application.NewBlockService(appLogger, cfg.Blocks)
	require.NoError(t, err)
	server, err := fasthttpapi.NewServer(generator, appLogger, cfg)
	require.NoError(t, err)

	ln := fasthttputil.NewInmemoryListener()
	go func() {
		_ = server.Serve(ln)
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
		_ = ln.Close()
	})

	return &fasthttp.Client{
		Dial: func(_ string) (net.Conn, error) {
			return ln.Dial()
		},
	}
}
