package azure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chapsvision-dev/provider-identity/internal/config"
	"github.com/Chapsvision-dev/provider-identity/internal/store"
	"github.com/Chapsvision-dev/provider-identity/internal/util"
)

type seenRequest struct {
	method, path, query string
}

func fakeBlobHead(t *testing.T, size, sha string, status int) (*httptest.Server, *seenRequest) {
	t.Helper()
	seen := &seenRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.method, seen.path, seen.query = r.Method, r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Length", size)
		if sha != "" {
			w.Header().Set("x-ms-meta-sha256", sha)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func sasStore(srv *httptest.Server) *Store {
	return &Store{
		container:  "streams",
		info:       clientInfo{endpoint: srv.URL + "/", sas: "sv=2024&sig=abc", viaSAS: true},
		httpClient: srv.Client(),
	}
}

func TestHeadSizeAndSHA(t *testing.T) {
	srv, seen := fakeBlobHead(t, "42", "deadbeef", http.StatusOK)
	s := sasStore(srv)

	size, sha, err := s.headSizeAndSHA(context.Background(), "/providers/ExampleProvider.ser")
	require.NoError(t, err)
	assert.Equal(t, int64(42), size)
	assert.Equal(t, "deadbeef", sha)
	assert.Equal(t, http.MethodHead, seen.method)
	assert.Equal(t, "/streams/providers/ExampleProvider.ser", seen.path)
	assert.Equal(t, "sv=2024&sig=abc", seen.query)
}

func TestHeadErrorDoesNotLeakSAS(t *testing.T) {
	srv, _ := fakeBlobHead(t, "0", "", http.StatusForbidden)
	_, _, err := sasStore(srv).headSizeAndSHA(context.Background(), "k")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "sig=")
}

func TestValidateByHead(t *testing.T) {
	data := []byte("provider stream")
	sum := util.SHA256(data)

	srv, _ := fakeBlobHead(t, "15", sum, http.StatusOK)
	assert.NoError(t, sasStore(srv).validateByHead(context.Background(), "k", int64(len(data)), sum))

	srv2, _ := fakeBlobHead(t, "15", "other", http.StatusOK)
	assert.ErrorContains(t, sasStore(srv2).validateByHead(context.Background(), "k", int64(len(data)), sum), "sha256 mismatch")
}

func TestCheckRemote(t *testing.T) {
	assert.NoError(t, checkRemote(3, 3, "a", "a"))
	assert.ErrorContains(t, checkRemote(3, 4, "a", "a"), "size mismatch")
	assert.ErrorContains(t, checkRemote(3, 3, "a", ""), "missing metadata")
	assert.ErrorContains(t, checkRemote(3, 3, "a", "b"), "sha256 mismatch")
}

func TestIsAzRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&azcore.ResponseError{StatusCode: http.StatusServiceUnavailable}, true},
		{&azcore.ResponseError{StatusCode: http.StatusTooManyRequests}, true},
		{&azcore.ResponseError{StatusCode: http.StatusRequestTimeout}, true},
		{&azcore.ResponseError{StatusCode: http.StatusConflict, ErrorCode: "ServerBusy"}, true},
		{&azcore.ResponseError{StatusCode: http.StatusForbidden}, false},
		{store.ErrNotFound, false},
		{errors.New("boom"), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, isAzRetryable(c.err), "%v", c.err)
	}
}

func TestMetadataValueIgnoresCase(t *testing.T) {
	md := map[string]*string{"Sha256": to.Ptr("abc"), "other": nil}
	assert.Equal(t, "abc", metadataValue(md, metaSHA256))
	assert.Equal(t, "", metadataValue(md, "other"))
	assert.Equal(t, "", metadataValue(nil, metaSHA256))
}

func TestEndpointFor(t *testing.T) {
	assert.Equal(t, "https://acct.blob.core.windows.net/", endpointFor(config.AzureConfig{Account: "acct"}))
	assert.Equal(t, "http://127.0.0.1:10000/devstore/", endpointFor(config.AzureConfig{Endpoint: "http://127.0.0.1:10000/devstore"}))
}

func TestFactoryWithSAS(t *testing.T) {
	cfg := config.Config{Azure: config.AzureConfig{
		Account:   "acct",
		Container: "streams",
		SASToken:  "?sv=2024&sig=abc",
	}}
	st, err := store.New("azure", cfg)
	require.NoError(t, err)
	assert.Equal(t, "azure", st.Name())

	s := st.(*Store)
	assert.True(t, s.info.viaSAS)
	assert.Equal(t, "sv=2024&sig=abc", s.info.sas)
	assert.Equal(t, "streams", s.container)

	_, err = store.New("azure", 42)
	assert.ErrorContains(t, err, "invalid config type")
}
