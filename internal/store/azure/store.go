package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/Chapsvision-dev/provider-identity/internal/retry"
	"github.com/Chapsvision-dev/provider-identity/internal/store"
	"github.com/Chapsvision-dev/provider-identity/internal/util"
)

const metaSHA256 = "sha256"

// Store keeps provider streams as block blobs in one container.
type Store struct {
	client     *azblob.Client
	container  string
	info       clientInfo
	ro         retry.Options
	httpClient *http.Client // HEAD validation; nil uses a 15s-timeout client
}

func (s *Store) Name() string { return "azure" }

// Put uploads the stream with its sha256 as metadata and validates it
// (HEAD with SAS, list otherwise).
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := s.ensureContainer(ctx); err != nil {
		return fmt.Errorf("ensure container: %w", err)
	}
	key = normalizeKey(key)
	sum := util.SHA256(data)

	upStart := time.Now()
	upAttempt := 0
	uploadOnce := func(ctx context.Context) error {
		upAttempt++
		log.Debug().Str("action", "azure_upload").Str("container", s.container).Str("key", key).
			Int("attempt", upAttempt).Msg("starting attempt")

		_, err := s.client.UploadBuffer(ctx, s.container, key, data, &azblob.UploadBufferOptions{
			Metadata: map[string]*string{metaSHA256: to.Ptr(sum)},
		})
		if err != nil {
			log.Debug().Err(err).Str("action", "azure_upload").Str("container", s.container).Str("key", key).
				Int("attempt", upAttempt).Msg("attempt failed")
			return err
		}
		return nil
	}
	if err := retry.Do(ctx, s.ro, isAzRetryable, uploadOnce); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	log.Info().Str("action", "azure_upload").Str("container", s.container).Str("key", key).
		Int("attempts", upAttempt).Int("bytes", len(data)).Dur("elapsed_ms", time.Since(upStart)).Msg("upload OK")

	if s.info.viaSAS {
		return s.validateByHead(ctx, key, int64(len(data)), sum)
	}
	return s.validateByList(ctx, key, int64(len(data)))
}

// Get downloads the stream and checks it against the sha256 metadata when present.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	key = normalizeKey(key)

	dlStart := time.Now()
	dlAttempt := 0
	var data []byte
	var recorded string
	downloadOnce := func(ctx context.Context) error {
		dlAttempt++
		log.Debug().Str("action", "azure_download").Str("container", s.container).Str("key", key).
			Int("attempt", dlAttempt).Msg("starting attempt")

		resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
		if err != nil {
			if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, resp.Body); err != nil {
			log.Debug().Err(err).Str("action", "azure_download").Str("key", key).
				Int("attempt", dlAttempt).Msg("stream copy error")
			return err
		}
		data = buf.Bytes()
		recorded = metadataValue(resp.Metadata, metaSHA256)
		return nil
	}
	if err := retry.Do(ctx, s.ro, isAzRetryable, downloadOnce); err != nil {
		return nil, err
	}

	if recorded != "" {
		if got := util.SHA256(data); got != recorded {
			return nil, fmt.Errorf("sha256 mismatch: local=%s, remote=%s", got, recorded)
		}
	}
	log.Info().Str("action", "azure_download").Str("container", s.container).Str("key", key).
		Int("attempts", dlAttempt).Int("bytes", len(data)).Dur("elapsed_ms", time.Since(dlStart)).Msg("download OK")
	return data, nil
}

// metadataValue looks up k ignoring case; the service may canonicalise metadata names.
func metadataValue(md map[string]*string, k string) string {
	for name, v := range md {
		if strings.EqualFold(name, k) && v != nil {
			return *v
		}
	}
	return ""
}

func normalizeKey(k string) string {
	return strings.TrimPrefix(strings.TrimSpace(k), "/")
}
