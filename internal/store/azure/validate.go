package azure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/Chapsvision-dev/provider-identity/internal/retry"
)

// ensureContainer checks access using a minimal list (SAS sr=c cannot create containers).
func (s *Store) ensureContainer(ctx context.Context) error {
	attempt := 0
	ensureOnce := func(ctx context.Context) error {
		attempt++
		pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
			MaxResults: to.Ptr(int32(1)),
		})
		if !pager.More() {
			return nil
		}
		_, err := pager.NextPage(ctx)
		if err == nil {
			return nil
		}
		var re *azcore.ResponseError
		if errors.As(err, &re) {
			switch re.ErrorCode {
			case string(bloberror.ContainerNotFound):
				return fmt.Errorf("container %q not found: create it first (container SAS cannot create containers)", s.container)
			case string(bloberror.AuthorizationFailure),
				string(bloberror.AuthorizationPermissionMismatch),
				string(bloberror.AuthenticationFailed):
				return fmt.Errorf("not authorized for container %q; ensure a container SAS with at least rwl", s.container)
			}
		}
		log.Debug().Err(err).Str("action", "azure_container_check").Str("container", s.container).
			Int("attempt", attempt).Msg("attempt failed")
		return err
	}
	if err := retry.Do(ctx, s.ro, isAzRetryable, ensureOnce); err != nil {
		return err
	}
	log.Debug().Str("action", "azure_container_check").Str("container", s.container).
		Int("attempts", attempt).Msg("container access OK")
	return nil
}

// validateByHead compares size and sha256 metadata of the uploaded blob.
func (s *Store) validateByHead(ctx context.Context, key string, size int64, sum string) error {
	start := time.Now()
	attempt := 0
	headOnce := func(ctx context.Context) error {
		attempt++
		remoteSize, remoteSHA, err := s.headSizeAndSHA(ctx, key)
		if err != nil {
			return err
		}
		return checkRemote(size, remoteSize, sum, remoteSHA)
	}
	if err := retry.Do(ctx, s.ro, isAzRetryable, headOnce); err != nil {
		return fmt.Errorf("validate (head): %w", err)
	}
	log.Info().Str("action", "azure_head").Str("container", s.container).Str("key", key).
		Int("attempts", attempt).Dur("elapsed_ms", time.Since(start)).Msg("validation OK (sha256 & size)")
	return nil
}

func checkRemote(size, remoteSize int64, sum, remoteSHA string) error {
	if remoteSize != size {
		return fmt.Errorf("size mismatch: local=%d, remote=%d", size, remoteSize)
	}
	if remoteSHA == "" {
		return fmt.Errorf("missing metadata: sha256")
	}
	if remoteSHA != sum {
		return fmt.Errorf("sha256 mismatch: local=%s, remote=%s", sum, remoteSHA)
	}
	return nil
}

// validateByList finds the exact blob by prefix listing and compares its size.
func (s *Store) validateByList(ctx context.Context, key string, size int64) error {
	start := time.Now()
	attempt := 0
	listOnce := func(ctx context.Context) error {
		attempt++
		pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
			Prefix:     to.Ptr(key),
			MaxResults: to.Ptr(int32(1)),
		})
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, it := range page.Segment.BlobItems {
				if it.Name == nil || *it.Name != key {
					continue
				}
				if it.Properties == nil || it.Properties.ContentLength == nil {
					return nil
				}
				if remote := *it.Properties.ContentLength; remote != size {
					return fmt.Errorf("size mismatch: local=%d, remote=%d", size, remote)
				}
				return nil
			}
		}
		return fmt.Errorf("uploaded blob not found at %q", key)
	}
	if err := retry.Do(ctx, s.ro, isAzRetryable, listOnce); err != nil {
		return fmt.Errorf("validate (list): %w", err)
	}
	log.Info().Str("action", "azure_list_validate").Str("container", s.container).Str("key", key).
		Int("attempts", attempt).Dur("elapsed_ms", time.Since(start)).Msg("validation OK (size)")
	return nil
}

// isAzRetryable: retry rules for Azure (timeout, 5xx, 429, 408, ServerBusy).
func isAzRetryable(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var re *azcore.ResponseError
	if errors.As(err, &re) {
		if re.StatusCode == http.StatusTooManyRequests || re.StatusCode == http.StatusRequestTimeout {
			return true
		}
		if re.StatusCode >= 500 && re.StatusCode <= 599 {
			return true
		}
		if re.ErrorCode == string(bloberror.ServerBusy) {
			return true
		}
	}
	return false
}
