package azure

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/Chapsvision-dev/provider-identity/internal/config"
	"github.com/Chapsvision-dev/provider-identity/internal/store"
)

// clientInfo is what the store needs besides the SDK client: the endpoint and
// raw SAS let it validate uploads with a plain HEAD request.
type clientInfo struct {
	endpoint string
	sas      string
	viaSAS   bool
}

func endpointFor(c config.AzureConfig) string {
	ep := strings.TrimSpace(c.Endpoint)
	if ep == "" {
		ep = fmt.Sprintf("https://%s.blob.core.windows.net/", c.Account)
	}
	if !strings.HasSuffix(ep, "/") {
		ep += "/"
	}
	return ep
}

// newClientFromConfig picks credentials by priority: 1) SAS  2) Service Principal  3) DefaultAzureCredential.
func newClientFromConfig(c config.AzureConfig) (*azblob.Client, clientInfo, error) {
	info := clientInfo{endpoint: endpointFor(c)}

	if sasRaw := strings.TrimSpace(c.SASToken); sasRaw != "" {
		info.sas = strings.TrimPrefix(sasRaw, "?")
		info.viaSAS = true
		cl, err := azblob.NewClientWithNoCredential(info.endpoint+"?"+info.sas, nil)
		return cl, info, err
	}

	if c.ClientID != "" && c.ClientSecret != "" && c.TenantID != "" {
		cred, err := azidentity.NewClientSecretCredential(c.TenantID, c.ClientID, c.ClientSecret, nil)
		if err != nil {
			return nil, info, err
		}
		cl, err := azblob.NewClient(info.endpoint, cred, nil)
		return cl, info, err
	}

	// Managed Identity / workload identity / az CLI
	defCred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, info, err
	}
	cl, err := azblob.NewClient(info.endpoint, defCred, nil)
	return cl, info, err
}

func init() {
	store.Register("azure", func(cfg any) (store.Store, error) {
		c, ok := cfg.(config.Config)
		if !ok {
			return nil, fmt.Errorf("azure: invalid config type")
		}
		client, info, err := newClientFromConfig(c.Azure)
		if err != nil {
			return nil, err
		}
		return &Store{
			client:    client,
			container: c.Azure.Container,
			info:      info,
			ro:        c.RetryOptions(),
		}, nil
	})
}
