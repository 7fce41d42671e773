package client

import (
	"sync"

	"github.com/snipbox/snipbox/cmd/snipctl/internal/auth"
	"github.com/snipbox/snipbox/pkg/sdk"
)

// Provider yields the SDK client backed by the session file. Everything is
// built lazily so commands that never talk to the server do not touch disk.
type Provider struct {
	serverURL string
	navigator sdk.Navigator

	storeOnce sync.Once
	store     sdk.SessionStore
	storeErr  error

	sdkOnce   sync.Once
	sdkClient *sdk.Client
}

// NewProvider constructs a new Provider bound to the given server URL.
func NewProvider(serverURL string) *Provider {
	return &Provider{serverURL: serverURL, navigator: TerminalNavigator{}}
}

// SetStore replaces the session file with store. Must be called before
// the first Store or SDKClient call.
func (p *Provider) SetStore(store sdk.SessionStore) {
	p.storeOnce.Do(func() {
		p.store = store
	})
}

// SetNavigator replaces the terminal navigator. Must be called before the
// first SDKClient call.
func (p *Provider) SetNavigator(navigator sdk.Navigator) {
	p.navigator = navigator
}

// ServerURL returns the API URL the provider is bound to.
func (p *Provider) ServerURL() string {
	return p.serverURL
}

// Navigator returns the navigator handed to the SDK client.
func (p *Provider) Navigator() sdk.Navigator {
	return p.navigator
}

// Store returns the session store, opening ~/.snipbox/session.json on
// first use.
func (p *Provider) Store() (sdk.SessionStore, error) {
	p.storeOnce.Do(func() {
		store, err := auth.NewFileStore()
		if err != nil {
			p.storeErr = err
			return
		}
		p.store = store
	})
	if p.storeErr != nil {
		return nil, p.storeErr
	}
	return p.store, nil
}

// SDKClient returns the SDK client. Its AuthState is synchronised from the
// store when it is first built.
func (p *Provider) SDKClient() (*sdk.Client, error) {
	store, err := p.Store()
	if err != nil {
		return nil, err
	}
	p.sdkOnce.Do(func() {
		p.sdkClient = sdk.NewClient(p.serverURL,
			sdk.WithStore(store),
			sdk.WithNavigator(p.navigator),
		)
	})
	return p.sdkClient, nil
}
