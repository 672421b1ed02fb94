package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"quiz-arena/domain"

	"github.com/samber/lo"
)

// restCountry mirrors the fields we keep from the public countries feed.
type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Flags struct {
		PNG string `json:"png"`
	} `json:"flags"`
}

// Loader fetches the country feed once at process start and fills the
// Catalog. It runs as a supervised worker: an HTTP failure returns an
// error and the supervisor retries until the catalog is ready.
type Loader struct {
	catalog *Catalog
	url     string
	client  *http.Client
	log     *slog.Logger
}

func NewLoader(catalog *Catalog, url string, client *http.Client, log *slog.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{catalog: catalog, url: url, client: client, log: log}
}

func (l *Loader) Run(ctx context.Context) error {
	if l.catalog.Ready() {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return fmt.Errorf("building countries request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching countries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("countries feed answered %s", resp.Status)
	}

	var feed []restCountry
	if err = json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return fmt.Errorf("decoding countries feed: %w", err)
	}

	l.catalog.Load(lo.Map(feed, func(item restCountry, _ int) domain.Country {
		return domain.Country{Name: item.Name.Common, Flag: item.Flags.PNG}
	}))

	l.log.Info(fmt.Sprintf("Loaded %d countries", l.catalog.Size()))
	return nil
}
