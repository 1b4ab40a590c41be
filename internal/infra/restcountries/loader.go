package restcountries

import (
	"context"
	"time"

	"github.com/tg383520/geo-quiz/internal/catalog"
	"github.com/tg383520/geo-quiz/internal/domain"
)

// Loader turns the raw API response into a filtered catalog.
type Loader struct {
	client *Client
	now    func() time.Time
}

func NewLoader(client *Client) *Loader {
	return &Loader{client: client, now: time.Now}
}

func (l *Loader) LoadCatalog(ctx context.Context, lang string) (domain.Catalog, error) {
	raw, err := l.client.FetchAll(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}
	return catalog.Build(raw, lang, l.now()), nil
}
