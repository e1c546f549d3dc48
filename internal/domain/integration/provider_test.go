package integration

import (
	"fmt"
	"testing"

	"github.com/beezio/marketplace/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_NeverPrintSecrets(t *testing.T) {
	creds := Credentials{APIKey: "sk_live_123", APISecret: "shh", StoreURL: "demo.myshopify.com"}

	for _, out := range []string{creds.String(), fmt.Sprintf("%v", creds), fmt.Sprintf("%+v", creds), fmt.Sprintf("%#v", creds)} {
		assert.NotContains(t, out, "sk_live_123")
		assert.NotContains(t, out, "shh")
		assert.Contains(t, out, creds.Fingerprint())
	}
}

func TestCredentials_Fingerprint(t *testing.T) {
	a := Credentials{APIKey: "key-a"}
	b := Credentials{APIKey: "key-b"}

	assert.Len(t, a.Fingerprint(), 16)
	assert.Equal(t, a.Fingerprint(), Credentials{APIKey: "key-a"}.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Empty(t, Credentials{}.Fingerprint())
}

func TestCredentials_Token(t *testing.T) {
	assert.Equal(t, "tok", Credentials{APIKey: "key", AccessToken: "tok"}.Token())
	assert.Equal(t, "key", Credentials{APIKey: "key"}.Token())
	assert.True(t, Credentials{StoreURL: "x"}.IsEmpty())
}

func TestCatalogQuery_Normalize(t *testing.T) {
	q, err := CatalogQuery{Category: "  Mugs "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Equal(t, "Mugs", q.Category)
	assert.Equal(t, 0, q.Offset())

	q, err = CatalogQuery{Page: 3, PageSize: 10}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 20, q.Offset())

	_, err = CatalogQuery{Page: -1}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidCatalogQuery)
	_, err = CatalogQuery{PageSize: MaxPageSize + 1}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidCatalogQuery)
}

func TestExternalProduct_Merge(t *testing.T) {
	stock := 7
	listed := ExternalProduct{
		Provider:      ProviderPrintful,
		ExternalID:    "71",
		Name:          "Mug",
		ImageURLs:     []string{"https://img/list.png"},
		CategoryLabel: "Drinkware",
	}
	detail := &ExternalProduct{
		Description: "Ceramic mug",
		Price:       valueobject.MustMoney("6.95", valueobject.USD),
		Stock:       &stock,
	}

	merged := listed.Merge(detail)
	assert.Equal(t, "Mug", merged.Name)
	assert.Equal(t, "Drinkware", merged.CategoryLabel)
	assert.Equal(t, "Ceramic mug", merged.Description)
	assert.Equal(t, "6.95 USD", merged.Price.String())
	assert.Equal(t, 7, *merged.Stock)
	assert.Equal(t, []string{"https://img/list.png"}, merged.ImageURLs)

	assert.Equal(t, listed, listed.Merge(nil))
}

func TestExternalProduct_Validate(t *testing.T) {
	assert.ErrorIs(t, (&ExternalProduct{Name: "x"}).Validate(), ErrProviderInvalidResponse)
	assert.ErrorIs(t, (&ExternalProduct{ExternalID: "1"}).Validate(), ErrProviderInvalidResponse)
	assert.NoError(t, (&ExternalProduct{ExternalID: "1", Name: "x"}).Validate())
}
