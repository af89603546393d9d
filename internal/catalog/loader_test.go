package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/models"
	"github.com/daaqui-joyas/salesbot/internal/storage"
)

const catalogYAML = `
reglas_envio:
  adelanto_shalom: 25
  adelanto_lima_delivery: 10
  distritos_cobertura_delivery: [Miraflores, Surquillo]
  abreviaturas_distritos:
    mira: Miraflores
    surq: Surquillo
datos_negocio:
  marca: Daaqui Joyas
  ruc: "20612345678"
  titular_yape: Ana Daaqui
  yape_numero: "987654321"
productos:
  - id: collar-girasol-radiant-01
    nombre: Collar Mágico Girasol Radiant
    precio_base: 69
    activo: true
    imagenes:
      principal: https://cdn.daaqui.pe/girasol.jpg
`

var fixedNow = time.Date(2025, 9, 16, 15, 0, 0, 0, time.UTC)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	logger.Discard()
	l := &Loader{Path: writeCatalog(t, catalogYAML), Now: func() time.Time { return fixedNow }}

	snap, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, l.Path, snap.Source)
	assert.Equal(t, fixedNow, snap.LoadedAt)
	assert.Equal(t, 25.0, snap.Rules.DepositShalom)
	assert.Equal(t, []string{"mira", "surq"}, snap.Rules.DistrictAbbreviations.Keys())
	assert.Equal(t, "20612345678", snap.Business.RUC)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, 69.0, snap.Products[0].BasePrice)

	assert.ElementsMatch(t, []string{models.DocFAQ, models.DocCampaign}, snap.Missing)
	assert.Equal(t, CampaignProductID, snap.Campaign.ProductID)
	assert.NotEmpty(t, snap.FAQ.Keywords)
	// fields absent from the file are completed from defaults
	assert.Equal(t, DefaultRules().AllDistricts, snap.Rules.AllDistricts)
	assert.Equal(t, DefaultRules().WeekdayDeliveryDay, snap.Rules.WeekdayDeliveryDay)
}

func TestDocumentsOverrideFile(t *testing.T) {
	logger.Discard()
	ctx := context.Background()
	docs := storage.NewMemoryStore()
	require.NoError(t, docs.PutDocument(ctx, &models.ConfigDocument{
		Key:  models.DocShippingRules,
		Body: `{"adelanto_shalom":30,"adelanto_lima_delivery":15}`,
	}))
	require.NoError(t, docs.PutDocument(ctx, &models.ConfigDocument{
		Key:  models.DocFAQ,
		Body: `{"palabras_clave":{"stock":["stock","disponible"],"precio":["precio"]},"respuestas":{"stock":"Sí, hay stock."}}`,
	}))

	snap, err := (&Loader{Path: writeCatalog(t, catalogYAML), Docs: docs}).Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, 30.0, snap.Rules.DepositShalom)
	assert.Equal(t, 15.0, snap.Rules.DepositLimaDelivery)
	assert.Equal(t, DefaultRules().CoverageDistricts, snap.Rules.CoverageDistricts)
	assert.Equal(t, []string{"stock", "precio"}, snap.FAQ.Keywords.Keys())
	assert.Equal(t, "Sí, hay stock.", snap.FAQ.Responses["stock"])
	assert.Equal(t, DefaultFAQ().Responses["envio"], snap.FAQ.Responses["envio"])
	assert.Equal(t, []string{models.DocCampaign}, snap.Missing)
}

func TestLoadBrokenDocument(t *testing.T) {
	logger.Discard()
	ctx := context.Background()
	docs := storage.NewMemoryStore()
	require.NoError(t, docs.PutDocument(ctx, &models.ConfigDocument{Key: models.DocCampaign, Body: `{"producto_id":`}))

	_, err := (&Loader{Docs: docs}).Load(ctx)
	assert.Error(t, err)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	logger.Discard()
	snap, err := (&Loader{Path: filepath.Join(t.TempDir(), "nope.yaml")}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "defaults", snap.Source)
	assert.Len(t, snap.Missing, 4)
	assert.Equal(t, DefaultRules().DepositShalom, snap.Rules.DepositShalom)
}

func TestLoadInvalidYAML(t *testing.T) {
	logger.Discard()
	_, err := (&Loader{Path: writeCatalog(t, "reglas_envio: [")}).Load(context.Background())
	assert.Error(t, err)
}
