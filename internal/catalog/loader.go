package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/models"
	"github.com/daaqui-joyas/salesbot/internal/storage"
)

// File is the layout of the catalog YAML file.
type File struct {
	Rules    *models.BusinessRules `yaml:"reglas_envio"`
	FAQ      *models.FAQ           `yaml:"respuestas_faq"`
	Business *models.BusinessData  `yaml:"datos_negocio"`
	Campaign *models.Campaign      `yaml:"campana"`
	Products []models.Product      `yaml:"productos"`
}

// Loader assembles snapshots from the catalog file and, when available,
// the configuration documents stored in the database. Database documents
// win over file sections.
type Loader struct {
	Path string
	Docs storage.DocumentStore
	Now  func() time.Time
}

// ParseFile decodes a catalog YAML document.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return &f, nil
}

// Load builds a fresh snapshot.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	snap := Defaults()
	snap.Source = "defaults"
	found := map[string]bool{}

	if l.Path != "" {
		data, err := os.ReadFile(l.Path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Config.Warn("catalog file not found", slog.String("event", "catalog.missing"), slog.String("path", l.Path))
		case err != nil:
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		default:
			f, err := ParseFile(data)
			if err != nil {
				return nil, err
			}
			applyFile(snap, f, found)
			snap.Source = l.Path
		}
	}

	if l.Docs != nil {
		if err := l.applyDocuments(ctx, snap, found); err != nil {
			return nil, err
		}
	}

	for _, key := range []string{models.DocShippingRules, models.DocFAQ, models.DocBusinessData, models.DocCampaign} {
		if !found[key] {
			snap.Missing = append(snap.Missing, key)
			logger.Config.Warn("config document missing, using defaults", slog.String("event", "config.missing"), slog.String("document", key))
		}
	}
	fillDefaults(snap)
	snap.LoadedAt = now()
	return snap, nil
}

func applyFile(snap *Snapshot, f *File, found map[string]bool) {
	if f.Rules != nil {
		snap.Rules = *f.Rules
		found[models.DocShippingRules] = true
	}
	if f.FAQ != nil {
		snap.FAQ = *f.FAQ
		found[models.DocFAQ] = true
	}
	if f.Business != nil {
		snap.Business = *f.Business
		found[models.DocBusinessData] = true
	}
	if f.Campaign != nil {
		snap.Campaign = *f.Campaign
		found[models.DocCampaign] = true
	}
	snap.Products = append(snap.Products, f.Products...)
}

func (l *Loader) applyDocuments(ctx context.Context, snap *Snapshot, found map[string]bool) error {
	targets := map[string]any{
		models.DocShippingRules: &snap.Rules,
		models.DocFAQ:           &snap.FAQ,
		models.DocBusinessData:  &snap.Business,
		models.DocCampaign:      &snap.Campaign,
	}
	for key, target := range targets {
		doc, err := l.Docs.GetDocument(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Config.Warn("failed to read config document", slog.String("document", key), slog.Any("error", err))
			continue
		}
		if err := decodeDocument(doc.Body, target); err != nil {
			return fmt.Errorf("config document %s: %w", key, err)
		}
		found[key] = true
	}
	return nil
}

// decodeDocument replaces *target with the decoded document.
func decodeDocument(body string, target any) error {
	switch t := target.(type) {
	case *models.BusinessRules:
		var v models.BusinessRules
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return err
		}
		*t = v
	case *models.FAQ:
		var v models.FAQ
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return err
		}
		*t = v
	case *models.BusinessData:
		var v models.BusinessData
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return err
		}
		*t = v
	case *models.Campaign:
		var v models.Campaign
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return err
		}
		*t = v
	default:
		return fmt.Errorf("unsupported document target %T", target)
	}
	return nil
}

// fillDefaults completes zero fields of partially written documents.
func fillDefaults(snap *Snapshot) {
	rules := DefaultRules()
	if snap.Rules.DepositShalom <= 0 {
		snap.Rules.DepositShalom = rules.DepositShalom
	}
	if snap.Rules.DepositLimaDelivery <= 0 {
		snap.Rules.DepositLimaDelivery = rules.DepositLimaDelivery
	}
	if len(snap.Rules.CoverageDistricts) == 0 {
		snap.Rules.CoverageDistricts = rules.CoverageDistricts
	}
	if len(snap.Rules.AllDistricts) == 0 {
		snap.Rules.AllDistricts = rules.AllDistricts
	}
	if snap.Rules.DistrictAbbreviations == nil {
		snap.Rules.DistrictAbbreviations = rules.DistrictAbbreviations
	}
	if snap.Rules.WeekdayDeliveryDay == "" {
		snap.Rules.WeekdayDeliveryDay = rules.WeekdayDeliveryDay
	}
	if snap.Rules.WeekendDeliveryDay == "" {
		snap.Rules.WeekendDeliveryDay = rules.WeekendDeliveryDay
	}
	if snap.Rules.LimaDeliveryWindow == "" {
		snap.Rules.LimaDeliveryWindow = rules.LimaDeliveryWindow
	}

	business := DefaultBusinessData()
	if snap.Business.Brand == "" {
		snap.Business.Brand = business.Brand
	}
	if snap.Business.RUC == "" {
		snap.Business.RUC = business.RUC
	}
	if snap.Business.YapeHolder == "" {
		snap.Business.YapeHolder = business.YapeHolder
	}
	if snap.Business.YapeNumber == "" {
		snap.Business.YapeNumber = business.YapeNumber
	}

	faq := DefaultFAQ()
	if len(snap.FAQ.Keywords) == 0 {
		snap.FAQ.Keywords = faq.Keywords
	}
	if snap.FAQ.Responses == nil {
		snap.FAQ.Responses = map[string]string{}
	}
	for topic, answer := range faq.Responses {
		if _, ok := snap.FAQ.Responses[topic]; !ok {
			snap.FAQ.Responses[topic] = answer
		}
	}
	if len(snap.FAQ.Topics) == 0 {
		snap.FAQ.Topics = faq.Topics
	}

	campaign := DefaultCampaign()
	if snap.Campaign.ProductID == "" {
		snap.Campaign.ProductID = campaign.ProductID
	}
	if len(snap.Campaign.Phrases) == 0 && len(snap.Campaign.Keywords) == 0 {
		snap.Campaign.Phrases = campaign.Phrases
		snap.Campaign.Keywords = campaign.Keywords
	}
	if snap.Campaign.Upsell.Name == "" && snap.Campaign.Upsell.Price == 0 {
		snap.Campaign.Upsell = campaign.Upsell
	}
	if snap.Campaign.Upsell.Pitch == "" {
		snap.Campaign.Upsell.Pitch = campaign.Upsell.Pitch
	}
}
