package models

import "time"

// Keys of the configuration documents that can live in the database.
const (
	DocShippingRules = "reglas_envio"
	DocFAQ           = "respuestas_faq"
	DocBusinessData  = "datos_negocio"
	DocCampaign      = "campana"
)

// ConfigDocument is a JSON configuration blob editable without a deploy.
type ConfigDocument struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Body      string    `json:"body" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the gorm table name.
func (ConfigDocument) TableName() string {
	return "config_documents"
}
