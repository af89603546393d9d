package models

import "time"

// Product is a catalog item offered by the bot
type Product struct {
	ID               string         `json:"id" yaml:"id" gorm:"primaryKey"`
	Name             string         `json:"nombre" yaml:"nombre"`
	BasePrice        float64        `json:"precio_base" yaml:"precio_base"`
	ShortDescription string         `json:"descripcion_corta" yaml:"descripcion_corta"`
	Details          ProductDetails `json:"detalles" yaml:"detalles" gorm:"embedded;embeddedPrefix:detalle_"`
	Images           ProductImages  `json:"imagenes" yaml:"imagenes" gorm:"embedded;embeddedPrefix:imagen_"`
	Active           bool           `json:"activo" yaml:"activo" gorm:"index"`
	CreatedAt        time.Time      `json:"created_at" yaml:"-"`
	UpdatedAt        time.Time      `json:"updated_at" yaml:"-"`
}

// ProductDetails holds the copy used in the persuasion messages
type ProductDetails struct {
	Material  string `json:"material" yaml:"material"`
	Magic     string `json:"magia" yaml:"magia"`
	Packaging string `json:"empaque" yaml:"empaque"`
}

// ProductImages are public URLs sent as image messages
type ProductImages struct {
	Principal string `json:"principal" yaml:"principal"`
	Packaging string `json:"empaque" yaml:"empaque"`
	Upsell    string `json:"upsell" yaml:"upsell"`
}
