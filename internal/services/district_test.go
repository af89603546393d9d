package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daaqui-joyas/salesbot/internal/catalog"
)

func TestNormalizeAndCheck(t *testing.T) {
	r := NewDistrictResolver(catalog.DefaultRules())

	tests := []struct {
		input    string
		district string
		coverage Coverage
	}{
		{"Miraflores", "Miraflores", WithCoverage},
		{"vivo en jesus maria", "Jesús María", WithCoverage},
		{"soy de SJL", "San Juan De Lurigancho", WithCoverage},
		{"en el distrito de San Juan de Lurigancho", "San Juan De Lurigancho", WithCoverage},
		{"surco", "Santiago De Surco", WithCoverage},
		{"Ancón", "Ancón", WithoutCoverage},
		{"estoy en puente piedra.", "Puente Piedra", WithoutCoverage},
		{"Narnia", "", NotFound},
		{"   ", "", NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			district, coverage := r.NormalizeAndCheck(tt.input)
			assert.Equal(t, tt.coverage, coverage)
			assert.Equal(t, tt.district, district)
		})
	}
}

func TestNormalizeAndCheckIsIdempotent(t *testing.T) {
	r := NewDistrictResolver(catalog.DefaultRules())
	for _, input := range []string{"sjl", "Villa El Salvador", "Ventanilla", "Lurigancho", "San Juan de Lurigancho"} {
		first, c1 := r.NormalizeAndCheck(input)
		second, c2 := r.NormalizeAndCheck(first)
		assert.Equal(t, first, second, input)
		assert.Equal(t, c1, c2, input)
	}
}

func TestExactDistrictWinsOverLongerName(t *testing.T) {
	r := NewDistrictResolver(catalog.DefaultRules())

	name, coverage := r.NormalizeAndCheck("Lurigancho")
	assert.Equal(t, "Lurigancho", name)
	assert.Equal(t, WithoutCoverage, coverage)

	name, coverage = r.NormalizeAndCheck("vivo en lurigancho")
	assert.Equal(t, "Lurigancho", name)
	assert.Equal(t, WithoutCoverage, coverage)

	name, coverage = r.NormalizeAndCheck("San Juan de Lurigancho")
	assert.Equal(t, "San Juan De Lurigancho", name)
	assert.Equal(t, WithCoverage, coverage)
}

func TestParseProvinceDistrict(t *testing.T) {
	tests := []struct {
		input    string
		province string
		district string
	}{
		{"Arequipa, Cayma", "Arequipa", "Cayma"},
		{"soy de cusco - wanchaq", "Cusco", "Wanchaq"},
		{"Piura/Castilla", "Piura", "Castilla"},
		{"Trujillo", "Trujillo", "Trujillo"},
		{"Chiclayo,", "Chiclayo", "Chiclayo"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			province, district := ParseProvinceDistrict(tt.input)
			assert.Equal(t, tt.province, province)
			assert.Equal(t, tt.district, district)
		})
	}
}
