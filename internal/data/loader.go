package data

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed catalog/*.json
var dataFiles embed.FS

// ReferenceData holds all loaded reference data for the generator
type ReferenceData struct {
	Categories CategoriesData
	Merchants  MerchantsData
	Channels   ChannelsData

	// Lookup maps for efficient access
	productsByCategory map[string][]string
	categoryNames      []string
	legalNameByName    map[string]string
}

// CategoriesData represents the structure of categories.json
type CategoriesData struct {
	Categories []Category `json:"categories"`
}

// Category is a product category with its product catalog
type Category struct {
	Name     string   `json:"name"`
	Products []string `json:"products"`
}

// MerchantsData represents the structure of merchants.json
type MerchantsData struct {
	Names               []string    `json:"names"`
	SyntheticNameFormat string      `json:"synthetic_name_format"`
	LegalNames          []LegalName `json:"legal_names"`
	LegalSuffix         string      `json:"legal_suffix"`
	LegalKeywords       []string    `json:"legal_keywords"`
}

// LegalName maps a trading name to the registered legal-entity name
type LegalName struct {
	Name      string `json:"name"`
	LegalName string `json:"legal_name"`
}

// ChannelsData represents the structure of channels.json
type ChannelsData struct {
	Currency       string        `json:"currency"`
	PaymentMethods WeightedLabels `json:"payment_methods"`
	Statuses       WeightedLabels `json:"statuses"`
	DeviceTypes    WeightedLabels `json:"device_types"`
	LocationTypes  WeightedLabels `json:"location_types"`
}

// WeightedLabel is one categorical value and its relative weight
type WeightedLabel struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// WeightedLabels keeps declaration order so weighted draws are reproducible.
type WeightedLabels []WeightedLabel

// Weights returns the weights in declaration order
func (w WeightedLabels) Weights() []float64 {
	out := make([]float64, len(w))
	for i, l := range w {
		out[i] = l.Weight
	}
	return out
}

// Labels returns the labels in declaration order
func (w WeightedLabels) Labels() []string {
	out := make([]string, len(w))
	for i, l := range w {
		out[i] = l.Label
	}
	return out
}

var (
	instance *ReferenceData
	once     sync.Once
	loadErr  error
)

// Load loads all reference data from embedded files
// This is thread-safe and will only load data once
func Load() (*ReferenceData, error) {
	once.Do(func() {
		instance = &ReferenceData{}
		loadErr = instance.loadAll()
	})

	if loadErr != nil {
		return nil, loadErr
	}
	return instance, nil
}

func (r *ReferenceData) loadAll() error {
	files := []struct {
		path   string
		target any
	}{
		{"catalog/categories.json", &r.Categories},
		{"catalog/merchants.json", &r.Merchants},
		{"catalog/channels.json", &r.Channels},
	}

	for _, f := range files {
		data, err := dataFiles.ReadFile(f.path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.path, err)
		}
		if err := json.Unmarshal(data, f.target); err != nil {
			return fmt.Errorf("failed to parse %s: %w", f.path, err)
		}
	}

	if len(r.Categories.Categories) == 0 {
		return fmt.Errorf("categories.json: no categories defined")
	}
	if len(r.Merchants.Names) == 0 {
		return fmt.Errorf("merchants.json: no merchant names defined")
	}

	r.buildLookups()
	return nil
}

// buildLookups creates efficient lookup structures
func (r *ReferenceData) buildLookups() {
	r.productsByCategory = make(map[string][]string, len(r.Categories.Categories))
	r.categoryNames = make([]string, 0, len(r.Categories.Categories))
	for _, c := range r.Categories.Categories {
		r.productsByCategory[c.Name] = c.Products
		r.categoryNames = append(r.categoryNames, c.Name)
	}

	r.legalNameByName = make(map[string]string, len(r.Merchants.LegalNames))
	for _, ln := range r.Merchants.LegalNames {
		r.legalNameByName[ln.Name] = ln.LegalName
	}
}

// CategoryNames returns the product categories in catalog order
func (r *ReferenceData) CategoryNames() []string {
	return r.categoryNames
}

// Products returns the product catalog for a category
func (r *ReferenceData) Products(category string) []string {
	return r.productsByCategory[category]
}

// NamedMerchants returns how many merchants carry a real trading name
func (r *ReferenceData) NamedMerchants() int {
	return len(r.Merchants.Names)
}

// MerchantName returns the display name for a 1-based merchant number.
// Numbers beyond the named list get a synthetic name.
func (r *ReferenceData) MerchantName(num int) string {
	if num >= 1 && num <= len(r.Merchants.Names) {
		return r.Merchants.Names[num-1]
	}
	return fmt.Sprintf(r.Merchants.SyntheticNameFormat, num)
}

// LegalName returns the legal-entity form of a merchant's trading name
func (r *ReferenceData) LegalName(name string) string {
	if legal, ok := r.legalNameByName[name]; ok {
		return legal
	}
	return name + r.Merchants.LegalSuffix
}

// LegalKeywords returns the substrings that mark a legal-entity name
func (r *ReferenceData) LegalKeywords() []string {
	return r.Merchants.LegalKeywords
}

// IsLegalEntityName reports whether name contains any legal-entity keyword
func (r *ReferenceData) IsLegalEntityName(name string) bool {
	return ContainsAny(name, r.Merchants.LegalKeywords)
}

// Currency returns the single currency code every transaction carries
func (r *ReferenceData) Currency() string {
	return r.Channels.Currency
}

// ContainsAny reports whether s contains any of the given substrings
func ContainsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
