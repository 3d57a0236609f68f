package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Category is an ordered keyword rule: the first category whose keyword
// appears in the input wins, so slice order is part of the contract.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Region maps lower-cased country-name fragments onto a geographic label.
type Region struct {
	Name      string   `yaml:"name" json:"name"`
	Countries []string `yaml:"countries" json:"countries"`
}

// Substitution is a whole-word, case-insensitive sponsor-name rewrite.
type Substitution struct {
	Match       string `yaml:"match" json:"match"`
	Replacement string `yaml:"replacement" json:"replacement"`
}

// Catalog bundles the classification tables the transformation engine
// evaluates generically.
type Catalog struct {
	ConditionCategories  []Category     `yaml:"condition_categories" json:"condition_categories"`
	Regions              []Region       `yaml:"regions" json:"regions"`
	Continents           []Region       `yaml:"continents" json:"continents"`
	SponsorSubstitutions []Substitution `yaml:"sponsor_substitutions" json:"sponsor_substitutions"`
}

// Load reads a catalog override from YAML, falling back to the built-in
// tables when no path is given.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Default(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.ConditionCategories) == 0 {
		return Catalog{}, fmt.Errorf("taxonomy catalog has no condition categories")
	}
	return cat, nil
}

func Default() Catalog {
	return Catalog{
		ConditionCategories: []Category{
			{Name: "cancer", Keywords: []string{"cancer", "tumor", "neoplasm", "oncology", "leukemia", "lymphoma"}},
			{Name: "cardiovascular", Keywords: []string{"heart", "cardiac", "cardiovascular", "hypertension", "stroke"}},
			{Name: "diabetes", Keywords: []string{"diabetes", "diabetic", "glucose", "insulin"}},
			{Name: "respiratory", Keywords: []string{"asthma", "copd", "respiratory", "lung", "pulmonary"}},
			{Name: "neurological", Keywords: []string{"alzheimer", "parkinson", "neurological", "brain", "stroke"}},
			{Name: "mental_health", Keywords: []string{"depression", "anxiety", "mental", "psychiatric", "bipolar"}},
			{Name: "infectious", Keywords: []string{"infection", "viral", "bacterial", "hiv", "covid"}},
			{Name: "autoimmune", Keywords: []string{"arthritis", "lupus", "autoimmune", "inflammatory"}},
			{Name: "pediatric", Keywords: []string{"pediatric", "child", "infant", "neonatal"}},
			{Name: "geriatric", Keywords: []string{"elderly", "geriatric", "aging", "senior"}},
		},
		Regions: []Region{
			{Name: "North America", Countries: []string{"united states", "canada", "mexico"}},
			{Name: "Europe", Countries: []string{"united kingdom", "germany", "france", "italy", "spain", "netherlands"}},
			{Name: "Asia", Countries: []string{"china", "japan", "india", "south korea", "singapore"}},
			{Name: "Latin America", Countries: []string{"brazil", "argentina", "chile", "colombia"}},
			{Name: "Africa", Countries: []string{"south africa", "nigeria", "kenya", "egypt"}},
			{Name: "Oceania", Countries: []string{"australia", "new zealand"}},
		},
		Continents: []Region{
			{Name: "North America", Countries: []string{"united states", "canada", "mexico"}},
			{Name: "Europe", Countries: []string{"united kingdom", "germany", "france", "italy", "spain"}},
			{Name: "Asia", Countries: []string{"china", "japan", "india", "south korea"}},
			{Name: "South America", Countries: []string{"brazil", "argentina", "chile"}},
			{Name: "Africa", Countries: []string{"south africa", "nigeria", "kenya"}},
			{Name: "Oceania", Countries: []string{"australia", "new zealand"}},
		},
		SponsorSubstitutions: []Substitution{
			{Match: "inc", Replacement: "Inc."},
			{Match: "corp", Replacement: "Corp."},
			{Match: "llc", Replacement: "LLC"},
			{Match: "ltd", Replacement: "Ltd."},
			{Match: "co", Replacement: "Co."},
			{Match: "university", Replacement: "University"},
			{Match: "univ", Replacement: "University"},
			{Match: "medical center", Replacement: "Medical Center"},
			{Match: "med center", Replacement: "Medical Center"},
			{Match: "hospital", Replacement: "Hospital"},
			{Match: "hosp", Replacement: "Hospital"},
		},
	}
}
